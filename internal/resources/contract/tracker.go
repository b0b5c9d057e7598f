package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fasalsetu/agrilink/internal/interfaces"
	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	demoBypassOTP     = "0000"
	actorSystem       = "System"
	actorAISecurity   = "AI Security"
	defaultConfirmWin = 24 * time.Hour
)

type TrackerConfig struct {
	DemoMode           bool          // accept the universal OTP bypass code
	ConfirmationWindow time.Duration // time the buyer has to confirm or dispute a delivery
	Now                func() time.Time
}

// Tracker holds the lifecycle of contracts. Every operation is validated against the transition
// table, a rejected operation never changes or persists anything
type Tracker struct {
	repo     Repository
	otp      lib.OTPGenerator
	notifier Notifier
	locks    *lib.KeyedMutex
	stats    Stats
	cfg      TrackerConfig
	log      interfaces.ILogger
}

func NewTracker(repo Repository, otp lib.OTPGenerator, notifier Notifier, cfg TrackerConfig, log interfaces.ILogger) *Tracker {
	if cfg.ConfirmationWindow <= 0 {
		cfg.ConfirmationWindow = defaultConfirmWin
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Tracker{
		repo:     repo,
		otp:      otp,
		notifier: notifier,
		locks:    lib.NewKeyedMutex(),
		cfg:      cfg,
		log:      log,
	}
}

// Terms are the commercial terms a contract is created with
type Terms struct {
	ContractID       string // generated when empty
	DemandID         string
	FarmerID         string
	BuyerID          string
	FruitType        string
	TotalAmount      decimal.Decimal
	ShippingPrice    decimal.Decimal
	DeliveryLocation *LatLng
	Milestones       []Milestone // DefaultMilestones when empty
}

// CreateFromDemand starts a contract in SOWING with the agreement advance already in escrow
func (t *Tracker) CreateFromDemand(ctx context.Context, actor resources.Actor, terms Terms) (*Contract, error) {
	if actor.Role != resources.RoleFarmer || actor.ID != terms.FarmerID {
		return nil, lib.WrapErrorf(ErrActorNotAllowed, "%s cannot create a contract for farmer %s", actor, terms.FarmerID)
	}
	if terms.BuyerID == "" || terms.FarmerID == "" {
		return nil, lib.WrapErrorf(ErrInvalidTerms, "farmer and buyer are required")
	}
	if !terms.TotalAmount.IsPositive() {
		return nil, lib.WrapErrorf(ErrInvalidTerms, "total amount must be positive, got %s", terms.TotalAmount)
	}
	if terms.ShippingPrice.IsNegative() {
		return nil, lib.WrapErrorf(ErrInvalidTerms, "shipping price must not be negative, got %s", terms.ShippingPrice)
	}

	milestones := terms.Milestones
	if len(milestones) == 0 {
		milestones = DefaultMilestones()
	}
	milestones = append([]Milestone(nil), milestones...)
	ledger := NewLedger(milestones)
	if err := ledger.Validate(); err != nil {
		return nil, err
	}

	id := terms.ContractID
	if id == "" {
		id = uuid.NewString()
	}
	now := t.cfg.Now()
	c := &Contract{
		ID:               id,
		DemandID:         terms.DemandID,
		FarmerID:         terms.FarmerID,
		BuyerID:          terms.BuyerID,
		FruitType:        terms.FruitType,
		TotalAmount:      terms.TotalAmount,
		ShippingPrice:    terms.ShippingPrice,
		EscrowBalance:    ledger.EscrowFor(terms.TotalAmount),
		Status:           StatusSowing,
		Milestones:       milestones,
		DeliveryLocation: clonePtr(terms.DeliveryLocation),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	c.AuditTrail = []AuditEntry{
		{Timestamp: now, Event: fmt.Sprintf("Contract created for %s between farmer %s and buyer %s", terms.FruitType, terms.FarmerID, terms.BuyerID), Actor: actorSystem},
	}
	if paid := ledger.PaidPercentage(); paid > 0 {
		c.AuditTrail = append(c.AuditTrail, AuditEntry{Timestamp: now, Event: fmt.Sprintf("%d%% Advance Payment Released", paid), Actor: resources.RoleBuyer.DisplayName()})
	}

	if err := t.repo.Insert(ctx, c); err != nil {
		return nil, err
	}
	t.stats.accepted.Inc()
	t.log.Infof("contract %s created by %s for demand %s, escrow %s of %s", c.ID, actor, c.DemandID, c.EscrowBalance, c.TotalAmount)
	return c, nil
}

func (t *Tracker) Get(ctx context.Context, id string) (*Contract, error) {
	return t.repo.Get(ctx, id)
}

func (t *Tracker) List(ctx context.Context) ([]*Contract, error) {
	return t.repo.List(ctx)
}

// ListForActor returns the contracts the actor is allowed to see
func (t *Tracker) ListForActor(ctx context.Context, actor resources.Actor) ([]*Contract, error) {
	return t.filter(ctx, func(c *Contract) bool {
		return VisibleTo(c, actor)
	})
}

// VisibleTo is true for admins and contract parties. Transporters also see unclaimed jobs
func VisibleTo(c *Contract, actor resources.Actor) bool {
	switch actor.Role {
	case resources.RoleAdmin:
		return true
	case resources.RoleFarmer:
		return c.FarmerID == actor.ID
	case resources.RoleBuyer:
		return c.BuyerID == actor.ID
	case resources.RoleTransporter:
		return c.TransporterID == actor.ID || (c.Status == StatusAwaitingDispatch && c.TransporterID == "")
	}
	return false
}

func (t *Tracker) Stats() StatsSnapshot {
	return t.stats.Snapshot()
}

func (t *Tracker) filter(ctx context.Context, keep func(c *Contract) bool) ([]*Contract, error) {
	all, err := t.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*Contract, 0, len(all))
	for _, c := range all {
		if keep(c) {
			res = append(res, c)
		}
	}
	return res, nil
}

// mutation applies an accepted event to a working copy of the contract and returns the audit
// entries it produced. The status is already set to the transition target when it runs
type mutation func(c *Contract, now time.Time) ([]AuditEntry, error)

func (t *Tracker) apply(ctx context.Context, id string, actor resources.Actor, event Event, fn mutation) (*Contract, error) {
	unlock, err := t.locks.LockCtx(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := t.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := c.Status

	next, err := Transition(c.Status, event, actor.Role)
	if err == nil {
		err = checkParty(c, event, actor)
	}
	var entries []AuditEntry
	now := t.cfg.Now()
	if err == nil {
		c.Status = next
		entries, err = fn(c, now)
	}
	if err != nil {
		t.reject(id, actor, event, prev, err)
		return nil, err
	}

	c.UpdatedAt = now
	if err := t.repo.Commit(ctx, c, entries...); err != nil {
		t.reject(id, actor, event, prev, err)
		return nil, err
	}
	c.AuditTrail = append(c.AuditTrail, entries...)

	t.stats.accepted.Inc()
	t.log.Infof("contract %s: %s by %s, %s -> %s", id, event, actor, prev, c.Status)
	return c, nil
}

func (t *Tracker) reject(id string, actor resources.Actor, event Event, status Status, err error) {
	t.stats.rejected.Inc()
	switch {
	case errors.Is(err, ErrFraudDetected):
		t.stats.fraudBlocked.Inc()
	case errors.Is(err, ErrInvalidOTP):
		t.stats.otpFailures.Inc()
	}
	t.log.Warnf("contract %s: %s by %s rejected in status %s: %s", id, event, actor, status, err)
}

func (t *Tracker) checkOTP(stored, entered string) bool {
	entered = strings.TrimSpace(entered)
	if t.cfg.DemoMode && entered == demoBypassOTP {
		return true
	}
	return stored != "" && entered == stored
}

func (t *Tracker) newOTP() (string, error) {
	code, err := t.otp.Generate()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return code, nil
}

func audit(now time.Time, actor string, format string, args ...interface{}) AuditEntry {
	return AuditEntry{Timestamp: now, Event: fmt.Sprintf(format, args...), Actor: actor}
}
