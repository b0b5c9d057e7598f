package demands

import (
	"context"
	"strings"
	"time"

	"github.com/fasalsetu/agrilink/internal/interfaces"
	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/google/uuid"
)

const reopenTimeout = 5 * time.Second

// ContractCreator opens the contract once a farmer accepts a demand
type ContractCreator interface {
	CreateFromDemand(ctx context.Context, actor resources.Actor, terms contract.Terms) (*contract.Contract, error)
}

// Board is the marketplace of buyer demands
type Board struct {
	repo      Repository
	contracts ContractCreator
	mutex     *lib.Mutex
	log       interfaces.ILogger
}

func NewBoard(repo Repository, contracts ContractCreator, log interfaces.ILogger) *Board {
	return &Board{
		repo:      repo,
		contracts: contracts,
		mutex:     lib.NewMutex(),
		log:       log,
	}
}

func (b *Board) Post(ctx context.Context, buyer resources.Actor, d Demand) (*Demand, error) {
	if buyer.Role != resources.RoleBuyer {
		return nil, lib.WrapErrorf(contract.ErrActorNotAllowed, "%s cannot post demands", buyer)
	}
	if strings.TrimSpace(d.CropName) == "" {
		return nil, lib.WrapErrorf(ErrInvalidDemand, "crop name is required")
	}
	if !d.Quantity.IsPositive() || !d.TargetPrice.IsPositive() {
		return nil, lib.WrapErrorf(ErrInvalidDemand, "quantity and target price must be positive")
	}
	if d.ShippingBudget.IsNegative() {
		return nil, lib.WrapErrorf(ErrInvalidDemand, "shipping budget must not be negative")
	}

	d.ID = uuid.NewString()
	d.BuyerID = buyer.ID
	d.Status = StatusOpen
	d.ContractID = ""
	if err := b.repo.Insert(ctx, &d); err != nil {
		return nil, err
	}
	b.log.Infof("demand %s posted by %s: %s %s at %s", d.ID, buyer, d.Quantity, d.CropName, d.TargetPrice)
	return &d, nil
}

func (b *Board) Get(ctx context.Context, id string) (*Demand, error) {
	return b.repo.Get(ctx, id)
}

func (b *Board) ListOpen(ctx context.Context) ([]*Demand, error) {
	all, err := b.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var res []*Demand
	for _, d := range all {
		if d.Status == StatusOpen {
			res = append(res, d)
		}
	}
	return res, nil
}

// Accept matches an open demand with the farmer and opens the contract
func (b *Board) Accept(ctx context.Context, id string, farmer resources.Actor) (*contract.Contract, error) {
	if farmer.Role != resources.RoleFarmer {
		return nil, lib.WrapErrorf(contract.ErrActorNotAllowed, "%s cannot accept demands", farmer)
	}
	if err := b.mutex.LockCtx(ctx); err != nil {
		return nil, err
	}
	defer b.mutex.Unlock()

	d, err := b.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != StatusOpen {
		return nil, lib.WrapErrorf(ErrDemandNotOpen, "demand %s is %s", d.ID, d.Status)
	}

	d.Status = StatusMatched
	d.ContractID = uuid.NewString()
	if err := b.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	loc := d.DeliveryLocation
	c, err := b.contracts.CreateFromDemand(ctx, farmer, contract.Terms{
		ContractID:       d.ContractID,
		DemandID:         d.ID,
		FarmerID:         farmer.ID,
		BuyerID:          d.BuyerID,
		FruitType:        d.CropName,
		TotalAmount:      d.Total(),
		ShippingPrice:    d.ShippingBudget,
		DeliveryLocation: &loc,
	})
	if err != nil {
		b.reopen(d)
		return nil, err
	}
	b.log.Infof("demand %s matched with farmer %s, contract %s", d.ID, farmer.ID, c.ID)
	return c, nil
}

// reopen puts a demand back on the board after its contract could not be created.
// If that fails the demand stays matched
func (b *Board) reopen(d *Demand) {
	d.Status = StatusOpen
	d.ContractID = ""
	ctx, cancel := context.WithTimeout(context.Background(), reopenTimeout)
	defer cancel()
	if err := b.repo.Update(ctx, d); err != nil {
		b.log.Errorf("demand %s left matched without a contract: %s", d.ID, err)
	}
}
