package contract

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/google/uuid"
)

type PackagingChecklist struct {
	Quality  bool `json:"quality"`
	Moisture bool `json:"moisture"`
	Damage   bool `json:"damage"`
}

func (c PackagingChecklist) Complete() bool {
	return c.Quality && c.Moisture && c.Damage
}

type PackagingReport struct {
	Count     int
	Weight    float64 // kg
	Type      PackagingType
	Photos    []string
	Checklist PackagingChecklist
}

func (r PackagingReport) validate() error {
	var missing []string
	if len(nonEmpty(r.Photos)) == 0 {
		missing = append(missing, "photo")
	}
	if r.Count <= 0 {
		missing = append(missing, "count")
	}
	if r.Weight <= 0 {
		missing = append(missing, "weight")
	}
	if !r.Checklist.Complete() {
		missing = append(missing, "checklist")
	}
	switch r.Type {
	case "", PackagingCrate, PackagingSack, PackagingBox:
	default:
		missing = append(missing, "packaging type")
	}
	if len(missing) > 0 {
		return lib.WrapErrorf(ErrPackagingIncomplete, "missing or invalid: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CompletePackaging records the packed batch and issues the pickup OTP
func (t *Tracker) CompletePackaging(ctx context.Context, id string, actor resources.Actor, report PackagingReport) (*Contract, error) {
	return t.apply(ctx, id, actor, EventCompletePackaging, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		if err := report.validate(); err != nil {
			return nil, err
		}
		code, err := t.newOTP()
		if err != nil {
			return nil, err
		}

		pkgType := report.Type
		if pkgType == "" {
			pkgType = PackagingCrate
		}
		photos := nonEmpty(report.Photos)
		weight := strconv.FormatFloat(report.Weight, 'f', -1, 64)

		c.Packaging = &Packaging{
			Count:  report.Count,
			Weight: report.Weight,
			Type:   pkgType,
			Date:   now,
			Photos: photos,
		}
		c.PickupOTP = code
		c.Updates = append([]CropUpdate{{
			ID:        uuid.NewString(),
			Type:      UpdatePackaging,
			Timestamp: now,
			ImageURL:  photos[0],
			Notes:     "Packed " + strconv.Itoa(report.Count) + " " + string(pkgType) + " units, " + weight + "kg",
			Location:  locationOrZero(c.PickupLocation),
		}}, c.Updates...)

		return []AuditEntry{
			audit(now, actor.Role.DisplayName(), "Packaging completed and verified. Count: %d, Weight: %skg.", report.Count, weight),
		}, nil
	})
}

// ReleaseMilestone pays a single milestone that needs buyer approval
func (t *Tracker) ReleaseMilestone(ctx context.Context, id string, actor resources.Actor, label string) (*Contract, error) {
	return t.apply(ctx, id, actor, EventReleaseMilestone, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		ledger := NewLedger(c.Milestones)
		m, ok := ledger.Find(label)
		if !ok {
			return nil, lib.WrapErrorf(ErrMilestoneNotFound, "%s", label)
		}
		if !m.IsApprovalRequired {
			return nil, lib.WrapErrorf(ErrMilestoneNotPayable, "%s", label)
		}
		if err := ledger.Pay(label); err != nil {
			return nil, err
		}
		c.EscrowBalance = ledger.EscrowFor(c.TotalAmount)

		return []AuditEntry{
			audit(now, actor.Role.DisplayName(), "Milestone released: %s (%d%%). Escrow: %s", m.Label, m.Percentage, c.EscrowBalance.StringFixed(2)),
		}, nil
	})
}

// ApprovePackaging releases the remaining escrow and issues the delivery OTP
func (t *Tracker) ApprovePackaging(ctx context.Context, id string, actor resources.Actor) (*Contract, error) {
	return t.apply(ctx, id, actor, EventApprovePackaging, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		code, err := t.newOTP()
		if err != nil {
			return nil, err
		}
		ledger := NewLedger(c.Milestones)
		remaining := 100 - ledger.PaidPercentage()
		ledger.PayAll()
		c.EscrowBalance = ledger.EscrowFor(c.TotalAmount)
		c.DeliveryOTP = code

		return []AuditEntry{
			audit(now, actor.Role.DisplayName(), "Final packaging approved. Remaining %d%% Escrow Released.", remaining),
		}, nil
	})
}

func nonEmpty(items []string) []string {
	var res []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			res = append(res, s)
		}
	}
	return res
}

func locationOrZero(loc *LatLng) LatLng {
	if loc == nil {
		return LatLng{}
	}
	return *loc
}
