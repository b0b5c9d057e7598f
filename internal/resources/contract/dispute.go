package contract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/shopspring/decimal"
)

const AIAlertHealthThreshold = 70

type DisputeRequest struct {
	Type     DisputeType
	Comment  string
	ProofURL string
}

// RaiseDispute lets the buyer contest a delivery instead of confirming it
func (t *Tracker) RaiseDispute(ctx context.Context, id string, actor resources.Actor, req DisputeRequest) (*Contract, error) {
	return t.apply(ctx, id, actor, EventRaiseDispute, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		switch req.Type {
		case DisputeQuality, DisputeQuantity, DisputeDamage:
		default:
			return nil, lib.WrapErrorf(ErrDisputeIncomplete, "unknown dispute type %q", req.Type)
		}
		if strings.TrimSpace(req.Comment) == "" {
			return nil, lib.WrapErrorf(ErrDisputeIncomplete, "comment is required")
		}
		if c.Dispute != nil {
			return nil, lib.WrapErrorf(ErrInvalidTransition, "dispute already raised")
		}
		c.Dispute = &DisputeDetails{
			Type:      req.Type,
			Comment:   strings.TrimSpace(req.Comment),
			ProofURL:  req.ProofURL,
			Timestamp: now,
		}
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Dispute raised: %s", req.Type)}, nil
	})
}

// Settle splits the escrow according to the resolution. A split rounds the buyer share down
// to the paisa and gives the remainder to the farmer
func Settle(resolution Resolution, escrow decimal.Decimal) (Settlement, error) {
	switch resolution {
	case ResolutionReleaseToFarmer:
		return Settlement{FarmerAmount: escrow, BuyerRefund: decimal.Zero}, nil
	case ResolutionRefundBuyer:
		return Settlement{FarmerAmount: decimal.Zero, BuyerRefund: escrow}, nil
	case ResolutionSplitLiability:
		buyer := escrow.Div(decimal.NewFromInt(2)).RoundFloor(2)
		return Settlement{FarmerAmount: escrow.Sub(buyer), BuyerRefund: buyer}, nil
	}
	return Settlement{}, lib.WrapErrorf(ErrUnknownResolution, "%q", resolution)
}

// ResolveDispute records the admin decision and its settlement, then notifies every party
func (t *Tracker) ResolveDispute(ctx context.Context, id string, actor resources.Actor, resolution Resolution) (*Contract, error) {
	c, err := t.apply(ctx, id, actor, EventResolveDispute, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		settlement, err := Settle(resolution, c.EscrowBalance)
		if err != nil {
			return nil, err
		}
		c.Resolution = &AdminResolution{
			Resolution: resolution,
			AdminID:    actor.ID,
			Timestamp:  now,
			Settlement: settlement,
		}
		return []AuditEntry{
			audit(now, actor.Role.DisplayName(), "Dispute resolved: %s. Farmer receives %s, buyer refund %s",
				resolution, settlement.FarmerAmount.StringFixed(2), settlement.BuyerRefund.StringFixed(2)),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Dispute on contract %s resolved: %s", c.ID, resolution)
	for _, userID := range []string{c.FarmerID, c.BuyerID, c.TransporterID} {
		if userID == "" {
			continue
		}
		if err := t.notifier.Notify(ctx, userID, msg); err != nil {
			t.log.Warnf("notify %s about contract %s: %s", userID, c.ID, err)
		}
	}
	return c, nil
}

type FarmerEvidence struct {
	PackagingImage string     `json:"packagingImage,omitempty"`
	Packaging      *Packaging `json:"packaging,omitempty"`
}

// DisputeCase puts the evidence of all three parties side by side for adjudication
type DisputeCase struct {
	ContractID  string           `json:"contractId"`
	FruitType   string           `json:"fruitType"`
	Status      Status           `json:"status"`
	Escrow      decimal.Decimal  `json:"escrowBalance"`
	Farmer      FarmerEvidence   `json:"farmerEvidence"`
	Transporter *Checkpoint      `json:"transporterEvidence,omitempty"`
	Buyer       *DisputeDetails  `json:"buyerEvidence"`
	Resolution  *AdminResolution `json:"adminResolution,omitempty"`
}

func (t *Tracker) DisputeCase(ctx context.Context, id string, actor resources.Actor) (*DisputeCase, error) {
	c, err := t.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != resources.RoleAdmin && !c.HasParty(actor.ID) {
		return nil, lib.WrapErrorf(ErrActorNotAllowed, "%s is not a party of contract %s", actor, id)
	}
	if c.Dispute == nil {
		return nil, lib.WrapErrorf(ErrInvalidTransition, "no dispute raised on contract %s", id)
	}

	dc := &DisputeCase{
		ContractID:  c.ID,
		FruitType:   c.FruitType,
		Status:      c.Status,
		Escrow:      c.EscrowBalance,
		Farmer:      FarmerEvidence{Packaging: c.Packaging},
		Transporter: c.Checkpoint,
		Buyer:       c.Dispute,
		Resolution:  c.Resolution,
	}
	for _, u := range c.Updates {
		if u.Type == UpdatePackaging {
			dc.Farmer.PackagingImage = u.ImageURL
			break
		}
	}
	return dc, nil
}

// AIAlerts lists contracts where any analysed update scored below the health threshold
func (t *Tracker) AIAlerts(ctx context.Context) ([]*Contract, error) {
	return t.filter(ctx, func(c *Contract) bool {
		for _, u := range c.Updates {
			if u.AIAnalysis != nil && u.AIAnalysis.HealthScore < AIAlertHealthThreshold {
				return true
			}
		}
		return false
	})
}

// Disputes lists contracts waiting for an admin decision
func (t *Tracker) Disputes(ctx context.Context) ([]*Contract, error) {
	return t.filter(ctx, func(c *Contract) bool {
		return c.Status == StatusDisputed
	})
}
