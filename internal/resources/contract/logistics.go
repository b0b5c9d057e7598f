package contract

import (
	"context"
	"strings"
	"time"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources"
)

const checkpointPhotoCount = 3

// CheckpointEvidence is what the transporter captures when taking over the cargo
type CheckpointEvidence struct {
	Photos     []string
	VideoProof string // opaque token of the condition video
	Condition  CargoCondition
}

func (e CheckpointEvidence) validate() error {
	var missing []string
	if len(nonEmpty(e.Photos)) != checkpointPhotoCount || len(e.Photos) != checkpointPhotoCount {
		missing = append(missing, "exactly 3 photos")
	}
	if strings.TrimSpace(e.VideoProof) == "" {
		missing = append(missing, "video proof")
	}
	switch e.Condition {
	case ConditionGood, ConditionMinorDamage, ConditionDefective:
	default:
		missing = append(missing, "condition")
	}
	if len(missing) > 0 {
		return lib.WrapErrorf(ErrCheckpointIncomplete, "missing or invalid: %s", strings.Join(missing, ", "))
	}
	return nil
}

// AcceptJob assigns the transporter, only the first one to accept wins
func (t *Tracker) AcceptJob(ctx context.Context, id string, actor resources.Actor) (*Contract, error) {
	return t.apply(ctx, id, actor, EventAcceptJob, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		if c.TransporterID != "" {
			return nil, lib.WrapErrorf(ErrInvalidTransition, "job already assigned to %s", c.TransporterID)
		}
		c.TransporterID = actor.ID
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Transport job accepted by %s", actor.ID)}, nil
	})
}

func (t *Tracker) ArriveAtPickup(ctx context.Context, id string, actor resources.Actor) (*Contract, error) {
	return t.apply(ctx, id, actor, EventArriveAtPickup, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Transporter reached pickup location")}, nil
	})
}

// VerifyPickupOTP opens the checkpoint when the code matches the one issued to the farmer
func (t *Tracker) VerifyPickupOTP(ctx context.Context, id string, actor resources.Actor, code string) (*Contract, error) {
	return t.apply(ctx, id, actor, EventVerifyPickupOTP, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		if !t.checkOTP(c.PickupOTP, code) {
			return nil, lib.WrapErrorf(ErrInvalidOTP, "pickup code does not match")
		}
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Pickup OTP verified. Checkpoint opened.")}, nil
	})
}

func (t *Tracker) SubmitCheckpoint(ctx context.Context, id string, actor resources.Actor, evidence CheckpointEvidence) (*Contract, error) {
	return t.apply(ctx, id, actor, EventSubmitCheckpoint, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		if err := evidence.validate(); err != nil {
			return nil, err
		}
		c.Checkpoint = &Checkpoint{
			Photos:     append([]string(nil), evidence.Photos...),
			VideoProof: evidence.VideoProof,
			Condition:  evidence.Condition,
		}
		c.CollectedAt = &now
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Cargo collected. Checkpoint condition: %s", evidence.Condition)}, nil
	})
}

func (t *Tracker) StartDelivery(ctx context.Context, id string, actor resources.Actor) (*Contract, error) {
	return t.apply(ctx, id, actor, EventStartDelivery, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Delivery started")}, nil
	})
}

func (t *Tracker) ArriveAtDestination(ctx context.Context, id string, actor resources.Actor) (*Contract, error) {
	return t.apply(ctx, id, actor, EventArriveAtDestination, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Transporter reached destination")}, nil
	})
}

// VerifyDeliveryOTP hands the cargo over to the buyer, whose confirmation window starts now
func (t *Tracker) VerifyDeliveryOTP(ctx context.Context, id string, actor resources.Actor, code string) (*Contract, error) {
	return t.apply(ctx, id, actor, EventVerifyDeliveryOTP, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		if !t.checkOTP(c.DeliveryOTP, code) {
			return nil, lib.WrapErrorf(ErrInvalidOTP, "delivery code does not match")
		}
		deadline := now.Add(t.cfg.ConfirmationWindow)
		c.DeliveredAt = &now
		c.BuyerConfirmationDeadline = &deadline
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Delivery OTP verified. Cargo delivered.")}, nil
	})
}

func (t *Tracker) ConfirmDelivery(ctx context.Context, id string, actor resources.Actor) (*Contract, error) {
	return t.apply(ctx, id, actor, EventConfirmDelivery, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Buyer accepted delivery.")}, nil
	})
}
