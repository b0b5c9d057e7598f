package contract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/fasalsetu/agrilink/internal/resources/analysis"
	"github.com/google/uuid"
)

// GrowthUpdate is the field evidence a farmer submits for a growth stage
type GrowthUpdate struct {
	Type     UpdateType
	Notes    string
	ImageURL string
	Location LatLng
}

// LogGrowthUpdate commits a growth update once its image analysis has completed. A failed
// analysis or an image flagged as synthetic leaves the contract untouched
func (t *Tracker) LogGrowthUpdate(ctx context.Context, id string, actor resources.Actor, upd GrowthUpdate, result analysis.Result) (*Contract, error) {
	return t.apply(ctx, id, actor, EventLogGrowthUpdate, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		if !growthUpdateTypes[upd.Type] {
			return nil, lib.WrapErrorf(ErrInvalidUpdate, "unsupported update type %q", upd.Type)
		}

		res, ok := result.Analysis()
		if !ok {
			return nil, lib.WrapErrorf(ErrAnalysisUnavailable, "%s", result.FailureReason())
		}
		if res.FraudAlert {
			return nil, lib.WrapErrorf(ErrFraudDetected, "%s", res.Prediction)
		}

		c.Updates = append([]CropUpdate{{
			ID:         uuid.NewString(),
			Type:       upd.Type,
			Timestamp:  now,
			ImageURL:   upd.ImageURL,
			Notes:      upd.Notes,
			Location:   upd.Location,
			AIAnalysis: res.Clone(),
		}}, c.Updates...)

		health := res.HealthScore
		c.CurrentHealthScore = &health
		if res.Prediction != "" {
			c.PredictedHarvest = res.Prediction
		}
		c.Status = advanceStage(c.Status, upd.Type)

		return []AuditEntry{
			audit(now, actorAISecurity, "AI Checkpoint Passed: Real-image verified. Health: %d%%. Grade: %s", res.HealthScore, gradeLabel(res.Grade)),
		}, nil
	})
}

// SetFarmLocation records the verified GPS position of the farm used as pickup location
func (t *Tracker) SetFarmLocation(ctx context.Context, id string, actor resources.Actor, loc LatLng) (*Contract, error) {
	return t.apply(ctx, id, actor, EventSetFarmLocation, func(c *Contract, now time.Time) ([]AuditEntry, error) {
		if err := validateLocation(loc); err != nil {
			return nil, err
		}
		c.PickupLocation = &loc
		return []AuditEntry{audit(now, actor.Role.DisplayName(), "Farm GPS Location Verified")}, nil
	})
}

func validateLocation(loc LatLng) error {
	if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
		return lib.WrapErrorf(ErrInvalidUpdate, "location %.6f,%.6f out of range", loc.Lat, loc.Lng)
	}
	return nil
}

func gradeLabel(grade string) string {
	grade = strings.TrimSpace(grade)
	if grade == "" {
		return "N/A"
	}
	return grade
}

// ParseUpdateType accepts update types case-insensitively
func ParseUpdateType(s string) (UpdateType, error) {
	ut := UpdateType(strings.ToUpper(strings.TrimSpace(s)))
	if !growthUpdateTypes[ut] && ut != UpdatePackaging && ut != UpdateLogistics {
		return "", fmt.Errorf("unknown update type %q", s)
	}
	return ut, nil
}
