package contract_test

import (
	"context"
	"testing"

	"github.com/fasalsetu/agrilink/internal/resources/analysis"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// operations fired in random order, most of them are rejected in a given status
func randomOps(tr *contract.Tracker, id string) []func(ctx context.Context) {
	return []func(ctx context.Context){
		func(ctx context.Context) {
			_, _ = tr.LogGrowthUpdate(ctx, id, farmer, contract.GrowthUpdate{Type: contract.UpdateHarvest}, realAnalysis(90))
		},
		func(ctx context.Context) {
			_, _ = tr.LogGrowthUpdate(ctx, id, farmer, contract.GrowthUpdate{Type: contract.UpdateGrowth}, analysis.Success(analysis.AIAnalysis{FraudAlert: true}))
		},
		func(ctx context.Context) { _, _ = tr.ReleaseMilestone(ctx, id, buyer, contract.MilestoneGrowthFlowering) },
		func(ctx context.Context) { _, _ = tr.ReleaseMilestone(ctx, id, buyer, contract.MilestoneHarvestPackaging) },
		func(ctx context.Context) { _, _ = tr.CompletePackaging(ctx, id, farmer, validPackaging()) },
		func(ctx context.Context) { _, _ = tr.ApprovePackaging(ctx, id, buyer) },
		func(ctx context.Context) { _, _ = tr.AcceptJob(ctx, id, transporter) },
		func(ctx context.Context) { _, _ = tr.ArriveAtPickup(ctx, id, transporter) },
		func(ctx context.Context) { _, _ = tr.VerifyPickupOTP(ctx, id, transporter, "8812") },
		func(ctx context.Context) { _, _ = tr.VerifyPickupOTP(ctx, id, transporter, "1111") },
		func(ctx context.Context) { _, _ = tr.SubmitCheckpoint(ctx, id, transporter, validCheckpoint()) },
		func(ctx context.Context) { _, _ = tr.StartDelivery(ctx, id, transporter) },
		func(ctx context.Context) { _, _ = tr.ArriveAtDestination(ctx, id, transporter) },
		func(ctx context.Context) { _, _ = tr.VerifyDeliveryOTP(ctx, id, transporter, "4459") },
		func(ctx context.Context) { _, _ = tr.ConfirmDelivery(ctx, id, buyer) },
		func(ctx context.Context) {
			_, _ = tr.RaiseDispute(ctx, id, buyer, contract.DisputeRequest{Type: contract.DisputeQuantity, Comment: "short"})
		},
		func(ctx context.Context) { _, _ = tr.ResolveDispute(ctx, id, admin, contract.ResolutionRefundBuyer) },
	}
}

func TestLifecycleInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("escrow never exceeds total, paid milestones never revert, status never goes back", prop.ForAll(
		func(seq []int) bool {
			tr, _, c := trackerSetup(t, false)
			ctx := context.Background()
			ops := randomOps(tr, c.ID)

			prev := c
			for _, i := range seq {
				ops[i%len(ops)](ctx)

				cur, err := tr.Get(ctx, c.ID)
				if err != nil {
					return false
				}
				if cur.EscrowBalance.GreaterThan(cur.TotalAmount) || cur.EscrowBalance.LessThan(prev.EscrowBalance) {
					return false
				}
				for j, m := range prev.Milestones {
					if m.Status == contract.MilestonePaid && cur.Milestones[j].Status != contract.MilestonePaid {
						return false
					}
				}
				if cur.Status < prev.Status {
					return false
				}
				if len(cur.AuditTrail) < len(prev.AuditTrail) {
					return false
				}
				for j := range prev.AuditTrail {
					if cur.AuditTrail[j] != prev.AuditTrail[j] {
						return false
					}
				}
				for _, u := range cur.Updates {
					if u.AIAnalysis != nil && u.AIAnalysis.FraudAlert {
						return false
					}
				}
				prev = cur
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
