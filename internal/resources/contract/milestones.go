package contract

import (
	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/shopspring/decimal"
)

type MilestoneStatus string

const (
	MilestonePending MilestoneStatus = "PENDING"
	MilestonePaid    MilestoneStatus = "PAID"
)

// Milestone is a percentage-of-total payment tranche tied to a lifecycle stage
type Milestone struct {
	Label              string          `json:"label"              yaml:"label"`
	Percentage         int             `json:"percentage"         yaml:"percentage"`
	Status             MilestoneStatus `json:"status"             yaml:"status"`
	IsApprovalRequired bool            `json:"isApprovalRequired" yaml:"isApprovalRequired"`
}

const (
	MilestoneAgreement        = "Agreement"
	MilestoneGrowthFlowering  = "Growth & Flowering"
	MilestoneHarvestPackaging = "Harvest & Packaging"
)

// DefaultMilestones is the payment plan of a new contract: the agreement advance is paid on signing
func DefaultMilestones() []Milestone {
	return []Milestone{
		{Label: MilestoneAgreement, Percentage: 30, Status: MilestonePaid, IsApprovalRequired: false},
		{Label: MilestoneGrowthFlowering, Percentage: 15, Status: MilestonePending, IsApprovalRequired: true},
		{Label: MilestoneHarvestPackaging, Percentage: 55, Status: MilestonePending, IsApprovalRequired: true},
	}
}

// Ledger is the escrow view over the milestones of a contract. Milestones only go from PENDING to PAID
type Ledger struct {
	milestones []Milestone
}

func NewLedger(milestones []Milestone) *Ledger {
	return &Ledger{milestones: milestones}
}

func (l *Ledger) Validate() error {
	if len(l.milestones) == 0 {
		return lib.WrapErrorf(ErrInvalidMilestones, "no milestones")
	}
	total := 0
	labels := lib.NewSet[string]()
	for _, m := range l.milestones {
		if m.Percentage <= 0 {
			return lib.WrapErrorf(ErrInvalidMilestones, "milestone %q has non-positive percentage %d", m.Label, m.Percentage)
		}
		if m.Status != MilestonePending && m.Status != MilestonePaid {
			return lib.WrapErrorf(ErrInvalidMilestones, "milestone %q has unknown status %q", m.Label, m.Status)
		}
		if !labels.Add(m.Label) {
			return lib.WrapErrorf(ErrInvalidMilestones, "duplicate milestone %q", m.Label)
		}
		total += m.Percentage
	}
	if total != 100 {
		return lib.WrapErrorf(ErrInvalidMilestones, "percentages sum to %d, expected 100", total)
	}
	return nil
}

func (l *Ledger) PaidPercentage() int {
	paid := 0
	for _, m := range l.milestones {
		if m.Status == MilestonePaid {
			paid += m.Percentage
		}
	}
	return paid
}

// Pay marks a single milestone as paid
func (l *Ledger) Pay(label string) error {
	for i := range l.milestones {
		if l.milestones[i].Label != label {
			continue
		}
		if l.milestones[i].Status == MilestonePaid {
			return lib.WrapErrorf(ErrMilestoneAlreadyPaid, "%s", label)
		}
		l.milestones[i].Status = MilestonePaid
		return nil
	}
	return lib.WrapErrorf(ErrMilestoneNotFound, "%s", label)
}

// PayAll marks every milestone as paid and returns the labels that were pending
func (l *Ledger) PayAll() []string {
	var released []string
	for i := range l.milestones {
		if l.milestones[i].Status != MilestonePaid {
			l.milestones[i].Status = MilestonePaid
			released = append(released, l.milestones[i].Label)
		}
	}
	return released
}

func (l *Ledger) Find(label string) (Milestone, bool) {
	for _, m := range l.milestones {
		if m.Label == label {
			return m, true
		}
	}
	return Milestone{}, false
}

// EscrowFor is the amount held in escrow for a contract of the given total. Once every milestone
// is paid the result is exactly the total
func (l *Ledger) EscrowFor(total decimal.Decimal) decimal.Decimal {
	paid := l.PaidPercentage()
	if paid >= 100 {
		return total
	}
	return total.Mul(decimal.NewFromInt(int64(paid))).Div(decimal.NewFromInt(100)).Round(2)
}
