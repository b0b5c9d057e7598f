package contract

import (
	"time"

	"github.com/fasalsetu/agrilink/internal/resources/analysis"
	"github.com/shopspring/decimal"
)

type UpdateType string

const (
	UpdateSapling    UpdateType = "SAPLING"
	UpdateGrowth     UpdateType = "GROWTH"
	UpdateFertilizer UpdateType = "FERTILIZER"
	UpdateFlowering  UpdateType = "FLOWERING"
	UpdateHarvest    UpdateType = "HARVEST"
	UpdateRipeness   UpdateType = "RIPENESS"
	UpdatePackaging  UpdateType = "PACKAGING"
	UpdateLogistics  UpdateType = "LOGISTICS"
	UpdateGeneral    UpdateType = "GENERAL"
)

// farmer-submitted growth evidence, PACKAGING and LOGISTICS are produced by the tracker itself
var growthUpdateTypes = map[UpdateType]bool{
	UpdateSapling:    true,
	UpdateGrowth:     true,
	UpdateFertilizer: true,
	UpdateFlowering:  true,
	UpdateHarvest:    true,
	UpdateRipeness:   true,
	UpdateGeneral:    true,
}

type PackagingType string

const (
	PackagingCrate PackagingType = "Crate"
	PackagingSack  PackagingType = "Sack"
	PackagingBox   PackagingType = "Box"
)

type CargoCondition string

const (
	ConditionGood        CargoCondition = "GOOD"
	ConditionMinorDamage CargoCondition = "MINOR_DAMAGE"
	ConditionDefective   CargoCondition = "DEFECTIVE"
)

type DisputeType string

const (
	DisputeQuality  DisputeType = "QUALITY"
	DisputeQuantity DisputeType = "QUANTITY"
	DisputeDamage   DisputeType = "DAMAGE"
)

type Resolution string

const (
	ResolutionReleaseToFarmer Resolution = "RELEASE_TO_FARMER"
	ResolutionSplitLiability  Resolution = "SPLIT_LIABILITY"
	ResolutionRefundBuyer     Resolution = "REFUND_BUYER"
)

type LatLng struct {
	Lat     float64 `json:"lat"               yaml:"lat"`
	Lng     float64 `json:"lng"               yaml:"lng"`
	Address string  `json:"address,omitempty" yaml:"address,omitempty"`
}

type AuditEntry struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Event     string    `json:"event"     yaml:"event"`
	Actor     string    `json:"actor"     yaml:"actor"`
}

type CropUpdate struct {
	ID         string               `json:"id"                   yaml:"id"`
	Type       UpdateType           `json:"type"                 yaml:"type"`
	Timestamp  time.Time            `json:"timestamp"            yaml:"timestamp"`
	ImageURL   string               `json:"imageUrl"             yaml:"imageUrl"`
	Notes      string               `json:"notes"                yaml:"notes"`
	Location   LatLng               `json:"location"             yaml:"location"`
	AIAnalysis *analysis.AIAnalysis `json:"aiAnalysis,omitempty" yaml:"aiAnalysis,omitempty"`
}

type Packaging struct {
	Count  int           `json:"packageCount"    yaml:"packageCount"`
	Weight float64       `json:"packageWeight"   yaml:"packageWeight"`
	Type   PackagingType `json:"packagingType"   yaml:"packagingType"`
	Date   time.Time     `json:"packagingDate"   yaml:"packagingDate"`
	Photos []string      `json:"packagingPhotos" yaml:"packagingPhotos"`
}

// Checkpoint is the transporter's independent evidence captured at pickup
type Checkpoint struct {
	Photos     []string       `json:"transporterCheckpointPhotos" yaml:"photos"`
	VideoProof string         `json:"transporterVideoProof"       yaml:"videoProof"`
	Condition  CargoCondition `json:"transporterConditionNote"    yaml:"condition"`
}

type DisputeDetails struct {
	Type      DisputeType `json:"type"               yaml:"type"`
	Comment   string      `json:"comment"            yaml:"comment"`
	ProofURL  string      `json:"proofUrl,omitempty" yaml:"proofUrl,omitempty"`
	Timestamp time.Time   `json:"timestamp"          yaml:"timestamp"`
}

type Settlement struct {
	FarmerAmount decimal.Decimal `json:"farmerAmount" yaml:"farmerAmount"`
	BuyerRefund  decimal.Decimal `json:"buyerRefund"  yaml:"buyerRefund"`
}

type AdminResolution struct {
	Resolution Resolution `json:"resolution" yaml:"resolution"`
	AdminID    string     `json:"adminId"    yaml:"adminId"`
	Timestamp  time.Time  `json:"timestamp"  yaml:"timestamp"`
	Settlement Settlement `json:"settlement" yaml:"settlement"`
}

// Contract is one farmer-buyer-(transporter) trade
type Contract struct {
	ID            string `json:"id"                      yaml:"id"`
	DemandID      string `json:"demandId"                yaml:"demandId"`
	FarmerID      string `json:"farmerId"                yaml:"farmerId"`
	BuyerID       string `json:"buyerId"                 yaml:"buyerId"`
	TransporterID string `json:"transporterId,omitempty" yaml:"transporterId,omitempty"`
	FruitType     string `json:"fruitType"               yaml:"fruitType"`

	TotalAmount   decimal.Decimal `json:"totalAmount"   yaml:"totalAmount"`
	ShippingPrice decimal.Decimal `json:"shippingPrice" yaml:"shippingPrice"`
	EscrowBalance decimal.Decimal `json:"escrowBalance" yaml:"escrowBalance"`

	Status     Status       `json:"status"      yaml:"status"`
	Milestones []Milestone  `json:"milestones"  yaml:"milestones"`
	Updates    []CropUpdate `json:"updates"     yaml:"updates"` // newest first
	AuditTrail []AuditEntry `json:"auditTrail"  yaml:"auditTrail"`

	PickupLocation   *LatLng `json:"pickupLocation,omitempty"   yaml:"pickupLocation,omitempty"`
	DeliveryLocation *LatLng `json:"deliveryLocation,omitempty" yaml:"deliveryLocation,omitempty"`
	PickupOTP        string  `json:"pickupOTP,omitempty"        yaml:"pickupOTP,omitempty"`
	DeliveryOTP      string  `json:"deliveryOTP,omitempty"      yaml:"deliveryOTP,omitempty"`

	Packaging                 *Packaging  `json:"packaging,omitempty"                 yaml:"packaging,omitempty"`
	Checkpoint                *Checkpoint `json:"checkpoint,omitempty"                yaml:"checkpoint,omitempty"`
	CollectedAt               *time.Time  `json:"collectedAt,omitempty"               yaml:"collectedAt,omitempty"`
	DeliveredAt               *time.Time  `json:"deliveredAt,omitempty"               yaml:"deliveredAt,omitempty"`
	BuyerConfirmationDeadline *time.Time  `json:"buyerConfirmationDeadline,omitempty" yaml:"buyerConfirmationDeadline,omitempty"`

	CurrentHealthScore *int   `json:"currentHealthScore,omitempty"   yaml:"currentHealthScore,omitempty"`
	PredictedHarvest   string `json:"predictedHarvestDate,omitempty" yaml:"predictedHarvestDate,omitempty"`

	Dispute    *DisputeDetails  `json:"disputeDetails,omitempty"  yaml:"disputeDetails,omitempty"`
	Resolution *AdminResolution `json:"adminResolution,omitempty" yaml:"adminResolution,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

func (c *Contract) GetID() string {
	return c.ID
}

// Clone returns a deep copy, so the result can be mutated without affecting the original
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	cp := *c

	cp.Milestones = append([]Milestone(nil), c.Milestones...)
	cp.AuditTrail = append([]AuditEntry(nil), c.AuditTrail...)

	if c.Updates != nil {
		cp.Updates = make([]CropUpdate, len(c.Updates))
		for i, u := range c.Updates {
			u.AIAnalysis = u.AIAnalysis.Clone()
			cp.Updates[i] = u
		}
	}

	cp.PickupLocation = clonePtr(c.PickupLocation)
	cp.DeliveryLocation = clonePtr(c.DeliveryLocation)
	cp.CollectedAt = clonePtr(c.CollectedAt)
	cp.DeliveredAt = clonePtr(c.DeliveredAt)
	cp.BuyerConfirmationDeadline = clonePtr(c.BuyerConfirmationDeadline)
	cp.CurrentHealthScore = clonePtr(c.CurrentHealthScore)
	cp.Dispute = clonePtr(c.Dispute)
	cp.Resolution = clonePtr(c.Resolution)

	if c.Packaging != nil {
		p := *c.Packaging
		p.Photos = append([]string(nil), c.Packaging.Photos...)
		cp.Packaging = &p
	}
	if c.Checkpoint != nil {
		ch := *c.Checkpoint
		ch.Photos = append([]string(nil), c.Checkpoint.Photos...)
		cp.Checkpoint = &ch
	}

	return &cp
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// HasParty is true if the user takes part in the trade
func (c *Contract) HasParty(userID string) bool {
	return userID != "" && (c.FarmerID == userID || c.BuyerID == userID || c.TransporterID == userID)
}
