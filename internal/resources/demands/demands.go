package demands

import (
	"context"
	"errors"

	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/shopspring/decimal"
)

var (
	ErrDemandNotFound = errors.New("demand not found")
	ErrDemandExists   = errors.New("demand already exists")
	ErrDemandNotOpen  = errors.New("demand is not open")
	ErrInvalidDemand  = errors.New("invalid demand")
)

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusMatched   Status = "MATCHED"
	StatusCancelled Status = "CANCELLED"
)

// Demand is a requirement posted by a buyer that farmers can accept
type Demand struct {
	ID               string          `json:"id"                   yaml:"id"`
	BuyerID          string          `json:"buyerId"              yaml:"buyerId"`
	CropName         string          `json:"cropName"             yaml:"cropName"`
	Quantity         decimal.Decimal `json:"quantity"             yaml:"quantity"`
	QualityGrade     string          `json:"qualityGrade"         yaml:"qualityGrade"`
	TargetPrice      decimal.Decimal `json:"targetPrice"          yaml:"targetPrice"`
	Status           Status          `json:"status"               yaml:"status"`
	Description      string          `json:"description"          yaml:"description"`
	ShippingBudget   decimal.Decimal `json:"shippingBudget"       yaml:"shippingBudget"`
	DeliveryLocation contract.LatLng `json:"deliveryLocation"     yaml:"deliveryLocation"`
	ContractID       string          `json:"contractId,omitempty" yaml:"contractId,omitempty"`
}

func (d *Demand) GetID() string {
	return d.ID
}

func (d *Demand) Clone() *Demand {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}

// Total is the contract value when the demand is matched
func (d *Demand) Total() decimal.Decimal {
	return d.TargetPrice.Mul(d.Quantity)
}

type Repository interface {
	Get(ctx context.Context, id string) (*Demand, error)
	List(ctx context.Context) ([]*Demand, error)
	Insert(ctx context.Context, d *Demand) error
	Update(ctx context.Context, d *Demand) error
}
