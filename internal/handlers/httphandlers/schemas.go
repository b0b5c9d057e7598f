package httphandlers

import (
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/fasalsetu/agrilink/internal/resources/demands"
	"github.com/fasalsetu/agrilink/internal/resources/users"
	"github.com/shopspring/decimal"
)

type ConfigResponse struct {
	Version string
	Config  interface{}
}

type Resource struct {
	Self string `json:"self"`
}

type ContractResponse struct {
	Resource
	*contract.Contract
	EscrowPercentage int `json:"escrowPercentage"`
}

type DemandResponse struct {
	Resource
	*demands.Demand
	Total decimal.Decimal `json:"totalValue"`
}

type UserResponse struct {
	Resource
	*users.User
}

type RegisterRequest struct {
	Name      string           `json:"name"      binding:"required"`
	Role      string           `json:"role"      binding:"required"`
	Phone     string           `json:"phone"     binding:"required"`
	Email     string           `json:"email"`
	Location  string           `json:"location"  binding:"required"`
	Documents *users.Documents `json:"documents"`
	Metadata  *users.Metadata  `json:"metadata"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Role       string `json:"role"       binding:"required"`
}

type DemandRequest struct {
	CropName         string          `json:"cropName"         binding:"required"`
	Quantity         decimal.Decimal `json:"quantity"`
	QualityGrade     string          `json:"qualityGrade"`
	TargetPrice      decimal.Decimal `json:"targetPrice"`
	Description      string          `json:"description"`
	ShippingBudget   decimal.Decimal `json:"shippingBudget"`
	DeliveryLocation contract.LatLng `json:"deliveryLocation"`
}

// GrowthUpdateRequest carries the photo either as raw base64 or as a data url
type GrowthUpdateRequest struct {
	Type     string          `json:"type"     binding:"required"`
	Notes    string          `json:"notes"`
	Image    string          `json:"image"    binding:"required"`
	MimeType string          `json:"mimeType"`
	Location contract.LatLng `json:"location"`
}

type PackagingRequest struct {
	Count     int                         `json:"packageCount"`
	Weight    float64                     `json:"packageWeight"`
	Type      string                      `json:"packagingType"`
	Photos    []string                    `json:"packagingPhotos"`
	Checklist contract.PackagingChecklist `json:"checklist"`
}

type MilestoneRequest struct {
	Label string `json:"label" binding:"required"`
}

type OTPRequest struct {
	Code string `json:"code" binding:"required"`
}

type CheckpointRequest struct {
	Photos     []string `json:"photos"`
	VideoProof string   `json:"videoProof"`
	Condition  string   `json:"condition"`
}

type DisputeRequest struct {
	Type     string `json:"type"     binding:"required"`
	Comment  string `json:"comment"`
	ProofURL string `json:"proofUrl"`
}

type ResolveRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

type ChatRequest struct {
	SessionID  string `json:"sessionId" binding:"required"`
	Message    string `json:"message"   binding:"required"`
	ContractID string `json:"contractId"`
}
