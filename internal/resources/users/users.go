package users

import (
	"context"
	"errors"
	"time"

	"github.com/fasalsetu/agrilink/internal/resources"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidUser        = errors.New("invalid user")
	ErrInvalidCredentials = errors.New("invalid credentials or role")
	ErrAccountPending     = errors.New("account is awaiting admin approval")
	ErrAccountInactive    = errors.New("account is not active")
)

type Status string

const (
	StatusPending     Status = "PENDING"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusDeactivated Status = "DEACTIVATED"
)

type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCVerified KYCStatus = "VERIFIED"
	KYCRejected KYCStatus = "REJECTED"
)

type Documents struct {
	IDProofURL       string   `json:"idProofUrl"                 yaml:"idProofUrl"`
	SelfieURL        string   `json:"selfieUrl"                  yaml:"selfieUrl"`
	ProfilePhotoURL  string   `json:"profilePhotoUrl"            yaml:"profilePhotoUrl"`
	RoleSpecificDocs []string `json:"roleSpecificDocs,omitempty" yaml:"roleSpecificDocs,omitempty"`
}

// Metadata holds the role specific profile fields
type Metadata struct {
	LandSize     float64  `json:"landSize,omitempty"     yaml:"landSize,omitempty"`
	Crops        []string `json:"crops,omitempty"        yaml:"crops,omitempty"`
	BankAccount  string   `json:"bankAccount,omitempty"  yaml:"bankAccount,omitempty"`
	BusinessName string   `json:"businessName,omitempty" yaml:"businessName,omitempty"`
	BuyerType    string   `json:"buyerType,omitempty"    yaml:"buyerType,omitempty"`
	GST          string   `json:"gst,omitempty"          yaml:"gst,omitempty"`
	VehicleType  string   `json:"vehicleType,omitempty"  yaml:"vehicleType,omitempty"`
	RegNumber    string   `json:"regNumber,omitempty"    yaml:"regNumber,omitempty"`
	Radius       float64  `json:"radius,omitempty"       yaml:"radius,omitempty"`
}

type User struct {
	ID                string         `json:"id"                          yaml:"id"`
	Name              string         `json:"name"                        yaml:"name"`
	Role              resources.Role `json:"role"                        yaml:"role"`
	Phone             string         `json:"phone"                       yaml:"phone"`
	Email             string         `json:"email,omitempty"             yaml:"email,omitempty"`
	Location          string         `json:"location"                    yaml:"location"`
	Status            Status         `json:"status"                      yaml:"status"`
	KYCStatus         KYCStatus      `json:"kycStatus"                   yaml:"kycStatus"`
	KrishiScore       *int           `json:"krishiScore,omitempty"       yaml:"krishiScore,omitempty"`
	TransporterRating *float64       `json:"transporterRating,omitempty" yaml:"transporterRating,omitempty"`
	RegistrationDate  time.Time      `json:"registrationDate"            yaml:"registrationDate"`
	Documents         *Documents     `json:"documents,omitempty"         yaml:"documents,omitempty"`
	Metadata          *Metadata      `json:"metadata,omitempty"          yaml:"metadata,omitempty"`
}

func (u *User) GetID() string {
	return u.ID
}

func (u *User) Actor() resources.Actor {
	return resources.Actor{ID: u.ID, Role: u.Role}
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.KrishiScore != nil {
		v := *u.KrishiScore
		cp.KrishiScore = &v
	}
	if u.TransporterRating != nil {
		v := *u.TransporterRating
		cp.TransporterRating = &v
	}
	if u.Documents != nil {
		d := *u.Documents
		d.RoleSpecificDocs = append([]string(nil), u.Documents.RoleSpecificDocs...)
		cp.Documents = &d
	}
	if u.Metadata != nil {
		m := *u.Metadata
		m.Crops = append([]string(nil), u.Metadata.Crops...)
		cp.Metadata = &m
	}
	return &cp
}

type Repository interface {
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
}
