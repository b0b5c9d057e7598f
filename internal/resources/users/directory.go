package users

import (
	"context"
	"strings"
	"time"

	"github.com/fasalsetu/agrilink/internal/interfaces"
	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Registration struct {
	Name      string         `validate:"required"`
	Role      resources.Role `validate:"required"`
	Phone     string         `validate:"required,min=10,max=15"`
	Email     string         `validate:"omitempty,email"`
	Location  string         `validate:"required"`
	Documents *Documents
	Metadata  *Metadata
}

// Directory manages the user accounts and their admin approval
type Directory struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
	log      interfaces.ILogger
}

func NewDirectory(repo Repository, log interfaces.ILogger) *Directory {
	return &Directory{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
		log:      log,
	}
}

// Register creates an account that stays pending until an admin approves it
func (d *Directory) Register(ctx context.Context, reg Registration) (*User, error) {
	if err := d.validate.Struct(reg); err != nil {
		return nil, lib.WrapError(ErrInvalidUser, err)
	}
	if reg.Role == resources.RoleAdmin {
		return nil, lib.WrapErrorf(ErrInvalidUser, "admin accounts cannot be self-registered")
	}

	all, err := d.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range all {
		if u.Phone == reg.Phone || (reg.Email != "" && strings.EqualFold(u.Email, reg.Email)) {
			return nil, lib.WrapErrorf(ErrUserExists, "phone or email already registered")
		}
	}

	u := &User{
		ID:               uuid.NewString(),
		Name:             reg.Name,
		Role:             reg.Role,
		Phone:            reg.Phone,
		Email:            reg.Email,
		Location:         reg.Location,
		Status:           StatusPending,
		KYCStatus:        KYCPending,
		RegistrationDate: d.now(),
		Documents:        reg.Documents,
		Metadata:         reg.Metadata,
	}
	if err := d.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	d.log.Infof("user %s registered as %s, awaiting approval", u.ID, u.Role)
	return u, nil
}

// Login finds the account by phone, email or id for the given role
func (d *Directory) Login(ctx context.Context, identifier string, role resources.Role) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrInvalidCredentials
	}
	all, err := d.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range all {
		if u.Role != role {
			continue
		}
		if u.Phone != identifier && u.ID != identifier && (u.Email == "" || !strings.EqualFold(u.Email, identifier)) {
			continue
		}
		if err := checkActive(u); err != nil {
			return nil, err
		}
		return u, nil
	}
	return nil, ErrInvalidCredentials
}

// Actor resolves an approved account to the actor it acts as
func (d *Directory) Actor(ctx context.Context, id string) (resources.Actor, error) {
	u, err := d.repo.Get(ctx, id)
	if err != nil {
		return resources.Actor{}, err
	}
	if err := checkActive(u); err != nil {
		return resources.Actor{}, err
	}
	return u.Actor(), nil
}

func (d *Directory) Get(ctx context.Context, id string) (*User, error) {
	return d.repo.Get(ctx, id)
}

func (d *Directory) List(ctx context.Context) ([]*User, error) {
	return d.repo.List(ctx)
}

func (d *Directory) ListPending(ctx context.Context) ([]*User, error) {
	all, err := d.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var res []*User
	for _, u := range all {
		if u.Status == StatusPending {
			res = append(res, u)
		}
	}
	return res, nil
}

func (d *Directory) Approve(ctx context.Context, id string) (*User, error) {
	return d.setStatus(ctx, id, StatusApproved, KYCVerified)
}

func (d *Directory) Reject(ctx context.Context, id string) (*User, error) {
	return d.setStatus(ctx, id, StatusRejected, KYCRejected)
}

// Deactivate suspends an account, its KYC state is kept
func (d *Directory) Deactivate(ctx context.Context, id string) (*User, error) {
	return d.setStatus(ctx, id, StatusDeactivated, "")
}

func (d *Directory) setStatus(ctx context.Context, id string, status Status, kyc KYCStatus) (*User, error) {
	u, err := d.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == resources.RoleAdmin {
		return nil, lib.WrapErrorf(ErrInvalidUser, "admin accounts cannot change status")
	}
	u.Status = status
	if kyc != "" {
		u.KYCStatus = kyc
	}
	if err := d.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	d.log.Infof("user %s is now %s", u.ID, status)
	return u, nil
}

func checkActive(u *User) error {
	switch u.Status {
	case StatusApproved:
		return nil
	case StatusPending:
		return ErrAccountPending
	default:
		return lib.WrapErrorf(ErrAccountInactive, "account is %s", u.Status)
	}
}
