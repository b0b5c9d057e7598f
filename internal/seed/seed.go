package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/fasalsetu/agrilink/internal/interfaces"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/fasalsetu/agrilink/internal/resources/demands"
	"github.com/fasalsetu/agrilink/internal/resources/users"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the demo marketplace data the service can start with
type Fixtures struct {
	Users     []*users.User        `yaml:"users"`
	Demands   []*demands.Demand    `yaml:"demands"`
	Contracts []*contract.Contract `yaml:"contracts"`
}

func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

func Parse(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	for _, c := range fx.Contracts {
		ledger := contract.NewLedger(c.Milestones)
		if err := ledger.Validate(); err != nil {
			return nil, fmt.Errorf("fixture contract %s: %w", c.ID, err)
		}
		if !ledger.EscrowFor(c.TotalAmount).Equal(c.EscrowBalance) {
			return nil, fmt.Errorf("fixture contract %s: escrow %s does not match paid milestones", c.ID, c.EscrowBalance)
		}
	}
	return &fx, nil
}

// Load inserts the fixtures, records that already exist are left untouched
func Load(ctx context.Context, fx *Fixtures, ur users.Repository, dr demands.Repository, cr contract.Repository, log interfaces.ILogger) error {
	for _, u := range fx.Users {
		if err := skipExisting(ur.Insert(ctx, u), users.ErrUserExists); err != nil {
			return err
		}
	}
	for _, d := range fx.Demands {
		if err := skipExisting(dr.Insert(ctx, d), demands.ErrDemandExists); err != nil {
			return err
		}
	}
	for _, c := range fx.Contracts {
		if err := skipExisting(cr.Insert(ctx, c), contract.ErrContractExists); err != nil {
			return err
		}
	}
	log.Infof("seeded %d users, %d demands, %d contracts", len(fx.Users), len(fx.Demands), len(fx.Contracts))
	return nil
}

func skipExisting(err error, exists error) error {
	if err == nil || errors.Is(err, exists) {
		return nil
	}
	return err
}
