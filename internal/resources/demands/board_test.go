package demands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/repositories/memory"
	"github.com/fasalsetu/agrilink/internal/resources"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/fasalsetu/agrilink/internal/resources/demands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var (
	farmer  = resources.Actor{ID: "f1", Role: resources.RoleFarmer}
	farmer2 = resources.Actor{ID: "f2", Role: resources.RoleFarmer}
	buyer   = resources.Actor{ID: "b2", Role: resources.RoleBuyer}
)

func boardSetup() (*demands.Board, *memory.ContractRepo) {
	log := lib.NewTestLogger()
	contracts := memory.NewContractRepo()
	tracker := contract.NewTracker(contracts, &lib.FixedOTP{}, contract.NewLogNotifier(log), contract.TrackerConfig{}, log)
	return demands.NewBoard(memory.NewDemandRepo(), tracker, log), contracts
}

func mangoDemand() demands.Demand {
	return demands.Demand{
		CropName:         "Alphonso Mango",
		Quantity:         decimal.NewFromInt(1000),
		QualityGrade:     "A",
		TargetPrice:      decimal.NewFromInt(120),
		ShippingBudget:   decimal.NewFromInt(3500),
		DeliveryLocation: contract.LatLng{Lat: 19.076, Lng: 72.8777, Address: "Vashi APMC, Navi Mumbai"},
	}
}

func TestPostDemand(t *testing.T) {
	b, _ := boardSetup()
	ctx := context.Background()

	d, err := b.Post(ctx, buyer, mangoDemand())
	require.NoError(t, err)
	require.Equal(t, demands.StatusOpen, d.Status)
	require.Equal(t, buyer.ID, d.BuyerID)
	require.True(t, d.Total().Equal(decimal.NewFromInt(120000)))

	open, err := b.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	_, err = b.Post(ctx, farmer, mangoDemand())
	require.ErrorIs(t, err, contract.ErrActorNotAllowed)

	invalid := map[string]func(d *demands.Demand){
		"no crop":          func(d *demands.Demand) { d.CropName = " " },
		"zero quantity":    func(d *demands.Demand) { d.Quantity = decimal.Zero },
		"negative price":   func(d *demands.Demand) { d.TargetPrice = decimal.NewFromInt(-1) },
		"negative shipping": func(d *demands.Demand) { d.ShippingBudget = decimal.NewFromInt(-5) },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			d := mangoDemand()
			mutate(&d)
			_, err := b.Post(ctx, buyer, d)
			require.ErrorIs(t, err, demands.ErrInvalidDemand)
		})
	}
}

func TestAcceptCreatesContract(t *testing.T) {
	b, _ := boardSetup()
	ctx := context.Background()

	d, err := b.Post(ctx, buyer, mangoDemand())
	require.NoError(t, err)

	c, err := b.Accept(ctx, d.ID, farmer)
	require.NoError(t, err)
	require.Equal(t, contract.StatusSowing, c.Status)
	require.Equal(t, d.ID, c.DemandID)
	require.Equal(t, farmer.ID, c.FarmerID)
	require.Equal(t, buyer.ID, c.BuyerID)
	require.True(t, c.TotalAmount.Equal(decimal.NewFromInt(120000)))
	require.True(t, c.ShippingPrice.Equal(decimal.NewFromInt(3500)))
	require.True(t, c.EscrowBalance.Equal(decimal.NewFromInt(36000)))
	require.Equal(t, "Vashi APMC, Navi Mumbai", c.DeliveryLocation.Address)

	d, err = b.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, demands.StatusMatched, d.Status)
	require.Equal(t, c.ID, d.ContractID)

	_, err = b.Accept(ctx, d.ID, farmer2)
	require.ErrorIs(t, err, demands.ErrDemandNotOpen)

	_, err = b.Accept(ctx, d.ID, buyer)
	require.ErrorIs(t, err, contract.ErrActorNotAllowed)

	_, err = b.Accept(ctx, "missing", farmer)
	require.ErrorIs(t, err, demands.ErrDemandNotFound)
}

func TestAcceptOnlyOnce(t *testing.T) {
	b, contracts := boardSetup()
	ctx := context.Background()

	d, err := b.Post(ctx, buyer, mangoDemand())
	require.NoError(t, err)

	farmers := []resources.Actor{farmer, farmer2, {ID: "f3", Role: resources.RoleFarmer}, {ID: "f4", Role: resources.RoleFarmer}}
	var g errgroup.Group
	for _, f := range farmers {
		g.Go(func() error {
			_, err := b.Accept(ctx, d.ID, f)
			return err
		})
	}
	require.ErrorIs(t, g.Wait(), demands.ErrDemandNotOpen)

	all, err := contracts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

type failingCreator struct {
	err error
}

func (f failingCreator) CreateFromDemand(ctx context.Context, actor resources.Actor, terms contract.Terms) (*contract.Contract, error) {
	return nil, f.err
}

// flakyDemandRepo fails the first Update
type flakyDemandRepo struct {
	*memory.DemandRepo
	failed bool
}

var errStoreDown = errors.New("store unavailable")

func (r *flakyDemandRepo) Update(ctx context.Context, d *demands.Demand) error {
	if !r.failed {
		r.failed = true
		return errStoreDown
	}
	return r.DemandRepo.Update(ctx, d)
}

func TestAcceptReopensDemandWhenContractFails(t *testing.T) {
	ctx := context.Background()
	b := demands.NewBoard(memory.NewDemandRepo(), failingCreator{err: errStoreDown}, lib.NewTestLogger())

	d, err := b.Post(ctx, buyer, mangoDemand())
	require.NoError(t, err)

	_, err = b.Accept(ctx, d.ID, farmer)
	require.ErrorIs(t, err, errStoreDown)

	d, err = b.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, demands.StatusOpen, d.Status)
	require.Empty(t, d.ContractID)
}

func TestAcceptCreatesNoContractWhenDemandUpdateFails(t *testing.T) {
	ctx := context.Background()
	log := lib.NewTestLogger()
	contracts := memory.NewContractRepo()
	tracker := contract.NewTracker(contracts, &lib.FixedOTP{}, contract.NewLogNotifier(log), contract.TrackerConfig{}, log)
	b := demands.NewBoard(&flakyDemandRepo{DemandRepo: memory.NewDemandRepo()}, tracker, log)

	d, err := b.Post(ctx, buyer, mangoDemand())
	require.NoError(t, err)

	_, err = b.Accept(ctx, d.ID, farmer)
	require.ErrorIs(t, err, errStoreDown)
	all, err := contracts.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	c, err := b.Accept(ctx, d.ID, farmer2)
	require.NoError(t, err)
	_, err = b.Accept(ctx, d.ID, farmer)
	require.ErrorIs(t, err, demands.ErrDemandNotOpen)

	all, err = contracts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	d, err = b.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, d.ContractID)
}
