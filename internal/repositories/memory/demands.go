package memory

import (
	"context"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources/demands"
)

type DemandRepo struct {
	items *lib.Collection[*demands.Demand]
}

func NewDemandRepo() *DemandRepo {
	return &DemandRepo{items: lib.NewCollection[*demands.Demand]()}
}

func (r *DemandRepo) Get(ctx context.Context, id string) (*demands.Demand, error) {
	d, ok := r.items.Load(id)
	if !ok {
		return nil, lib.WrapErrorf(demands.ErrDemandNotFound, "%s", id)
	}
	return d.Clone(), nil
}

func (r *DemandRepo) List(ctx context.Context) ([]*demands.Demand, error) {
	res := make([]*demands.Demand, 0, r.items.Len())
	r.items.Range(func(d *demands.Demand) bool {
		res = append(res, d.Clone())
		return true
	})
	return res, nil
}

func (r *DemandRepo) Insert(ctx context.Context, d *demands.Demand) error {
	if _, loaded := r.items.LoadOrStore(d.Clone()); loaded {
		return lib.WrapErrorf(demands.ErrDemandExists, "%s", d.ID)
	}
	return nil
}

func (r *DemandRepo) Update(ctx context.Context, d *demands.Demand) error {
	if _, ok := r.items.Load(d.ID); !ok {
		return lib.WrapErrorf(demands.ErrDemandNotFound, "%s", d.ID)
	}
	r.items.Store(d.Clone())
	return nil
}
