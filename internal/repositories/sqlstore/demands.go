package sqlstore

import (
	"context"
	"fmt"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources/demands"
)

type DemandRepo struct {
	s *Store
}

func (r *DemandRepo) Get(ctx context.Context, id string) (*demands.Demand, error) {
	return getDoc[demands.Demand](ctx, r.s, r.s.db, "demands", id, demands.ErrDemandNotFound)
}

func (r *DemandRepo) List(ctx context.Context) ([]*demands.Demand, error) {
	return listDocs[demands.Demand](ctx, r.s, "demands")
}

func (r *DemandRepo) Insert(ctx context.Context, d *demands.Demand) error {
	found, err := exists(ctx, r.s, r.s.db, "demands", d.ID)
	if err != nil {
		return err
	}
	if found {
		return lib.WrapErrorf(demands.ErrDemandExists, "%s", d.ID)
	}
	doc, err := encode(d)
	if err != nil {
		return fmt.Errorf("failed to encode demand %s: %w", d.ID, err)
	}
	_, err = r.s.db.ExecContext(ctx, r.s.rebind("INSERT INTO demands (id, buyer_id, status, doc) VALUES (?, ?, ?, ?)"),
		d.ID, d.BuyerID, string(d.Status), doc)
	if err != nil {
		return fmt.Errorf("failed to insert demand: %w", err)
	}
	return nil
}

func (r *DemandRepo) Update(ctx context.Context, d *demands.Demand) error {
	doc, err := encode(d)
	if err != nil {
		return fmt.Errorf("failed to encode demand %s: %w", d.ID, err)
	}
	res, err := r.s.db.ExecContext(ctx, r.s.rebind("UPDATE demands SET status = ?, doc = ? WHERE id = ?"),
		string(d.Status), doc, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update demand: %w", err)
	}
	return checkAffected(res, demands.ErrDemandNotFound, d.ID)
}
