package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
)

type ContractRepo struct {
	s *Store
}

func (r *ContractRepo) Get(ctx context.Context, id string) (*contract.Contract, error) {
	c, err := getDoc[contract.Contract](ctx, r.s, r.s.db, "contracts", id, contract.ErrContractNotFound)
	if err != nil {
		return nil, err
	}
	trails, err := r.loadAudit(ctx, "WHERE contract_id = ?", id)
	if err != nil {
		return nil, err
	}
	c.AuditTrail = trails[id]
	return c, nil
}

func (r *ContractRepo) List(ctx context.Context) ([]*contract.Contract, error) {
	items, err := listDocs[contract.Contract](ctx, r.s, "contracts")
	if err != nil {
		return nil, err
	}
	trails, err := r.loadAudit(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, c := range items {
		c.AuditTrail = trails[c.ID]
	}
	return items, nil
}

func (r *ContractRepo) Insert(ctx context.Context, c *contract.Contract) error {
	doc, err := encodeContract(c)
	if err != nil {
		return err
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		found, err := exists(ctx, r.s, tx, "contracts", c.ID)
		if err != nil {
			return err
		}
		if found {
			return lib.WrapErrorf(contract.ErrContractExists, "%s", c.ID)
		}
		_, err = tx.ExecContext(ctx, r.s.rebind(
			"INSERT INTO contracts (id, status, farmer_id, buyer_id, transporter_id, doc, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"),
			c.ID, c.Status.String(), c.FarmerID, c.BuyerID, c.TransporterID, doc, formatTime(c.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert contract: %w", err)
		}
		return r.appendAudit(ctx, tx, c.ID, c.AuditTrail)
	})
}

// Commit replaces the contract document and appends the audit entries in one transaction
func (r *ContractRepo) Commit(ctx context.Context, c *contract.Contract, entries ...contract.AuditEntry) error {
	doc, err := encodeContract(c)
	if err != nil {
		return err
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.s.rebind(
			"UPDATE contracts SET status = ?, transporter_id = ?, doc = ?, updated_at = ? WHERE id = ?"),
			c.Status.String(), c.TransporterID, doc, formatTime(c.UpdatedAt), c.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update contract: %w", err)
		}
		if err := checkAffected(res, contract.ErrContractNotFound, c.ID); err != nil {
			return err
		}
		return r.appendAudit(ctx, tx, c.ID, entries)
	})
}

func (r *ContractRepo) appendAudit(ctx context.Context, tx *sql.Tx, id string, entries []contract.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	var last int64
	err := tx.QueryRowContext(ctx, r.s.rebind("SELECT COALESCE(MAX(seq), 0) FROM contract_audit WHERE contract_id = ?"), id).Scan(&last)
	if err != nil {
		return fmt.Errorf("failed to read audit sequence: %w", err)
	}
	for i, e := range entries {
		_, err := tx.ExecContext(ctx, r.s.rebind(
			"INSERT INTO contract_audit (contract_id, seq, ts, event, actor) VALUES (?, ?, ?, ?, ?)"),
			id, last+int64(i)+1, formatTime(e.Timestamp), e.Event, e.Actor,
		)
		if err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}
	}
	return nil
}

func (r *ContractRepo) loadAudit(ctx context.Context, where string, args ...any) (map[string][]contract.AuditEntry, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.rebind("SELECT contract_id, ts, event, actor FROM contract_audit "+where+" ORDER BY contract_id, seq"), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}
	defer func() { _ = rows.Close() }()

	res := make(map[string][]contract.AuditEntry)
	for rows.Next() {
		var (
			id string
			ts string
			e  contract.AuditEntry
		)
		if err := rows.Scan(&id, &ts, &e.Event, &e.Actor); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("invalid audit timestamp %q: %w", ts, err)
		}
		res[id] = append(res[id], e)
	}
	return res, rows.Err()
}

func (r *ContractRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// encodeContract serializes everything but the audit trail, which has its own table
func encodeContract(c *contract.Contract) (string, error) {
	cp := *c
	cp.AuditTrail = nil
	doc, err := encode(&cp)
	if err != nil {
		return "", fmt.Errorf("failed to encode contract %s: %w", c.ID, err)
	}
	return doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
