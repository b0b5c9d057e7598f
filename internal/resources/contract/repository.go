package contract

import "context"

// Repository stores contracts. Implementations return copies, so callers own what they get.
// Commit persists the contract and appends the audit entries as one write: either both land or neither does
type Repository interface {
	Get(ctx context.Context, id string) (*Contract, error)
	List(ctx context.Context) ([]*Contract, error)
	Insert(ctx context.Context, c *Contract) error
	Commit(ctx context.Context, c *Contract, entries ...AuditEntry) error
}
