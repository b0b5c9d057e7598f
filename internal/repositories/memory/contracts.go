package memory

import (
	"context"
	"sync"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
)

// ContractRepo keeps contracts in process memory. Stored records are never handed out directly
type ContractRepo struct {
	items *lib.Collection[*contract.Contract]
	audit sync.Mutex
}

func NewContractRepo() *ContractRepo {
	return &ContractRepo{items: lib.NewCollection[*contract.Contract]()}
}

func (r *ContractRepo) Get(ctx context.Context, id string) (*contract.Contract, error) {
	c, ok := r.items.Load(id)
	if !ok {
		return nil, lib.WrapErrorf(contract.ErrContractNotFound, "%s", id)
	}
	return c.Clone(), nil
}

func (r *ContractRepo) List(ctx context.Context) ([]*contract.Contract, error) {
	res := make([]*contract.Contract, 0, r.items.Len())
	r.items.Range(func(c *contract.Contract) bool {
		res = append(res, c.Clone())
		return true
	})
	return res, nil
}

func (r *ContractRepo) Insert(ctx context.Context, c *contract.Contract) error {
	if _, loaded := r.items.LoadOrStore(c.Clone()); loaded {
		return lib.WrapErrorf(contract.ErrContractExists, "%s", c.ID)
	}
	return nil
}

// Commit replaces everything but the audit trail, which only grows by the given entries
func (r *ContractRepo) Commit(ctx context.Context, c *contract.Contract, entries ...contract.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.audit.Lock()
	defer r.audit.Unlock()

	stored, ok := r.items.Load(c.ID)
	if !ok {
		return lib.WrapErrorf(contract.ErrContractNotFound, "%s", c.ID)
	}
	cp := c.Clone()
	cp.AuditTrail = append(append([]contract.AuditEntry(nil), stored.AuditTrail...), entries...)
	r.items.Store(cp)
	return nil
}
