package memory

import (
	"context"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources/users"
)

type UserRepo struct {
	items *lib.Collection[*users.User]
}

func NewUserRepo() *UserRepo {
	return &UserRepo{items: lib.NewCollection[*users.User]()}
}

func (r *UserRepo) Get(ctx context.Context, id string) (*users.User, error) {
	u, ok := r.items.Load(id)
	if !ok {
		return nil, lib.WrapErrorf(users.ErrUserNotFound, "%s", id)
	}
	return u.Clone(), nil
}

func (r *UserRepo) List(ctx context.Context) ([]*users.User, error) {
	res := make([]*users.User, 0, r.items.Len())
	r.items.Range(func(u *users.User) bool {
		res = append(res, u.Clone())
		return true
	})
	return res, nil
}

func (r *UserRepo) Insert(ctx context.Context, u *users.User) error {
	if _, loaded := r.items.LoadOrStore(u.Clone()); loaded {
		return lib.WrapErrorf(users.ErrUserExists, "%s", u.ID)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *users.User) error {
	if _, ok := r.items.Load(u.ID); !ok {
		return lib.WrapErrorf(users.ErrUserNotFound, "%s", u.ID)
	}
	r.items.Store(u.Clone())
	return nil
}
