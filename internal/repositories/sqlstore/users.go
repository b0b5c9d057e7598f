package sqlstore

import (
	"context"
	"fmt"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources/users"
)

type UserRepo struct {
	s *Store
}

func (r *UserRepo) Get(ctx context.Context, id string) (*users.User, error) {
	return getDoc[users.User](ctx, r.s, r.s.db, "users", id, users.ErrUserNotFound)
}

func (r *UserRepo) List(ctx context.Context) ([]*users.User, error) {
	return listDocs[users.User](ctx, r.s, "users")
}

func (r *UserRepo) Insert(ctx context.Context, u *users.User) error {
	found, err := exists(ctx, r.s, r.s.db, "users", u.ID)
	if err != nil {
		return err
	}
	if found {
		return lib.WrapErrorf(users.ErrUserExists, "%s", u.ID)
	}
	doc, err := encode(u)
	if err != nil {
		return fmt.Errorf("failed to encode user %s: %w", u.ID, err)
	}
	_, err = r.s.db.ExecContext(ctx, r.s.rebind("INSERT INTO users (id, role, status, doc) VALUES (?, ?, ?, ?)"),
		u.ID, u.Role.String(), string(u.Status), doc)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *users.User) error {
	doc, err := encode(u)
	if err != nil {
		return fmt.Errorf("failed to encode user %s: %w", u.ID, err)
	}
	res, err := r.s.db.ExecContext(ctx, r.s.rebind("UPDATE users SET role = ?, status = ?, doc = ? WHERE id = ?"),
		u.Role.String(), string(u.Status), doc, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(res, users.ErrUserNotFound, u.ID)
}
