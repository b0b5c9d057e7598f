package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fasalsetu/agrilink/internal/interfaces"
	"github.com/fasalsetu/agrilink/internal/lib"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect uint8

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Store keeps every entity as a JSON document next to the columns it is filtered by.
// Contract audit entries live in their own append-only table
type Store struct {
	db      *sql.DB
	dialect Dialect
	log     interfaces.ILogger
}

// Open connects to the database of the given driver ("sqlite" or "postgres") and creates the schema
func Open(ctx context.Context, driver string, dsn string, log interfaces.ILogger) (*Store, error) {
	var dialect Dialect
	switch driver {
	case "sqlite":
		dialect = DialectSQLite
	case "postgres":
		dialect = DialectPostgres
	default:
		return nil, lib.WrapErrorf(ErrUnknownDriver, "%s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}
	if dialect == DialectSQLite {
		// a single connection keeps in-memory databases alive and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	s := New(db, dialect, log)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Infof("connected to %s store", driver)
	return s, nil
}

func New(db *sql.DB, dialect Dialect, log interfaces.ILogger) *Store {
	return &Store{db: db, dialect: dialect, log: log}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		farmer_id TEXT NOT NULL,
		buyer_id TEXT NOT NULL,
		transporter_id TEXT NOT NULL DEFAULT '',
		doc TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contract_audit (
		contract_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		ts TEXT NOT NULL,
		event TEXT NOT NULL,
		actor TEXT NOT NULL,
		PRIMARY KEY (contract_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		doc TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS demands (
		id TEXT PRIMARY KEY,
		buyer_id TEXT NOT NULL,
		status TEXT NOT NULL,
		doc TEXT NOT NULL
	)`,
}

func (s *Store) Migrate(ctx context.Context) error {
	for _, q := range schema {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Contracts() *ContractRepo {
	return &ContractRepo{s: s}
}

func (s *Store) Users() *UserRepo {
	return &UserRepo{s: s}
}

func (s *Store) Demands() *DemandRepo {
	return &DemandRepo{s: s}
}

// rebind rewrites ? placeholders into the $n form postgres expects
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getDoc[T any](ctx context.Context, s *Store, q querier, table string, id string, notFound error) (*T, error) {
	var doc string
	err := q.QueryRowContext(ctx, s.rebind("SELECT doc FROM "+table+" WHERE id = ?"), id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lib.WrapErrorf(notFound, "%s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", table, id, err)
	}
	var item T
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", table, id, err)
	}
	return &item, nil
}

func listDocs[T any](ctx context.Context, s *Store, table string) ([]*T, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var items []*T
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal([]byte(doc), &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", table, err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func exists(ctx context.Context, s *Store, q querier, table string, id string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM "+table+" WHERE id = ?"), id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check %s %s: %w", table, id, err)
	}
	return n > 0, nil
}

func checkAffected(res sql.Result, notFound error, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return lib.WrapErrorf(notFound, "%s", id)
	}
	return nil
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
