package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/MrWong99/humanizer/pkg/lexicon"
)

var _ lexicon.Lexicon = (*Store)(nil)

// Store is the PostgreSQL-backed lexical store. It implements
// [lexicon.Lexicon] directly and exposes the word vector cache through
// [Store.LookupVectors], [Store.UpsertVectors] and [Store.ImportVectors].
//
// All operations are safe for concurrent use.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewStore creates a Store, establishes a connection pool to the database at
// dsn, registers pgvector types on every connection and runs [Migrate].
//
// dimensions is the length of the cached word vectors.
func NewStore(ctx context.Context, dsn string, dimensions int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool, dimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{pool: pool, dimensions: dimensions}, nil
}

// Dimensions returns the vector length the cache was migrated with.
func (s *Store) Dimensions() int { return s.dimensions }

// Ping verifies the database is reachable. It is used as a readiness check.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres store: ping: %w", err)
	}
	return nil
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}
