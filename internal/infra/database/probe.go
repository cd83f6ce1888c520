package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Prober checks that the database answers queries.
type Prober struct {
	db rowQuerier
}

// NewProber wraps a pool or connection.
func NewProber(db rowQuerier) *Prober {
	return &Prober{db: db}
}

// Probe runs SELECT 1 and returns its result.
func (p *Prober) Probe(ctx context.Context) (int, error) {
	var result int
	if err := p.db.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return 0, fmt.Errorf("probe database: %w", err)
	}
	return result, nil
}

// Ping satisfies readiness checks.
func (p *Prober) Ping(ctx context.Context) error {
	_, err := p.Probe(ctx)
	return err
}
