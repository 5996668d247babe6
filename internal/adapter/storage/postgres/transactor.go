package postgres

import (
	"context"
	"fmt"

	"marketplace-backoffice/internal/core/ports"
)

// Transactor implements ports.Transactor over the connection pool.
// pgx.Tx satisfies the Pool interface, so the tx-scoped repositories
// are the ordinary repositories bound to the transaction.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// WithinTx begins a transaction, runs fn with tx-scoped repositories,
// and commits. Any error from fn rolls everything back.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ports.TxRepos) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// No-op once committed.
	defer tx.Rollback(ctx)

	repos := ports.TxRepos{
		Users:   NewUserRepo(tx),
		KYC:     NewKYCRepo(tx),
		Orders:  NewOrderRepo(tx),
		Payouts: NewPayoutRepo(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
