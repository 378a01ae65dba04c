package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

// TxRunner runs repository operations inside a single transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithChunks(ctx context.Context, fn func(repo *ChunkRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(NewChunkRepositoryWithTx(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// ReplaceAll swaps the stored chunk set inside one transaction, so a failed
// rebuild never leaves the table half-written.
func (r *TxRunner) ReplaceAll(ctx context.Context, chunks []domain.Chunk) error {
	return r.WithChunks(ctx, func(repo *ChunkRepository) error {
		return repo.ReplaceAll(ctx, chunks)
	})
}
