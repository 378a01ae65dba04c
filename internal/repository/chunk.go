package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

// dbtx is the subset of pgxpool.Pool and pgx.Tx the repositories need.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChunkRepository persists curriculum chunks and their embeddings. Postgres is
// the system of record; the in-memory index is rebuilt from it on startup.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// ReplaceAll swaps the stored chunk set for a whole new one. Callers wrap this
// in a transaction so readers never observe a half-replaced corpus.
func (r *ChunkRepository) ReplaceAll(ctx context.Context, chunks []domain.Chunk) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM curriculum_chunks`); err != nil {
		return err
	}

	now := time.Now().UTC()
	for i, c := range chunks {
		_, err := r.db.Exec(ctx,
			`INSERT INTO curriculum_chunks
				(id, chunk_index, subject, grade, chapter, content, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID,
			i,
			c.Metadata.Subject,
			c.Metadata.Grade,
			c.Metadata.Chapter,
			c.Text,
			pgvector.NewVector(c.Embedding),
			now,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// LoadAll returns every stored chunk in insertion order.
func (r *ChunkRepository) LoadAll(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, subject, grade, chapter, content, embedding
		 FROM curriculum_chunks ORDER BY chunk_index`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var embedding pgvector.Vector
		if err := rows.Scan(&c.ID, &c.Metadata.Subject, &c.Metadata.Grade, &c.Metadata.Chapter, &c.Text, &embedding); err != nil {
			return nil, err
		}
		c.Embedding = embedding.Slice()
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}

// Count returns the number of stored chunks.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM curriculum_chunks`).Scan(&n)
	return n, err
}
