package service

import (
	"context"
	"strings"
	"time"

	"github.com/brightpath-ai/tutorflow/internal/chunker"
	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/index"
	"github.com/brightpath-ai/tutorflow/internal/telemetry"
)

// ChunkStore reads persisted curriculum chunks.
type ChunkStore interface {
	LoadAll(ctx context.Context) ([]domain.Chunk, error)
	Count(ctx context.Context) (int, error)
}

// ChunkReplacer atomically replaces the persisted chunk set.
type ChunkReplacer interface {
	ReplaceAll(ctx context.Context, chunks []domain.Chunk) error
}

// DocumentStore fetches curriculum source documents by key.
type DocumentStore interface {
	GetDocument(ctx context.Context, key string) (string, error)
}

// RebuildRequest names the curriculum document to ingest: either inline text
// or an object key in document storage. ChunkSize and Overlap override the
// configured chunking parameters when set.
type RebuildRequest struct {
	Document    string               `json:"document"`
	DocumentKey string               `json:"document_key"`
	Metadata    domain.ChunkMetadata `json:"metadata"`
	ChunkSize   int                  `json:"chunk_size,omitempty"`
	Overlap     int                  `json:"overlap,omitempty"`
}

// RebuildResult summarizes a completed index rebuild.
type RebuildResult struct {
	ChunkCount int       `json:"chunk_count"`
	Dimension  int       `json:"dimension"`
	BuiltAt    time.Time `json:"built_at"`
}

// Stats describes the currently served index.
type Stats struct {
	ChunkCount     int        `json:"chunk_count"`
	Dimension      int        `json:"dimension"`
	BuiltAt        *time.Time `json:"built_at,omitempty"`
	PersistedCount int        `json:"persisted_count"`
}

// KnowledgeService owns the curriculum index lifecycle: ingesting documents,
// rebuilding the in-memory index, persisting chunks, and serving stats.
// Queries keep hitting the previous index until the swap, so a rebuild never
// blocks reads.
type KnowledgeService struct {
	embedder index.Embedder
	store    *index.Store
	chunks   ChunkStore
	replacer ChunkReplacer
	docs     DocumentStore
	chunkCfg chunker.Config
}

func NewKnowledgeService(
	embedder index.Embedder,
	store *index.Store,
	chunks ChunkStore,
	replacer ChunkReplacer,
	docs DocumentStore,
	chunkCfg chunker.Config,
) *KnowledgeService {
	return &KnowledgeService{
		embedder: embedder,
		store:    store,
		chunks:   chunks,
		replacer: replacer,
		docs:     docs,
		chunkCfg: chunkCfg,
	}
}

// Rebuild chunks the document, embeds every chunk, persists the result and
// publishes the new index. Any failure leaves both the stored chunks and the
// served index untouched.
func (s *KnowledgeService) Rebuild(ctx context.Context, req RebuildRequest) (*RebuildResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "knowledge.rebuild", telemetry.SpanAttributes{Operation: "rebuild"})
	defer span.End()

	document, err := s.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}

	chunkCfg := s.chunkCfg
	if req.ChunkSize > 0 {
		chunkCfg.ChunkSize = req.ChunkSize
	}
	if req.Overlap > 0 {
		chunkCfg.Overlap = req.Overlap
	}

	pieces, err := chunker.Chunk(document, chunkCfg, req.Metadata)
	if err != nil {
		return nil, err
	}

	ix, err := index.Build(ctx, s.embedder, pieces)
	if err != nil {
		return nil, err
	}

	if s.replacer != nil {
		if err := s.replacer.ReplaceAll(ctx, ix.Chunks()); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError,
				"failed to persist rebuilt chunks", err)
		}
	}

	s.store.Swap(ix)

	return &RebuildResult{
		ChunkCount: ix.Size(),
		Dimension:  ix.Dimension(),
		BuiltAt:    ix.BuiltAt(),
	}, nil
}

// WarmStart loads persisted chunks into a fresh index on startup, so the
// service answers retrieval queries without waiting for a rebuild. An empty
// store is not an error; the service simply starts with no context.
func (s *KnowledgeService) WarmStart(ctx context.Context) (int, error) {
	if s.chunks == nil {
		return 0, nil
	}

	chunks, err := s.chunks.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	ix, err := index.FromChunks(chunks)
	if err != nil {
		return 0, err
	}

	s.store.Swap(ix)
	return ix.Size(), nil
}

// Stats reports the state of the served index and the persistent store.
func (s *KnowledgeService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if ix := s.store.Current(); ix != nil {
		stats.ChunkCount = ix.Size()
		stats.Dimension = ix.Dimension()
		builtAt := ix.BuiltAt()
		stats.BuiltAt = &builtAt
	}

	if s.chunks != nil {
		count, err := s.chunks.Count(ctx)
		if err != nil {
			return nil, err
		}
		stats.PersistedCount = count
	}

	return stats, nil
}

func (s *KnowledgeService) resolveDocument(ctx context.Context, req RebuildRequest) (string, error) {
	if doc := strings.TrimSpace(req.Document); doc != "" {
		return req.Document, nil
	}

	if req.DocumentKey == "" {
		return "", domain.ErrEmptyDocument
	}
	if s.docs == nil {
		return "", domain.NewDomainError(domain.ErrCodeConfig,
			"document key given but no document storage is configured")
	}

	document, err := s.docs.GetDocument(ctx, req.DocumentKey)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeNotFound,
			"failed to fetch document "+req.DocumentKey, err)
	}
	return document, nil
}
