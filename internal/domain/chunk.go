package domain

// ChunkMetadata carries the curriculum coordinates of a chunk.
type ChunkMetadata struct {
	Subject string
	Grade   string
	Chapter string
}

// Chunk is a bounded span of curriculum text plus its embedding, the unit of
// retrieval. Immutable once created; owned by the embedding index.
type Chunk struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  ChunkMetadata
}
