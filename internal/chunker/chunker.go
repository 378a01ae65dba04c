package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

// Config controls how a document is split into chunks.
type Config struct {
	ChunkSize int
	Overlap   int
}

// DefaultConfig provides sane defaults for curriculum chunking.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 1200,
		Overlap:   200,
	}
}

// separators are tried in priority order when looking for a cut point:
// paragraph break, line break, sentence end, word boundary.
var separators = []string{"\n\n", "\n", ". ", " "}

// Validate checks the chunking configuration.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return domain.ErrInvalidChunkSize
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return domain.ErrOverlapTooLarge
	}
	return nil
}

// Chunk splits document into chunks of at most cfg.ChunkSize characters,
// preferring to cut at separator boundaries. Consecutive chunks share exactly
// cfg.Overlap characters of context. The split is deterministic: identical
// input and configuration always produce identical chunks, including ids.
func Chunk(document string, cfg Config, meta domain.ChunkMetadata) ([]domain.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runes := []rune(document)
	if len(runes) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	var chunks []domain.Chunk
	start := 0
	for start < len(runes) {
		end := start + cfg.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = cutPoint(runes, start, end, cfg.Overlap)
		}

		text := string(runes[start:end])
		chunks = append(chunks, domain.Chunk{
			ID:       chunkID(meta, len(chunks), text),
			Text:     text,
			Metadata: meta,
		})

		if end >= len(runes) {
			break
		}
		start = end - cfg.Overlap
	}

	return chunks, nil
}

// cutPoint finds the rightmost separator boundary in (start+overlap, limit]
// so the next chunk still makes forward progress after stepping back by
// overlap. Falls back to a hard character slice at limit.
func cutPoint(runes []rune, start, limit, overlap int) int {
	text := string(runes[start:limit])
	minCut := overlap + 1

	for _, sep := range separators {
		if cut := lastBoundary(text, sep, minCut); cut > 0 {
			return start + cut
		}
	}
	return limit
}

// lastBoundary returns the rune offset just past the last occurrence of sep in
// text, or 0 if no occurrence ends at or after minCut.
func lastBoundary(text, sep string, minCut int) int {
	runes := []rune(text)
	sepRunes := []rune(sep)
	for i := len(runes) - len(sepRunes); i >= 0; i-- {
		if string(runes[i:i+len(sepRunes)]) == sep {
			cut := i + len(sepRunes)
			if cut >= minCut {
				return cut
			}
			return 0
		}
	}
	return 0
}

func chunkID(meta domain.ChunkMetadata, index int, text string) string {
	sum := sha256.Sum256([]byte(meta.Subject + "|" + meta.Grade + "|" + meta.Chapter + "|" + text))
	return fmt.Sprintf("%s-%04d", hex.EncodeToString(sum[:6]), index)
}
