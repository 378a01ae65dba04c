package admin

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/brightpath-ai/tutorflow/internal/config"
	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/index"
	"github.com/brightpath-ai/tutorflow/internal/openai"
	"github.com/brightpath-ai/tutorflow/internal/repository"
	"github.com/brightpath-ai/tutorflow/internal/service"
)

// IngestCmd returns the ingest command: chunk and embed a curriculum document
// from a local file and persist the result, without running the server.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a curriculum document into the index",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().String("subject", "", "Subject tag for the ingested chunks")
	cmd.Flags().String("grade", "", "Grade tag for the ingested chunks")
	cmd.Flags().String("chapter", "", "Chapter tag for the ingested chunks")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("TUTORFLOW_OPENAI_API_KEY is required")
	}

	document, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	subject, _ := cmd.Flags().GetString("subject")
	grade, _ := cmd.Flags().GetString("grade")
	chapter, _ := cmd.Flags().GetString("chapter")

	svc := service.NewKnowledgeService(
		openai.NewClient(cfg.OpenAIAPIKey),
		index.NewStore(),
		repository.NewChunkRepository(pool),
		repository.NewTxRunner(pool),
		nil,
		chunkConfig(cfg),
	)

	result, err := svc.Rebuild(ctx, service.RebuildRequest{
		Document: string(document),
		Metadata: domain.ChunkMetadata{Subject: subject, Grade: grade, Chapter: chapter},
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	log.Printf("ingested %d chunks (dimension %d)", result.ChunkCount, result.Dimension)
	return nil
}
