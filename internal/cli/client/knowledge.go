package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/service"
)

// KnowledgeCmd creates the knowledge command group.
func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage the curriculum index",
	}

	cmd.AddCommand(rebuildCmd())
	cmd.AddCommand(statsCmd())

	return cmd
}

func rebuildCmd() *cobra.Command {
	var (
		file      string
		key       string
		subject   string
		grade     string
		chapter   string
		chunkSize int
		overlap   int
		async     bool
	)

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the curriculum index from a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.RebuildRequest{
				DocumentKey: key,
				Metadata:    domain.ChunkMetadata{Subject: subject, Grade: grade, Chapter: chapter},
				ChunkSize:   chunkSize,
				Overlap:     overlap,
			}

			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read document: %w", err)
				}
				req.Document = string(data)
			}
			if req.Document == "" && req.DocumentKey == "" {
				return fmt.Errorf("provide --file or --key")
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			path := "/knowledge/rebuild"
			if async {
				path += "?async=1"
			}

			resp, err := api.Post(path, req)
			if err != nil {
				return err
			}

			if async {
				cmd.Println("rebuild queued")
				return nil
			}

			var result service.RebuildResult
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				return fmt.Errorf("failed to parse result: %w", err)
			}
			cmd.Printf("rebuilt index: %d chunks, dimension %d\n", result.ChunkCount, result.Dimension)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a local curriculum document")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Object key of a document in storage")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject tag for the ingested chunks")
	cmd.Flags().StringVar(&grade, "grade", "", "Grade tag for the ingested chunks")
	cmd.Flags().StringVar(&chapter, "chapter", "", "Chapter tag for the ingested chunks")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Override the configured chunk size")
	cmd.Flags().IntVar(&overlap, "overlap", 0, "Override the configured chunk overlap")
	cmd.Flags().BoolVar(&async, "async", false, "Queue the rebuild instead of waiting for it")

	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the state of the served index",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Get("/knowledge/stats")
			if err != nil {
				return err
			}

			var stats service.Stats
			if err := json.Unmarshal(resp.Data, &stats); err != nil {
				return fmt.Errorf("failed to parse stats: %w", err)
			}

			cmd.Printf("served chunks:    %d\n", stats.ChunkCount)
			cmd.Printf("dimension:        %d\n", stats.Dimension)
			cmd.Printf("persisted chunks: %d\n", stats.PersistedCount)
			if stats.BuiltAt != nil {
				cmd.Printf("built at:         %s\n", stats.BuiltAt.Format("2006-01-02T15:04:05Z"))
			}
			return nil
		},
	}
}

// HealthCmd creates the health command.
func HealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			if _, err := api.Get("/health"); err != nil {
				return err
			}
			cmd.Println("ok")
			return nil
		},
	}
}
