package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightpath-ai/tutorflow/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tutorctl",
		Short: "Tutorflow CLI - a math tutor for students",
		Long: `Tutorflow CLI submits math problems to a tutorflow server.

Environment variables:
  TUTORFLOW_API_KEY   API key for authentication
  TUTORFLOW_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.KnowledgeCmd())
	rootCmd.AddCommand(client.HealthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
