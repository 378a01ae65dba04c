package client

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

type askRequest struct {
	ProblemText string               `json:"problem_text,omitempty"`
	ImageURL    string               `json:"image_url,omitempty"`
	StudentWork string               `json:"student_work,omitempty"`
	Prompt      string               `json:"prompt,omitempty"`
	Filter      domain.ChunkMetadata `json:"filter,omitempty"`
}

type failureBody struct {
	Error  string              `json:"error"`
	Stages []domain.StageError `json:"stages"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		work    string
		image   string
		prompt  string
		subject string
		grade   string
		chapter string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "ask [problem text]",
		Short: "Ask the tutor about a math problem",
		Long: `Submit a math problem, optionally with the student's own work attached.
With student work present the tutor grades it; without, it solves the problem
step by step. Either problem text or --image must be given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := askRequest{
				ProblemText: strings.Join(args, " "),
				StudentWork: work,
				Prompt:      prompt,
				Filter:      domain.ChunkMetadata{Subject: subject, Grade: grade, Chapter: chapter},
			}

			if image != "" {
				dataURL, err := imageToDataURL(image)
				if err != nil {
					return err
				}
				req.ImageURL = dataURL
			}

			if req.ProblemText == "" && req.ImageURL == "" {
				return fmt.Errorf("provide problem text or --image")
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Post("/tutor/ask", req)
			if err != nil {
				var apiErr *APIError
				if errors.As(err, &apiErr) && len(apiErr.Body) > 0 {
					return renderFailure(cmd, apiErr.Body)
				}
				return err
			}

			if asJSON {
				cmd.Println(string(resp.Data))
				return nil
			}

			var final domain.FinalResult
			if err := json.Unmarshal(resp.Data, &final); err != nil {
				return fmt.Errorf("failed to parse result: %w", err)
			}
			renderFinal(cmd, &final)
			return nil
		},
	}

	cmd.Flags().StringVarP(&work, "work", "w", "", "The student's own solution to grade")
	cmd.Flags().StringVar(&image, "image", "", "Path to an image of the problem")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Free-form instruction for the tutor")
	cmd.Flags().StringVar(&subject, "subject", "", "Restrict curriculum context by subject")
	cmd.Flags().StringVar(&grade, "grade", "", "Restrict curriculum context by grade")
	cmd.Flags().StringVar(&chapter, "chapter", "", "Restrict curriculum context by chapter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON result")

	return cmd
}

func renderFinal(cmd *cobra.Command, final *domain.FinalResult) {
	switch final.Intent {
	case domain.IntentEvaluate:
		if final.Score != nil {
			cmd.Printf("Score: %d/10\n", *final.Score)
		}
		if final.IsCorrect != nil {
			if *final.IsCorrect {
				cmd.Println("Verdict: correct")
			} else {
				cmd.Println("Verdict: incorrect")
			}
		}
	case domain.IntentSolve:
		cmd.Printf("Answer: %s\n", final.CorrectAnswer)
	}

	if final.Explanation != "" {
		cmd.Printf("\n%s\n", final.Explanation)
	}
	if len(final.SimilarQuestions) > 0 {
		cmd.Println("\nPractice questions:")
		for i, q := range final.SimilarQuestions {
			cmd.Printf("  %d. %s\n", i+1, q)
		}
	}
}

func renderFailure(cmd *cobra.Command, body []byte) error {
	var failure failureBody
	if err := json.Unmarshal(body, &failure); err != nil || len(failure.Stages) == 0 {
		return fmt.Errorf("request failed: %s", string(body))
	}

	cmd.PrintErrln("The tutor could not answer this submission:")
	for _, stageErr := range failure.Stages {
		cmd.PrintErrf("  [%s] %s: %s\n", stageErr.Stage, stageErr.Kind, stageErr.Message)
	}
	return fmt.Errorf("workflow failed: %s", failure.Error)
}

func imageToDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	mime := "image/png"
	switch {
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		mime = "image/jpeg"
	case strings.HasSuffix(path, ".webp"):
		mime = "image/webp"
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
