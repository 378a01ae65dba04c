package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/engine"
	"github.com/brightpath-ai/tutorflow/internal/index"
	"github.com/brightpath-ai/tutorflow/internal/stages"
	"github.com/brightpath-ai/tutorflow/internal/telemetry"
)

// Extractor transcribes the text content of a submitted problem image.
type Extractor interface {
	ExtractText(ctx context.Context, imageURL string) (string, error)
}

// extractAttempts bounds retries of image text extraction, which runs before
// the workflow engine takes over.
const extractAttempts = 3

// AskRequest is one student submission. Either ProblemText or ImageURL must be
// set; StudentWork is optional and, when present, steers the workflow toward
// evaluation.
type AskRequest struct {
	ProblemText string               `json:"problem_text"`
	ImageURL    string               `json:"image_url"`
	StudentWork string               `json:"student_work"`
	Prompt      string               `json:"prompt"`
	Filter      domain.ChunkMetadata `json:"filter"`
}

// TutorService runs the tutoring workflow for student submissions.
type TutorService struct {
	gen       stages.Generator
	store     *index.Store
	embedder  index.Embedder
	extractor Extractor
	engineCfg engine.Config
	retrieval stages.RetrievalConfig
}

func NewTutorService(
	gen stages.Generator,
	store *index.Store,
	embedder index.Embedder,
	extractor Extractor,
	engineCfg engine.Config,
	retrieval stages.RetrievalConfig,
) *TutorService {
	return &TutorService{
		gen:       gen,
		store:     store,
		embedder:  embedder,
		extractor: extractor,
		engineCfg: engineCfg,
		retrieval: retrieval,
	}
}

// Ask answers one submission. A nil error with a nil report means success; a
// FailureReport carries the full stage error history of a failed run. A non-nil
// error is reserved for invalid requests and wiring faults.
func (s *TutorService) Ask(ctx context.Context, req AskRequest) (*domain.FinalResult, *domain.FailureReport, error) {
	problemText := strings.TrimSpace(req.ProblemText)
	if problemText == "" && req.ImageURL == "" {
		return nil, nil, domain.ErrEmptyProblem
	}

	state := domain.NewWorkflowState(problemText, req.StudentWork, req.Prompt)

	if req.ImageURL != "" {
		extracted, report := s.extract(ctx, state, req.ImageURL)
		if report != nil {
			return nil, report, nil
		}
		if state.ProblemText == "" {
			state.ProblemText = extracted
		} else {
			state.ProblemText = state.ProblemText + "\n" + extracted
		}
	}

	retrieval := s.retrieval
	if req.Filter != (domain.ChunkMetadata{}) {
		retrieval.Filter = req.Filter
	}

	eng, err := engine.New(stages.All(s.gen, s.store, s.embedder, retrieval), s.engineCfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "tutor.ask", telemetry.SpanAttributes{Operation: "workflow"})
	defer span.End()

	final, report := eng.Run(ctx, state)
	if report != nil {
		if cause := report.TerminalCause(); cause != nil {
			span.SetError(cause)
		}
	}
	return final, report, nil
}

// extract transcribes the image, retrying transient provider failures. Every
// failed attempt lands in the state's error history so a terminal failure
// reports the complete picture.
func (s *TutorService) extract(ctx context.Context, state *domain.WorkflowState, imageURL string) (string, *domain.FailureReport) {
	if s.extractor == nil {
		state.RecordError(domain.StageError{
			Stage:   domain.StageExtractText,
			Kind:    domain.ErrorKindExtraction,
			Message: "image submitted but no extractor is configured",
		})
		return "", &domain.FailureReport{Errors: state.Errors}
	}

	for attempt := 1; attempt <= extractAttempts; attempt++ {
		state.AttemptCounts[domain.StageExtractText]++
		text, err := s.extractor.ExtractText(ctx, imageURL)
		if err == nil {
			return text, nil
		}
		state.RecordError(domain.StageError{
			Stage:     domain.StageExtractText,
			Kind:      domain.ErrorKindExtraction,
			Message:   err.Error(),
			Retriable: true,
		})
		if ctx.Err() != nil {
			break
		}
	}

	state.RecordError(domain.StageError{
		Stage:   domain.StageExtractText,
		Kind:    domain.ErrorKindExtraction,
		Message: fmt.Sprintf("giving up after %d attempts", state.AttemptCounts[domain.StageExtractText]),
	})
	return "", &domain.FailureReport{Errors: state.Errors}
}
