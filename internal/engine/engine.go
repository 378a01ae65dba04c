// Package engine drives the tutoring workflow: a directed graph of stages
// executed over a request-local state, with per-stage retries, timeouts and
// an explicit transition table.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

// Handler processes one workflow stage. It receives a private copy of the
// state, reads whatever input fields it needs, writes only its own output
// fields, and returns the updated state or a StageError. This contract lets
// the engine retry a single stage without re-running the pipeline.
type Handler func(ctx context.Context, state *domain.WorkflowState) (*domain.WorkflowState, *domain.StageError)

const (
	DefaultMaxAttempts = 3
	DefaultTimeout     = 45 * time.Second
)

// Config carries per-stage retry and timeout budgets. Stages absent from the
// maps use the defaults.
type Config struct {
	MaxAttempts map[domain.Stage]int
	Timeouts    map[domain.Stage]time.Duration
}

// Engine holds the stage handlers and the routing rules. One Engine serves
// many concurrent requests; all per-request data lives in the WorkflowState.
type Engine struct {
	handlers map[domain.Stage]Handler
	cfg      Config
}

// requiredStages is the set of graph nodes that must have a handler.
var requiredStages = []domain.Stage{
	domain.StageDetectIntent,
	domain.StageRetrieveContext,
	domain.StageEvaluate,
	domain.StageSolve,
	domain.StageGenerateQuestions,
	domain.StageAssemble,
}

// New validates that every graph node has a handler and returns an Engine.
func New(handlers map[domain.Stage]Handler, cfg Config) (*Engine, error) {
	for _, stage := range requiredStages {
		if handlers[stage] == nil {
			return nil, domain.NewDomainError(domain.ErrCodeConfig,
				fmt.Sprintf("no handler registered for stage %s", stage))
		}
	}
	return &Engine{handlers: handlers, cfg: cfg}, nil
}

// Run executes the workflow to completion. A successful run returns the
// assembled FinalResult; a failed run returns a FailureReport carrying every
// StageError recorded along the way.
func (e *Engine) Run(ctx context.Context, state *domain.WorkflowState) (*domain.FinalResult, *domain.FailureReport) {
	stage := domain.StageDetectIntent

	for {
		if err := ctx.Err(); err != nil {
			state.RecordError(domain.StageError{
				Stage:   stage,
				Kind:    domain.ErrorKindCanceled,
				Message: "request canceled before stage started",
			})
			return nil, &domain.FailureReport{Errors: state.Errors}
		}

		state.AttemptCounts[stage]++
		next, stageErr := e.invoke(ctx, stage, state)

		if stageErr == nil && stage == domain.StageDetectIntent && next.Intent == domain.IntentUnknown {
			// An unresolved intent is handled like a retriable failure of the
			// intent stage: re-enter it until the budget runs out.
			stageErr = &domain.StageError{
				Stage:     stage,
				Kind:      domain.ErrorKindIntentUnresolved,
				Message:   "intent could not be determined from the submission",
				Retriable: true,
			}
		}

		if stageErr != nil {
			state.RecordError(*stageErr)
			attempts := state.AttemptCounts[stage]
			if stageErr.Retriable && attempts < e.maxAttempts(stage) {
				log.Printf("stage %s attempt %d failed (%s), retrying", stage, attempts, stageErr.Kind)
				continue
			}
			if stageErr.Retriable {
				// Budget exhausted: record the terminal escalation so the
				// report names an unambiguous cause.
				state.RecordError(domain.StageError{
					Stage:   stage,
					Kind:    stageErr.Kind,
					Message: fmt.Sprintf("giving up after %d attempts: %s", attempts, stageErr.Message),
				})
			}
			log.Printf("stage %s failed terminally (%s)", stage, stageErr.Kind)
			return nil, &domain.FailureReport{Errors: state.Errors}
		}

		state = next

		nextStage, done, routeErr := route(stage, state)
		if routeErr != nil {
			state.RecordError(*routeErr)
			return nil, &domain.FailureReport{Errors: state.Errors}
		}
		if done {
			return state.Final, nil
		}
		stage = nextStage
	}
}

// invoke runs the stage handler against a clone of the state, bounded by the
// stage timeout. The handler runs in its own goroutine so a handler that
// ignores its context cannot stall the engine past the deadline.
func (e *Engine) invoke(ctx context.Context, stage domain.Stage, state *domain.WorkflowState) (*domain.WorkflowState, *domain.StageError) {
	handler := e.handlers[stage]

	stageCtx := ctx
	cancel := func() {}
	if d := e.timeout(stage); d > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, d)
	}
	defer cancel()

	type result struct {
		state *domain.WorkflowState
		err   *domain.StageError
	}
	done := make(chan result, 1)
	go func() {
		next, err := handler(stageCtx, state.Clone())
		done <- result{next, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		// Preserve the engine-owned bookkeeping fields.
		r.state.Errors = state.Errors
		r.state.AttemptCounts = state.AttemptCounts
		return r.state, nil
	case <-stageCtx.Done():
		if ctx.Err() != nil {
			return nil, &domain.StageError{
				Stage:   stage,
				Kind:    domain.ErrorKindCanceled,
				Message: "request canceled during stage",
			}
		}
		return nil, &domain.StageError{
			Stage:     stage,
			Kind:      domain.ErrorKindTimeout,
			Message:   fmt.Sprintf("stage exceeded its %s budget", e.timeout(stage)),
			Retriable: true,
		}
	}
}

// route implements the transition table. It returns the next stage, or
// done=true once the terminal assembly stage has produced the final result.
func route(stage domain.Stage, state *domain.WorkflowState) (domain.Stage, bool, *domain.StageError) {
	switch stage {
	case domain.StageDetectIntent:
		// Context is useful for both branches, so always retrieve.
		return domain.StageRetrieveContext, false, nil

	case domain.StageRetrieveContext:
		switch state.Intent {
		case domain.IntentEvaluate:
			return domain.StageEvaluate, false, nil
		case domain.IntentSolve:
			return domain.StageSolve, false, nil
		default:
			return "", false, &domain.StageError{
				Stage:   stage,
				Kind:    domain.ErrorKindIntentUnresolved,
				Message: "cannot route with unresolved intent",
			}
		}

	case domain.StageEvaluate, domain.StageSolve:
		return domain.StageGenerateQuestions, false, nil

	case domain.StageGenerateQuestions:
		return domain.StageAssemble, false, nil

	case domain.StageAssemble:
		if state.Final == nil {
			// Assembly must never fail; a missing result is a programming
			// contract violation, not a runtime condition.
			return "", false, &domain.StageError{
				Stage:   stage,
				Kind:    domain.ErrorKindAssembly,
				Message: "assemble stage produced no final result",
			}
		}
		return "", true, nil

	default:
		return "", false, &domain.StageError{
			Stage:   stage,
			Kind:    domain.ErrorKindInternal,
			Message: fmt.Sprintf("unknown stage %s", stage),
		}
	}
}

func (e *Engine) maxAttempts(stage domain.Stage) int {
	if n, ok := e.cfg.MaxAttempts[stage]; ok && n > 0 {
		return n
	}
	return DefaultMaxAttempts
}

func (e *Engine) timeout(stage domain.Stage) time.Duration {
	if d, ok := e.cfg.Timeouts[stage]; ok && d > 0 {
		return d
	}
	return DefaultTimeout
}
