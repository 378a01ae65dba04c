package domain

// Intent is the classified purpose of a student submission.
type Intent string

const (
	IntentEvaluate Intent = "evaluate"
	IntentSolve    Intent = "solve"
	IntentUnknown  Intent = "unknown"
)

// Stage identifies a node in the workflow graph.
type Stage string

const (
	StageExtractText       Stage = "extract_text"
	StageDetectIntent      Stage = "detect_intent"
	StageRetrieveContext   Stage = "retrieve_context"
	StageEvaluate          Stage = "evaluate"
	StageSolve             Stage = "solve"
	StageGenerateQuestions Stage = "generate_questions"
	StageAssemble          Stage = "assemble"
)

// ErrorKind classifies a stage failure.
type ErrorKind string

const (
	ErrorKindExtraction       ErrorKind = "extraction_error"
	ErrorKindGeneration       ErrorKind = "generation_error"
	ErrorKindTimeout          ErrorKind = "timeout"
	ErrorKindIntentUnresolved ErrorKind = "intent_unresolved"
	ErrorKindCanceled         ErrorKind = "canceled"
	ErrorKindAssembly         ErrorKind = "assembly_error"
	ErrorKindInternal         ErrorKind = "internal_error"
)

// StageError records one failed stage attempt. Entries are appended to the
// workflow state and never removed, so a terminal failure carries the full
// attempt history.
type StageError struct {
	Stage     Stage     `json:"stage"`
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retriable bool      `json:"retriable"`
}

func (e *StageError) Error() string {
	return string(e.Stage) + ": " + string(e.Kind) + ": " + e.Message
}

// WorkflowState is the single mutable object threaded through the workflow
// graph. The engine owns it for the lifetime of one request; handlers receive
// a copy and return an updated copy, writing only their own output fields.
type WorkflowState struct {
	ProblemText   string
	StudentWork   string
	StudentPrompt string

	Intent           Intent
	RetrievedContext []Chunk

	Evaluation       *EvaluationResult
	Solution         *SolutionResult
	SimilarQuestions []string

	Final *FinalResult

	Errors        []StageError
	AttemptCounts map[Stage]int
}

// NewWorkflowState creates the initial state for one request.
func NewWorkflowState(problemText, studentWork, studentPrompt string) *WorkflowState {
	return &WorkflowState{
		ProblemText:   problemText,
		StudentWork:   studentWork,
		StudentPrompt: studentPrompt,
		Intent:        IntentUnknown,
		AttemptCounts: make(map[Stage]int),
	}
}

// Clone returns a shallow-plus copy safe to hand to a stage handler: slices
// and the attempt map are duplicated so a failed handler cannot corrupt the
// engine's view of the state.
func (s *WorkflowState) Clone() *WorkflowState {
	out := *s
	out.RetrievedContext = append([]Chunk(nil), s.RetrievedContext...)
	out.SimilarQuestions = append([]string(nil), s.SimilarQuestions...)
	out.Errors = append([]StageError(nil), s.Errors...)
	out.AttemptCounts = make(map[Stage]int, len(s.AttemptCounts))
	for k, v := range s.AttemptCounts {
		out.AttemptCounts[k] = v
	}
	return &out
}

// RecordError appends a stage error to the history.
func (s *WorkflowState) RecordError(err StageError) {
	s.Errors = append(s.Errors, err)
}
