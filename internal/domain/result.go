package domain

// EvaluationResult is the outcome of grading a student's submitted work.
type EvaluationResult struct {
	Score               int      `json:"score"`
	IsCorrect           bool     `json:"is_correct"`
	CorrectAnswer       string   `json:"correct_answer"`
	Explanation         string   `json:"explanation"`
	StudentStrengths    []string `json:"student_strengths,omitempty"`
	AreasForImprovement []string `json:"areas_for_improvement,omitempty"`
	MethodUsed          string   `json:"method_used,omitempty"`
}

// SolutionStep is one numbered step of a worked solution.
type SolutionStep struct {
	StepNumber  int    `json:"step_number"`
	Description string `json:"description"`
	Calculation string `json:"calculation,omitempty"`
	Result      string `json:"result,omitempty"`
}

// SolutionResult is a full step-by-step solution to the problem.
type SolutionResult struct {
	FinalAnswer string         `json:"final_answer"`
	Steps       []SolutionStep `json:"solution_steps"`
	Explanation string         `json:"explanation"`
	KeyConcepts []string       `json:"key_concepts,omitempty"`
	Tips        []string       `json:"tips,omitempty"`
}

// FinalResult is the externally visible shape of a successful run. Score and
// IsCorrect are only set for the evaluate branch.
type FinalResult struct {
	Intent           Intent   `json:"intent"`
	Score            *int     `json:"score"`
	IsCorrect        *bool    `json:"is_correct"`
	CorrectAnswer    string   `json:"correct_answer"`
	Explanation      string   `json:"explanation"`
	SimilarQuestions []string `json:"similar_questions"`
}

// FailureReport is the externally visible shape of a failed run. It always
// carries at least one StageError explaining the terminal cause.
type FailureReport struct {
	Errors []StageError `json:"errors"`
}

// TerminalCause returns the last recorded error, which is the one that ended
// the run.
func (r *FailureReport) TerminalCause() *StageError {
	if len(r.Errors) == 0 {
		return nil
	}
	return &r.Errors[len(r.Errors)-1]
}
