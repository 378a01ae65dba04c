package stages

import (
	"fmt"
	"strings"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

func intentPrompt(state *domain.WorkflowState) string {
	prompt := state.StudentPrompt
	if prompt == "" {
		prompt = "none provided"
	}
	return fmt.Sprintf(`You are a math tutor. Analyze a student's submission and classify their intent.

Submission text: %q
Student prompt: %q

Classify as "evaluate" when the submission contains the student's own work or
answer to be checked, or the prompt asks for checking or grading. Classify as
"solve" when only a problem statement is present or the student asks for a
solution. Also separate the problem statement from any student work.

Reply with only a JSON object:
{"intent": "evaluate" or "solve", "problem_statement": "...", "student_work": "... or empty string"}`,
		state.ProblemText, prompt)
}

func evaluatePrompt(state *domain.WorkflowState) string {
	return fmt.Sprintf(`You are a math teacher evaluating a student's solution.

PROBLEM: %s

STUDENT'S SOLUTION: %s

RELEVANT CURRICULUM CONTEXT:
%s

Score the solution from 0 to 10 (correct answer 40%%, method 30%%, working
shown 20%%, presentation 10%%). Reply with only a JSON object:
{"is_correct": bool, "score": int, "correct_answer": "...", "explanation": "...",
 "student_strengths": [...], "areas_for_improvement": [...], "method_used": "..."}`,
		state.ProblemText, state.StudentWork, contextBlock(state.RetrievedContext))
}

func solvePrompt(state *domain.WorkflowState) string {
	return fmt.Sprintf(`You are a math tutor. Solve this problem step by step for a young student.

PROBLEM: %s

RELEVANT CURRICULUM CONTEXT:
%s

Reply with only a JSON object:
{"final_answer": "...", "solution_steps": [{"step_number": 1, "description": "...",
 "calculation": "...", "result": "..."}], "explanation": "...",
 "key_concepts": [...], "tips": [...]}`,
		state.ProblemText, contextBlock(state.RetrievedContext))
}

func questionsPrompt(state *domain.WorkflowState) string {
	return fmt.Sprintf(`You are a math tutor. Generate 3 practice questions similar to this problem,
at the same difficulty level.

PROBLEM: %s

RELEVANT CURRICULUM CONTEXT:
%s

Reply with only a JSON object: {"similar_questions": ["...", "...", "..."]}`,
		state.ProblemText, contextBlock(state.RetrievedContext))
}

func contextBlock(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return "No curriculum context available."
	}
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n\n")
}
