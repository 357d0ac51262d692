// Package chat implements the question-to-insight pipeline: intent
// classification, table routing, SQL generation, execution, and insight
// synthesis.
package chat

import (
	"errors"
	"strings"
)

// ErrGenerationFailed marks a model response that did not yield a valid
// read-only statement for the resolved table.
var ErrGenerationFailed = errors.New("query generation failed")

// executionError tags failures from the executor so the pipeline can keep
// them apart from model-stage errors when picking the user-facing message.
type executionError struct {
	err error
}

func (e *executionError) Error() string {
	return "execute query: " + e.err.Error()
}

func (e *executionError) Unwrap() error {
	return e.err
}

const (
	modelUnavailableMessage = "The analysis service is temporarily unavailable. Please try again in a moment."

	generalQuestionReply = "I'm sorry, I can only answer questions related to our product reviews and complaint data. Please ask a question about that topic."
)

// generationFailureMessage builds the rephrasing hints shown when no valid
// statement could be produced. Hints are keyed off the wording of the
// original question.
func generationFailureMessage(prompt string) string {
	lowered := strings.ToLower(prompt)

	var b strings.Builder
	b.WriteString("I was unable to generate a valid query. Try rephrasing by:\n")
	if strings.Contains(lowered, "month") || strings.Contains(lowered, "year") {
		b.WriteString("- Using simpler date references (e.g., 'by date' or 'over time')\n")
	}
	if strings.Contains(lowered, "aggregate") || strings.Contains(lowered, "sum") {
		b.WriteString("- Breaking down the aggregation request into simpler parts\n")
	}
	b.WriteString("- Specifying exactly which columns you want to group or filter by")
	return b.String()
}
