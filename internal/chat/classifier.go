package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewdesk/reviewdesk/internal/llm"
	"github.com/reviewdesk/reviewdesk/internal/observability"
)

type Intent string

const (
	IntentDataQuery       Intent = "data_query"
	IntentGeneralQuestion Intent = "general_question"
)

// ClassifyIntent asks the model whether the question targets the data sets
// or is off-topic. Ambiguous answers classify optimistically as a data
// query; only a failed model call is an error, and it is terminal for the
// request.
func ClassifyIntent(ctx context.Context, client llm.Client, prompt string) (Intent, error) {
	classifierPrompt := fmt.Sprintf(
		"Classify the user's question as 'data_query' or 'general_question'. User Question: %q. Respond with only the category name.",
		prompt,
	)

	answer, err := client.Complete(ctx, classifierPrompt)
	observability.ObserveLLMCall("intent_classification", err)
	if err != nil {
		return "", fmt.Errorf("classify intent: %w", err)
	}

	if strings.Contains(strings.ToLower(answer), "general") {
		return IntentGeneralQuestion, nil
	}
	return IntentDataQuery, nil
}
