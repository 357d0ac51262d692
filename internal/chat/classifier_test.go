package chat

import (
	"context"
	"errors"
	"testing"
)

func TestClassifyIntentDataQuery(t *testing.T) {
	client := &fakeLLM{intentAnswer: "data_query"}
	intent, err := ClassifyIntent(context.Background(), client, "show complaints by category")
	if err != nil {
		t.Fatalf("ClassifyIntent returned error: %v", err)
	}
	if intent != IntentDataQuery {
		t.Fatalf("expected data_query, got %s", intent)
	}
}

func TestClassifyIntentGeneralQuestion(t *testing.T) {
	answers := []string{"general_question", "General Question", "This is a general_question."}
	for _, answer := range answers {
		client := &fakeLLM{intentAnswer: answer}
		intent, err := ClassifyIntent(context.Background(), client, "What is your name?")
		if err != nil {
			t.Fatalf("ClassifyIntent(%q) returned error: %v", answer, err)
		}
		if intent != IntentGeneralQuestion {
			t.Fatalf("answer %q: expected general_question, got %s", answer, intent)
		}
	}
}

func TestClassifyIntentAmbiguousDefaultsToDataQuery(t *testing.T) {
	client := &fakeLLM{intentAnswer: "something unexpected"}
	intent, err := ClassifyIntent(context.Background(), client, "reviews about colour")
	if err != nil {
		t.Fatalf("ClassifyIntent returned error: %v", err)
	}
	if intent != IntentDataQuery {
		t.Fatalf("ambiguous answer should classify as data_query, got %s", intent)
	}
}

func TestClassifyIntentModelFailure(t *testing.T) {
	modelErr := errors.New("timeout")
	client := &fakeLLM{intentErr: modelErr}
	if _, err := ClassifyIntent(context.Background(), client, "anything"); !errors.Is(err, modelErr) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
}
