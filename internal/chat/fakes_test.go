package chat

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/reviewdesk/reviewdesk/internal/store"
)

// fakeLLM answers each pipeline prompt by sniffing the prompt text, so a
// single fake can script a whole request.
type fakeLLM struct {
	intentAnswer  string
	tableAnswer   string
	sqlAnswer     string
	insightAnswer string

	intentErr  error
	tableErr   error
	sqlErr     error
	insightErr error

	prompts []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	switch {
	case strings.Contains(prompt, "Classify the user's question"):
		return f.intentAnswer, f.intentErr
	case strings.Contains(prompt, "Which table should be used"):
		return f.tableAnswer, f.tableErr
	case strings.Contains(prompt, "Postgres Expert"):
		return f.sqlAnswer, f.sqlErr
	default:
		return f.insightAnswer, f.insightErr
	}
}

func (f *fakeLLM) Close() error { return nil }

type fakeExecutor struct {
	queries []string
	result  store.Result
	err     error
}

func (f *fakeExecutor) Query(_ context.Context, sqlText string) (store.Result, error) {
	f.queries = append(f.queries, sqlText)
	if f.err != nil {
		return store.Result{}, f.err
	}
	return f.result, nil
}

func (f *fakeExecutor) HealthCheck(context.Context) error { return nil }

func (f *fakeExecutor) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
