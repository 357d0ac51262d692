package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewdesk_chat_requests_total",
			Help: "Total number of chat pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)
	chatStageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reviewdesk_chat_stage_duration_seconds",
			Help:    "Latency of individual chat pipeline stages.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"stage"},
	)
	llmCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewdesk_llm_calls_total",
			Help: "Total delegated model calls by operation and status.",
		},
		[]string{"operation", "status"},
	)
	sqlGenerationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewdesk_sql_generation_failures_total",
			Help: "Total queries rejected by the generator or post-validation.",
		},
	)
	tableFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewdesk_table_fallbacks_total",
			Help: "Total requests routed to the default table after validation failed.",
		},
	)
	exportRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewdesk_export_rows_total",
			Help: "Total result rows written to the export object store.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		chatRequestsTotal,
		chatStageDurationSeconds,
		llmCallsTotal,
		sqlGenerationFailuresTotal,
		tableFallbacksTotal,
		exportRowsTotal,
	)
}

func ObserveChatRequest(outcome string) {
	chatRequestsTotal.WithLabelValues(outcome).Inc()
}

func ObserveChatStage(stage string, elapsed time.Duration) {
	chatStageDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func ObserveLLMCall(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmCallsTotal.WithLabelValues(operation, status).Inc()
}

func IncrementSQLGenerationFailure() {
	sqlGenerationFailuresTotal.Inc()
}

func IncrementTableFallback() {
	tableFallbacksTotal.Inc()
}

func AddExportedRows(rows int) {
	if rows > 0 {
		exportRowsTotal.Add(float64(rows))
	}
}
