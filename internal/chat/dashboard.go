package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reviewdesk/reviewdesk/internal/llm"
	"github.com/reviewdesk/reviewdesk/internal/render"
	"github.com/reviewdesk/reviewdesk/internal/store"
)

// Dashboard persona prompts. Each page has a fixed analyst framing; the
// data blocks are filled from the canned queries below.
const (
	socialPage1Prompt    = "System: Senior Product Manager. Analyze Social Data (Raw Reviews + Formatted Data): Total: %d, Pie: %s, Bar: %s, Age: %s, Scatter: %s, Matrix: %s. Task: 3 Key Insights."
	socialPage2Prompt    = "System: Customer Experience Manager. Analyze: Reviews: %d, Text: %s, Perf: %s. Task: Key Insights linking feedback to performance."
	trendMonthlyPrompt   = "System: Market Trend Analyst. Analyze the monthly sentiment trends data provided. Task: Identify seasonal trends, anomalies, and patterns. Provide 2-3 key insights with actionable recommendations."
	trendQuarterlyPrompt = "System: Strategic Analyst. Analyze the quarterly performance data provided. Task: Identify trajectory changes, attribute performance gaps, and strategic opportunities. Provide 2-3 key insights."
	complaintPrompt      = "System: Senior CX Manager. Analyze Complaints Data: %s, %s. Task: Identify Critical Clusters."
)

var socialQueries = struct {
	pie, bar, age, scatter, matrix, text, perf string
}{
	pie: `SELECT "Attribute", COUNT(*) as count FROM "Formatted_Review_dataset" WHERE "Attribute" IS NOT NULL GROUP BY 1 ORDER BY 2 DESC`,
	bar: `SELECT "Score", "Attribute", COUNT(*) as count FROM "Formatted_Review_dataset" WHERE "Attribute" IS NOT NULL AND "Score" IS NOT NULL GROUP BY 1, 2 ORDER BY 1 DESC, 3 DESC`,
	age: `SELECT CASE WHEN "Age" BETWEEN 18 AND 25 THEN '18-25' WHEN "Age" BETWEEN 26 AND 35 THEN '26-35' WHEN "Age" BETWEEN 36 AND 50 THEN '36-50' ELSE '51+' END AS age_group, f."Attribute", AVG(f."Score") AS score FROM "Formatted_Review_dataset" f LEFT JOIN raw_product_reviews r ON f."Review_id" = r."Review_id" WHERE f."Attribute" IS NOT NULL AND f."Score" IS NOT NULL GROUP BY 1, 2`,
	scatter: `SELECT COALESCE(r."Department_Name", 'Unknown') AS department, COUNT(f."Review_id") AS num_reviews, AVG(f."Score") AS avg_score FROM "Formatted_Review_dataset" f LEFT JOIN raw_product_reviews r ON f."Review_id" = r."Review_id" WHERE f."Score" IS NOT NULL GROUP BY 1`,
	matrix: `SELECT COALESCE(r."Department_Name", 'Unknown') as "Department", f."Attribute", AVG(f."Score") as "Sentiment_Score", COUNT(f."Review_id") as "Volume" FROM "Formatted_Review_dataset" f LEFT JOIN raw_product_reviews r ON f."Review_id" = r."Review_id" WHERE f."Score" IS NOT NULL GROUP BY 1, 2 HAVING COUNT(f."Review_id") > 3 ORDER BY "Department", "Sentiment_Score" ASC`,
	text: `SELECT f."Attribute", COALESCE(r."Review_Text", 'No text') AS "Review_Text", f."Score" FROM "Formatted_Review_dataset" f LEFT JOIN raw_product_reviews r ON f."Review_id" = r."Review_id" WHERE f."Score" IS NOT NULL ORDER BY f."Score" DESC LIMIT 10`,
	perf: `SELECT COALESCE(r."Department_Name", 'Unknown') AS "Department", COUNT(f."Review_id") AS num_reviews, ROUND(AVG(f."Score"), 2) AS "Average_Score" FROM "Formatted_Review_dataset" f LEFT JOIN raw_product_reviews r ON f."Review_id" = r."Review_id" WHERE f."Score" IS NOT NULL GROUP BY 1 ORDER BY 2 DESC`,
}

var trendQueries = struct {
	monthly, quarterly string
}{
	monthly:   `SELECT TO_CHAR("ReviewTime", 'YYYY-MM') AS date, "Attribute", AVG("Score") AS score FROM processed_product_reviews3 WHERE "ReviewTime" IS NOT NULL GROUP BY 1, 2 ORDER BY 1, 2`,
	quarterly: `SELECT CAST(EXTRACT(YEAR FROM "ReviewTime") AS VARCHAR) || '/Q' || CAST(EXTRACT(QUARTER FROM "ReviewTime") AS VARCHAR) AS "Quarter", AVG(CASE WHEN LOWER("Attribute") LIKE '%comfort%' THEN "Score" ELSE NULL END) AS "Comfort", AVG(CASE WHEN LOWER("Attribute") LIKE '%design%' THEN "Score" ELSE NULL END) AS "Design", AVG(CASE WHEN LOWER("Attribute") LIKE '%durability%' THEN "Score" ELSE NULL END) AS "Durability", AVG(CASE WHEN LOWER("Attribute") LIKE '%price%' THEN "Score" ELSE NULL END) AS "Price" FROM processed_product_reviews3 WHERE "ReviewTime" IS NOT NULL GROUP BY 1 ORDER BY 1`,
}

var complaintQueries = struct {
	top, matrix string
}{
	top:    `SELECT predicted_category as "Category", complaint_text as "Issue", predicted_intensity_label as "Severity" FROM complaints ORDER BY prediction_timestamp DESC LIMIT 5`,
	matrix: `SELECT predicted_category, predicted_intensity_label, COUNT(*) as count FROM complaints GROUP BY 1, 2 ORDER BY 1, 2`,
}

// Dashboards serves the non-conversational dashboard summaries. Data
// comes from fixed statements per surface; only the narratives are
// model-generated.
type Dashboards struct {
	executor store.Executor
	insights *InsightGenerator
	logger   *slog.Logger
}

func NewDashboards(executor store.Executor, client llm.Client, logger *slog.Logger) *Dashboards {
	return &Dashboards{executor: executor, insights: NewInsightGenerator(client), logger: logger}
}

// SocialInsights summarizes the review attribute mix across both social
// dashboard pages.
func (d *Dashboards) SocialInsights(ctx context.Context) (string, error) {
	pie, err := d.executor.Query(ctx, socialQueries.pie)
	if err != nil {
		return "", fmt.Errorf("social pie query: %w", err)
	}
	bar, err := d.executor.Query(ctx, socialQueries.bar)
	if err != nil {
		return "", fmt.Errorf("social bar query: %w", err)
	}
	age, err := d.executor.Query(ctx, socialQueries.age)
	if err != nil {
		return "", fmt.Errorf("social age query: %w", err)
	}
	scatter, err := d.executor.Query(ctx, socialQueries.scatter)
	if err != nil {
		return "", fmt.Errorf("social scatter query: %w", err)
	}
	matrix, err := d.executor.Query(ctx, socialQueries.matrix)
	if err != nil {
		return "", fmt.Errorf("social matrix query: %w", err)
	}
	text, err := d.executor.Query(ctx, socialQueries.text)
	if err != nil {
		return "", fmt.Errorf("social text query: %w", err)
	}
	perf, err := d.executor.Query(ctx, socialQueries.perf)
	if err != nil {
		return "", fmt.Errorf("social perf query: %w", err)
	}

	total := sumCountColumn(pie)

	page1, err := d.insights.Summarize(ctx, fmt.Sprintf(socialPage1Prompt,
		total, resultJSON(pie), resultJSON(bar), resultJSON(age), resultJSON(scatter), resultJSON(matrix)))
	if err != nil {
		return "", err
	}
	page2, err := d.insights.Summarize(ctx, fmt.Sprintf(socialPage2Prompt,
		total, resultJSON(text), resultJSON(perf)))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("**Page 1:**\n%s\n\n---\n\n**Page 2:**\n%s", page1, page2), nil
}

// TrendInsights summarizes monthly and quarterly sentiment movement.
func (d *Dashboards) TrendInsights(ctx context.Context) (string, error) {
	monthly, err := d.executor.Query(ctx, trendQueries.monthly)
	if err != nil {
		return "", fmt.Errorf("trend monthly query: %w", err)
	}
	quarterly, err := d.executor.Query(ctx, trendQueries.quarterly)
	if err != nil {
		return "", fmt.Errorf("trend quarterly query: %w", err)
	}

	monthlySummary, err := d.insights.Summarize(ctx, fmt.Sprintf(
		"%s\n\nMonthly Sentiment Trends Data:\n%s\n\nProvide analysis starting with key insights.",
		trendMonthlyPrompt, resultText(monthly)))
	if err != nil {
		return "", err
	}
	quarterlySummary, err := d.insights.Summarize(ctx, fmt.Sprintf(
		"%s\n\nQuarterly Performance Data:\n%s\n\nProvide analysis starting with key insights.",
		trendQuarterlyPrompt, resultText(quarterly)))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("**Monthly:**\n%s\n\n---\n\n**Quarterly:**\n%s", monthlySummary, quarterlySummary), nil
}

// ComplaintInsights summarizes the most recent complaint clusters.
func (d *Dashboards) ComplaintInsights(ctx context.Context) (string, error) {
	top, err := d.executor.Query(ctx, complaintQueries.top)
	if err != nil {
		return "", fmt.Errorf("complaint top query: %w", err)
	}
	matrix, err := d.executor.Query(ctx, complaintQueries.matrix)
	if err != nil {
		return "", fmt.Errorf("complaint matrix query: %w", err)
	}

	return d.insights.Summarize(ctx, fmt.Sprintf(complaintPrompt, resultJSON(top), resultJSON(matrix)))
}

// resultJSON encodes rows as a JSON array of column-keyed objects for
// prompt embedding.
func resultJSON(result store.Result) string {
	if result.Empty() {
		return "[]"
	}
	records := make([]map[string]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		record := make(map[string]any, len(result.Columns))
		for i, column := range result.Columns {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

func resultText(result store.Result) string {
	if result.Empty() {
		return "No data available"
	}
	return render.ResultsText(result, 0)
}

// sumCountColumn adds up an integer "count" column, tolerating the
// numeric types different drivers scan into.
func sumCountColumn(result store.Result) int {
	countIndex := -1
	for i, column := range result.Columns {
		if strings.EqualFold(column, "count") {
			countIndex = i
			break
		}
	}
	if countIndex < 0 {
		return 0
	}
	total := 0
	for _, row := range result.Rows {
		switch value := row[countIndex].(type) {
		case int64:
			total += int(value)
		case int:
			total += value
		case float64:
			total += int(value)
		}
	}
	return total
}
