package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Counts sets how many rows to insert per table.
type Counts struct {
	ProcessedReviews int
	FormattedReviews int
	RawReviews       int
	Complaints       int
	AmazonReviews    int
}

// Scale multiplies every count by factor, keeping at least one row per
// table so joins and dashboards have data to work with.
func (c Counts) Scale(factor float64) Counts {
	if factor <= 0 {
		factor = 1
	}
	scale := func(n int) int {
		scaled := int(float64(n) * factor)
		if scaled < 1 {
			scaled = 1
		}
		return scaled
	}
	return Counts{
		ProcessedReviews: scale(c.ProcessedReviews),
		FormattedReviews: scale(c.FormattedReviews),
		RawReviews:       scale(c.RawReviews),
		Complaints:       scale(c.Complaints),
		AmazonReviews:    scale(c.AmazonReviews),
	}
}

func DefaultCounts() Counts {
	return Counts{
		ProcessedReviews: 500,
		FormattedReviews: 400,
		RawReviews:       400,
		Complaints:       200,
		AmazonReviews:    300,
	}
}

// Seeder inserts generated rows through the standard connection pool.
type Seeder struct {
	db     *sql.DB
	gen    *Generator
	logger *slog.Logger
}

func NewSeeder(db *sql.DB, gen *Generator, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, gen: gen, logger: logger}
}

func (s *Seeder) Run(ctx context.Context, counts Counts) error {
	if err := s.seedProcessedReviews(ctx, counts.ProcessedReviews); err != nil {
		return err
	}
	if err := s.seedFormattedAndRawReviews(ctx, counts.FormattedReviews, counts.RawReviews); err != nil {
		return err
	}
	if err := s.seedComplaints(ctx, counts.Complaints); err != nil {
		return err
	}
	if err := s.seedAmazonReviews(ctx, counts.AmazonReviews); err != nil {
		return err
	}
	return nil
}

func (s *Seeder) seedProcessedReviews(ctx context.Context, count int) error {
	const insert = `INSERT INTO processed_product_reviews3 ("reviewerID", "ReviewTime", "Category", "Attribute", "Score", "Reason", "Sortable Date") VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := 0; i < count; i++ {
		row := s.gen.NextProcessedReview()
		if _, err := s.db.ExecContext(ctx, insert,
			row.ReviewerID, row.ReviewTime, row.Category, row.Attribute, row.Score, row.Reason, row.SortableDate); err != nil {
			return fmt.Errorf("insert processed review: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "seeded table", "table", "processed_product_reviews3", "rows", count)
	return nil
}

// seedFormattedAndRawReviews seeds both tables with shared review ids so
// the dashboard joins on Review_id find matches.
func (s *Seeder) seedFormattedAndRawReviews(ctx context.Context, formattedCount, rawCount int) error {
	const insertFormatted = `INSERT INTO "Formatted_Review_dataset" ("Review_id", "Attribute", "Score", "Reason") VALUES ($1, $2, $3, $4)`
	const insertRaw = `INSERT INTO raw_product_reviews ("Review_id", "Clothing ID", "Age", "Review_Text", "Division Name", "Department_Name", "Class Name", "Title", "Rating") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	count := formattedCount
	if rawCount > count {
		count = rawCount
	}
	for i := 0; i < count; i++ {
		raw := s.gen.NextRawReview()
		if i < rawCount {
			if _, err := s.db.ExecContext(ctx, insertRaw,
				raw.ReviewID, raw.ClothingID, raw.Age, raw.Text, raw.Division, raw.Department, raw.Class, raw.Title, raw.Rating); err != nil {
				return fmt.Errorf("insert raw review: %w", err)
			}
		}
		if i < formattedCount {
			formatted := s.gen.NextFormattedReview()
			formatted.ReviewID = raw.ReviewID
			if _, err := s.db.ExecContext(ctx, insertFormatted,
				formatted.ReviewID, formatted.Attribute, formatted.Score, formatted.Reason); err != nil {
				return fmt.Errorf("insert formatted review: %w", err)
			}
		}
	}
	s.logger.InfoContext(ctx, "seeded table", "table", "Formatted_Review_dataset", "rows", formattedCount)
	s.logger.InfoContext(ctx, "seeded table", "table", "raw_product_reviews", "rows", rawCount)
	return nil
}

func (s *Seeder) seedComplaints(ctx context.Context, count int) error {
	const insert = `INSERT INTO complaints (complaint_text, predicted_category, predicted_intensity_label, predicted_intensity_score, prediction_timestamp, customer_id, order_id, email_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i := 0; i < count; i++ {
		row := s.gen.NextComplaint()
		if _, err := s.db.ExecContext(ctx, insert,
			row.Text, row.Category, row.IntensityLabel, row.IntensityScore, row.Timestamp, row.CustomerID, row.OrderID, row.EmailID); err != nil {
			return fmt.Errorf("insert complaint: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "seeded table", "table", "complaints", "rows", count)
	return nil
}

func (s *Seeder) seedAmazonReviews(ctx context.Context, count int) error {
	const insert = `INSERT INTO amazon_reviews ("reviewerID", "asin", "reviewerName", "helpful", "reviewText", "overall", "summary", "unixReviewTime", "reviewTime") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i := 0; i < count; i++ {
		row := s.gen.NextAmazonReview()
		if _, err := s.db.ExecContext(ctx, insert,
			row.ReviewerID, row.ASIN, row.ReviewerName, row.Helpful, row.ReviewText, row.Overall, row.Summary, row.UnixReviewTime, row.ReviewTime); err != nil {
			return fmt.Errorf("insert amazon review: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "seeded table", "table", "amazon_reviews", "rows", count)
	return nil
}
