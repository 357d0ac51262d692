package seed

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCountsScale(t *testing.T) {
	counts := DefaultCounts().Scale(0.5)
	if counts.ProcessedReviews != 250 || counts.Complaints != 100 {
		t.Fatalf("unexpected scaled counts: %+v", counts)
	}

	tiny := Counts{ProcessedReviews: 1, FormattedReviews: 1, RawReviews: 1, Complaints: 1, AmazonReviews: 1}.Scale(0.01)
	if tiny.ProcessedReviews != 1 {
		t.Fatalf("scaling should keep at least one row, got %+v", tiny)
	}

	unchanged := DefaultCounts().Scale(0)
	if unchanged != DefaultCounts() {
		t.Fatalf("non-positive factor should keep defaults, got %+v", unchanged)
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	first := NewGenerator(42)
	second := NewGenerator(42)

	for i := 0; i < 20; i++ {
		a := first.NextProcessedReview()
		b := second.NextProcessedReview()
		if a != b {
			t.Fatalf("row %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestGeneratorScoresWithinRange(t *testing.T) {
	gen := NewGenerator(1)
	for i := 0; i < 200; i++ {
		row := gen.NextProcessedReview()
		if row.Score < 1 || row.Score > 5 {
			t.Fatalf("score out of range: %d", row.Score)
		}
		if row.ReviewTime.Year() < 2023 || row.ReviewTime.Year() > 2025 {
			t.Fatalf("review time out of range: %v", row.ReviewTime)
		}
		expectedSortable := row.ReviewTime.Year()*10000 + int(row.ReviewTime.Month())*100 + row.ReviewTime.Day()
		if row.SortableDate != expectedSortable {
			t.Fatalf("sortable date %d does not match %v", row.SortableDate, row.ReviewTime)
		}
	}
}

func TestGeneratorComplaintIntensityMatchesScore(t *testing.T) {
	gen := NewGenerator(7)
	for i := 0; i < 100; i++ {
		complaint := gen.NextComplaint()
		switch {
		case complaint.IntensityScore > 7 && complaint.IntensityLabel != "high":
			t.Fatalf("score %d labeled %q", complaint.IntensityScore, complaint.IntensityLabel)
		case complaint.IntensityScore > 4 && complaint.IntensityScore <= 7 && complaint.IntensityLabel != "medium":
			t.Fatalf("score %d labeled %q", complaint.IntensityScore, complaint.IntensityLabel)
		case complaint.IntensityScore <= 4 && complaint.IntensityLabel != "low":
			t.Fatalf("score %d labeled %q", complaint.IntensityScore, complaint.IntensityLabel)
		}
	}
}

func TestSeederInsertsRequestedCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	counts := Counts{
		ProcessedReviews: 2,
		FormattedReviews: 1,
		RawReviews:       1,
		Complaints:       1,
		AmazonReviews:    1,
	}

	for i := 0; i < counts.ProcessedReviews; i++ {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO processed_product_reviews3`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO raw_product_reviews`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "Formatted_Review_dataset"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO complaints`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO amazon_reviews`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seeder := NewSeeder(db, NewGenerator(99), logger)
	if err := seeder.Run(context.Background(), counts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
