// Package seed generates deterministic synthetic review and complaint
// rows for local development and demos.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var (
	categories = []string{"Dresses", "Tops", "Shoes", "Bags", "Accessories"}
	attributes = []string{"comfort", "design", "durability", "price", "quality", "colour"}
	divisions  = []string{"General", "Petite", "Intimates"}
	departments = []string{"Dresses", "Tops", "Bottoms", "Jackets", "Trend"}

	reviewPhrases = []string{
		"the %s exceeded my expectations",
		"disappointed with the %s after one wash",
		"great %s for the price point",
		"the %s feels cheap compared to last season",
		"love the %s, ordering another one",
		"the color faded but the %s held up",
	}

	complaintCategories = []string{"delivery", "returns", "billing", "product quality", "customer support"}
	intensityLabels     = []string{"low", "medium", "high"}
	complaintPhrases    = []string{
		"my order arrived two weeks late and nobody responded",
		"the return label never showed up in my inbox",
		"I was charged twice for the same order",
		"the stitching came apart after three days",
		"support kept transferring me between agents",
	}
)

type ProcessedReview struct {
	ReviewerID   string
	ReviewTime   time.Time
	Category     string
	Attribute    string
	Score        int
	Reason       string
	SortableDate int
}

type FormattedReview struct {
	ReviewID  int
	Attribute string
	Score     int
	Reason    string
}

type RawReview struct {
	ReviewID   int
	ClothingID int
	Age        int
	Text       string
	Division   string
	Department string
	Class      string
	Title      string
	Rating     int
}

type Complaint struct {
	Text           string
	Category       string
	IntensityLabel string
	IntensityScore int
	Timestamp      time.Time
	CustomerID     string
	OrderID        string
	EmailID        string
}

type AmazonReview struct {
	ReviewerID     string
	ASIN           string
	ReviewerName   string
	Helpful        string
	ReviewText     string
	Overall        int
	Summary        string
	UnixReviewTime int64
	ReviewTime     time.Time
}

// Generator produces the same rows for the same seed, so repeated seeding
// runs are reproducible.
type Generator struct {
	rnd      *rand.Rand
	epoch    time.Time
	sequence int
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd:   rand.New(rand.NewSource(seed)),
		epoch: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (g *Generator) NextProcessedReview() ProcessedReview {
	g.sequence++
	reviewedAt := g.reviewTime()
	attribute := pickOne(g.rnd, attributes)
	return ProcessedReview{
		ReviewerID:   fmt.Sprintf("reviewer-%05d", g.rnd.Intn(2000)+1),
		ReviewTime:   reviewedAt,
		Category:     pickOne(g.rnd, categories),
		Attribute:    attribute,
		Score:        g.score(),
		Reason:       g.reason(attribute),
		SortableDate: reviewedAt.Year()*10000 + int(reviewedAt.Month())*100 + reviewedAt.Day(),
	}
}

func (g *Generator) NextFormattedReview() FormattedReview {
	g.sequence++
	attribute := pickOne(g.rnd, attributes)
	return FormattedReview{
		ReviewID:  g.sequence,
		Attribute: attribute,
		Score:     g.score(),
		Reason:    g.reason(attribute),
	}
}

func (g *Generator) NextRawReview() RawReview {
	g.sequence++
	department := pickOne(g.rnd, departments)
	return RawReview{
		ReviewID:   g.sequence,
		ClothingID: g.rnd.Intn(1200) + 1,
		Age:        g.rnd.Intn(52) + 18,
		Text:       g.reason(pickOne(g.rnd, attributes)),
		Division:   pickOne(g.rnd, divisions),
		Department: department,
		Class:      department,
		Title:      "Review " + fmt.Sprint(g.sequence),
		Rating:     g.score(),
	}
}

func (g *Generator) NextComplaint() Complaint {
	g.sequence++
	category := pickOne(g.rnd, complaintCategories)
	score := g.rnd.Intn(10) + 1
	label := intensityLabels[0]
	switch {
	case score > 7:
		label = intensityLabels[2]
	case score > 4:
		label = intensityLabels[1]
	}
	customer := g.rnd.Intn(5000) + 1
	return Complaint{
		Text:           pickOne(g.rnd, complaintPhrases),
		Category:       category,
		IntensityLabel: label,
		IntensityScore: score,
		Timestamp:      g.reviewTime(),
		CustomerID:     fmt.Sprintf("cust-%06d", customer),
		OrderID:        fmt.Sprintf("ord-%08d", g.rnd.Intn(99999999)+1),
		EmailID:        fmt.Sprintf("cust%06d@example.com", customer),
	}
}

func (g *Generator) NextAmazonReview() AmazonReview {
	g.sequence++
	reviewedAt := g.reviewTime()
	attribute := pickOne(g.rnd, attributes)
	return AmazonReview{
		ReviewerID:     fmt.Sprintf("A%012d", g.rnd.Intn(899999999)+100000000),
		ASIN:           fmt.Sprintf("B%09d", g.rnd.Intn(999999999)+1),
		ReviewerName:   fmt.Sprintf("shopper%04d", g.rnd.Intn(9999)+1),
		Helpful:        fmt.Sprintf("[%d, %d]", g.rnd.Intn(5), g.rnd.Intn(20)+5),
		ReviewText:     g.reason(attribute),
		Overall:        g.score(),
		Summary:        strings.ToUpper(attribute[:1]) + attribute[1:] + " review",
		UnixReviewTime: reviewedAt.Unix(),
		ReviewTime:     reviewedAt,
	}
}

// score skews toward favorable ratings the way review datasets do.
func (g *Generator) score() int {
	p := g.rnd.Intn(100)
	switch {
	case p < 35:
		return 5
	case p < 60:
		return 4
	case p < 78:
		return 3
	case p < 91:
		return 2
	default:
		return 1
	}
}

func (g *Generator) reason(attribute string) string {
	return fmt.Sprintf(pickOne(g.rnd, reviewPhrases), attribute)
}

// reviewTime spreads rows over two years so month and quarter groupings
// have something to show.
func (g *Generator) reviewTime() time.Time {
	days := g.rnd.Intn(730)
	minutes := g.rnd.Intn(24 * 60)
	return g.epoch.AddDate(0, 0, days).Add(time.Duration(minutes) * time.Minute)
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
