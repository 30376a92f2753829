package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/garmentz-backend/internal/quotes"
	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
)

// Signal weights. They sum to 100 so the total needs no clamping.
const (
	SpecializationWeight = 40
	CapacityWeight       = 25
	RatingWeight         = 20
	OnTimeWeight         = 15

	partialSpecialization = 20
	maxRating             = 5.0
	maxOnTimeRate         = 100.0
)

var capacityBands = []struct {
	below  float64
	points int
}{
	{below: 0.50, points: CapacityWeight},
	{below: 0.75, points: 15},
	{below: 0.90, points: 5},
}

// Breakdown holds the points each signal contributed before rounding.
type Breakdown struct {
	Specialization int     `json:"specialization"`
	Capacity       int     `json:"capacity"`
	Rating         float64 `json:"rating"`
	OnTime         float64 `json:"on_time"`
}

// Total sums the signals and rounds half away from zero.
func (b Breakdown) Total() int {
	return int(math.Round(float64(b.Specialization+b.Capacity) + b.Rating + b.OnTime))
}

// Match is one supplier scored against one quote. It is never persisted.
type Match struct {
	QuoteID   uuid.UUID              `json:"quote_id"`
	Supplier  suppliers.SupplierView `json:"supplier"`
	Score     int                    `json:"score"`
	Breakdown Breakdown              `json:"breakdown"`
	Reasons   []string               `json:"reasons"`
}

// Score computes the weighted compatibility of supplier for quote.
func Score(quote quotes.QuoteView, supplier suppliers.SupplierView) Match {
	var (
		breakdown Breakdown
		reasons   []string
	)

	points, matched := specializationPoints(quote.ProductType, supplier.Specialization)
	breakdown.Specialization = points
	switch points {
	case SpecializationWeight:
		reasons = append(reasons, fmt.Sprintf("specializes in %s", matched))
	case partialSpecialization:
		reasons = append(reasons, fmt.Sprintf("related specialization %s", matched))
	}

	utilization := Utilization(supplier.CurrentWorkload, supplier.ProductionCapacity)
	breakdown.Capacity = capacityPoints(utilization)
	if breakdown.Capacity > 0 {
		reasons = append(reasons, fmt.Sprintf("capacity %.0f%% utilized", utilization*100))
	}

	rating := clamp(supplier.Rating.InexactFloat64(), 0, maxRating)
	breakdown.Rating = rating / maxRating * RatingWeight
	if rating > 0 {
		reasons = append(reasons, fmt.Sprintf("rated %.1f/5", rating))
	}

	onTime := clamp(supplier.OnTimeDeliveryRate, 0, maxOnTimeRate)
	breakdown.OnTime = onTime / maxOnTimeRate * OnTimeWeight
	if onTime > 0 {
		reasons = append(reasons, fmt.Sprintf("%.0f%% on-time delivery", onTime))
	}

	if reasons == nil {
		reasons = []string{}
	}
	return Match{
		QuoteID:   quote.ID,
		Supplier:  supplier,
		Score:     breakdown.Total(),
		Breakdown: breakdown,
		Reasons:   reasons,
	}
}

// specializationPoints prefers an exact, case-sensitive entry over a
// case-insensitive substring overlap in either direction.
func specializationPoints(productType string, specialization []string) (int, string) {
	if strings.TrimSpace(productType) == "" {
		return 0, ""
	}
	for _, entry := range specialization {
		if entry != "" && entry == productType {
			return SpecializationWeight, entry
		}
	}
	needle := strings.ToLower(productType)
	for _, entry := range specialization {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		candidate := strings.ToLower(entry)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return partialSpecialization, entry
		}
	}
	return 0, ""
}

// Utilization is workload over capacity. A non-positive capacity counts as full.
func Utilization(workload, capacity int) float64 {
	if capacity <= 0 {
		return 1
	}
	return float64(workload) / float64(capacity)
}

func capacityPoints(utilization float64) int {
	for _, band := range capacityBands {
		if utilization < band.below {
			return band.points
		}
	}
	return 0
}

func clamp(value, lo, hi float64) float64 {
	if math.IsNaN(value) {
		return lo
	}
	return math.Max(lo, math.Min(hi, value))
}
