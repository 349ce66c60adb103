package portfolio

import (
	"math"

	"github.com/JScottR45/PortfolioAnalyzer/date"
)

// Mode selects what a performance point measures.
type Mode int

const (
	// GrossProfit charts dollars made: close value minus invested capital.
	GrossProfit Mode = iota
	// PercentReturn charts the percentage return on invested capital.
	PercentReturn
)

func (m Mode) String() string {
	if m == GrossProfit {
		return "profit"
	}
	return "return"
}

// MaxDisplayPoints is the longest performance series handed out for
// display. Longer extractions are thinned to this length.
const MaxDisplayPoints = 51

// Point is one displayable performance sample.
type Point struct {
	Date  date.Date
	Value float64
}

// ExtractRange pulls the performance samples of s that fall inside r,
// valued according to mode. Bounds outside the available history clamp
// to the nearest recorded day; the second return is the range actually
// covered. The result is already thinned to MaxDisplayPoints.
func ExtractRange(s *TimeSeries, r date.Range, mode Mode) ([]Point, date.Range) {
	var points []Point
	for _, day := range s.Records() {
		if day.Date.Before(r.From) {
			continue
		}
		if day.Date.After(r.To) {
			break
		}
		v := day.Close - day.Invested
		if mode == PercentReturn {
			v = (day.Close - day.Invested) / day.Invested * 100
		}
		points = append(points, Point{Date: day.Date, Value: v})
	}
	if len(points) == 0 {
		return nil, date.Range{}
	}
	covered := date.Range{From: points[0].Date, To: points[len(points)-1].Date}
	return Downsample(points, MaxDisplayPoints), covered
}

// Downsample thins points to at most maxPoints samples. The first and
// last points always survive; interior points are dropped at evenly
// spaced positions so the remaining samples stay spread across the whole
// span rather than bunching at either end.
func Downsample(points []Point, maxPoints int) []Point {
	if len(points) <= maxPoints {
		return points
	}
	// Below three points there is no interior to thin; the endpoints are
	// the floor.
	if maxPoints < 3 {
		if len(points) < 2 {
			return points
		}
		return []Point{points[0], points[len(points)-1]}
	}

	adjustedNum := maxPoints - 2
	adjustedLen := len(points) - 2
	removeEvery := float64(adjustedLen) / float64(adjustedLen-adjustedNum+1)

	skipped := make([]int, 0, adjustedLen-adjustedNum)
	indexSum := removeEvery
	for skip := int(math.Ceil(indexSum)); skip < adjustedLen; skip = int(math.Ceil(indexSum)) {
		skipped = append(skipped, skip)
		indexSum += removeEvery
	}

	interior := points[1 : len(points)-1]
	out := make([]Point, 0, maxPoints)
	out = append(out, points[0])

	i := 0
	for j, p := range interior {
		if j != skipped[i] {
			out = append(out, p)
		} else if i < len(skipped)-1 {
			i++
		}
	}
	return append(out, points[len(points)-1])
}
