package signals

import (
	"math"

	"github.com/wonny/screener/internal/contracts"
)

// tier awards points when a value clears a threshold
type tier struct {
	threshold float64
	points    float64
}

// aboveTiers returns the points of the first tier whose threshold v strictly exceeds.
// Tiers must be ordered from the highest threshold down.
func aboveTiers(v float64, tiers []tier) float64 {
	for _, t := range tiers {
		if v > t.threshold {
			return t.points
		}
	}
	return 0
}

// belowTiers returns the points of the first tier whose threshold v is strictly under.
// Tiers must be ordered from the lowest threshold up.
func belowTiers(v float64, tiers []tier) float64 {
	for _, t := range tiers {
		if v < t.threshold {
			return t.points
		}
	}
	return 0
}

// sheet accumulates the audited criteria of one component
type sheet struct {
	component  contracts.Component
	criteria   []contracts.Criterion
	indicators map[string]float64
	notes      []string
}

func newSheet(c contracts.Component) *sheet {
	return &sheet{component: c, indicators: make(map[string]float64)}
}

func (s *sheet) add(name string, points, max float64) {
	s.criteria = append(s.criteria, contracts.Criterion{Name: name, Points: points, Max: max})
}

func (s *sheet) addNote(name string, points, max float64, note string) {
	s.criteria = append(s.criteria, contracts.Criterion{Name: name, Points: points, Max: max, Note: note})
}

// addUnmeasured records a fixed default standing in for a missing data source
func (s *sheet) addUnmeasured(name string, points, max float64, note string) {
	s.criteria = append(s.criteria, contracts.Criterion{Name: name, Points: points, Max: max, Unmeasured: true, Note: note})
}

func (s *sheet) indicator(name string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	s.indicators[name] = v
}

func (s *sheet) note(msg string) {
	s.notes = append(s.notes, msg)
}

// result totals the criteria and clamps to [0,100]
func (s *sheet) result() contracts.ComponentScore {
	total := 0.0
	for _, c := range s.criteria {
		total += c.Points
	}
	total = math.Max(0, math.Min(100, total))

	return contracts.ComponentScore{
		Component:  s.component,
		Score:      total,
		Criteria:   s.criteria,
		Indicators: s.indicators,
		Notes:      s.notes,
	}
}
