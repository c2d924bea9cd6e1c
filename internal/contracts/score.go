package contracts

import "time"

// Component identifies one of the four scoring dimensions
type Component string

const (
	ComponentFundamental Component = "fundamental"
	ComponentTechnical   Component = "technical"
	ComponentCatalyst    Component = "catalyst"
	ComponentSentiment   Component = "sentiment"
)

// AllComponents returns the scoring dimensions in report order
func AllComponents() []Component {
	return []Component{ComponentFundamental, ComponentTechnical, ComponentCatalyst, ComponentSentiment}
}

// Criterion is one audited sub-criterion of a ComponentScore.
// Unmeasured marks a fixed default that stands in for a data source that is not integrated;
// it contributes the same points to every ticker and never differentiates them.
type Criterion struct {
	Name       string  `json:"name"`
	Points     float64 `json:"points"`
	Max        float64 `json:"max"`
	Unmeasured bool    `json:"unmeasured,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// ComponentScore is a sub-score in [0,100] with its audit trail
// ⭐ SSOT: ComponentScorer → CompositeScorer 점수 전달
type ComponentScore struct {
	Component  Component          `json:"component"`
	Score      float64            `json:"score"`
	Criteria   []Criterion        `json:"criteria"`
	Indicators map[string]float64 `json:"indicators,omitempty"` // raw values behind the criteria
	Notes      []string           `json:"notes,omitempty"`
}

// Points returns the contribution of a named sub-criterion
func (c ComponentScore) Points(name string) float64 {
	for _, cr := range c.Criteria {
		if cr.Name == name {
			return cr.Points
		}
	}
	return 0
}

// Unmeasured returns the names of placeholder sub-criteria
func (c ComponentScore) Unmeasured() []string {
	var names []string
	for _, cr := range c.Criteria {
		if cr.Unmeasured {
			names = append(names, cr.Name)
		}
	}
	return names
}

// Rating is the discrete verdict derived from a final score
type Rating string

const (
	RatingStrongBuy Rating = "STRONG BUY"
	RatingBuy       Rating = "BUY"
	RatingHold      Rating = "HOLD"
	RatingPass      Rating = "PASS"
)

// ScreeningResult is the composite verdict for one ticker
// ⭐ SSOT: CompositeScorer → 정렬/선별/출력 전달
type ScreeningResult struct {
	Ticker       string         `json:"ticker"`
	CompanyName  string         `json:"company_name"`
	Sector       string         `json:"sector"`
	Industry     string         `json:"industry"`
	MarketCap    float64        `json:"market_cap"`
	CurrentPrice float64        `json:"current_price"`
	Fundamental  ComponentScore `json:"fundamental"`
	Technical    ComponentScore `json:"technical"`
	Catalyst     ComponentScore `json:"catalyst"`
	Sentiment    ComponentScore `json:"sentiment"`
	FinalScore   float64        `json:"final_score"`
	Rating       Rating         `json:"rating"`
	ScreenedAt   time.Time      `json:"screened_at"`
}

// Component returns the sub-score for one dimension
func (r *ScreeningResult) Component(c Component) ComponentScore {
	switch c {
	case ComponentFundamental:
		return r.Fundamental
	case ComponentTechnical:
		return r.Technical
	case ComponentCatalyst:
		return r.Catalyst
	case ComponentSentiment:
		return r.Sentiment
	default:
		return ComponentScore{}
	}
}
