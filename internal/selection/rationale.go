package selection

import (
	"fmt"
	"strings"

	"github.com/wonny/screener/internal/contracts"
)

// strengthThreshold marks a component score worth calling out
const strengthThreshold = 75.0

var strengthLabels = map[contracts.Component]string{
	contracts.ComponentFundamental: "strong fundamentals",
	contracts.ComponentTechnical:   "bullish technicals",
	contracts.ComponentCatalyst:    "major catalysts",
	contracts.ComponentSentiment:   "supportive sentiment",
}

// KeyCatalyst returns the first catalyst note, or a generic line when there is none
func KeyCatalyst(r *contracts.ScreeningResult) string {
	if len(r.Catalyst.Notes) > 0 {
		return r.Catalyst.Notes[0]
	}
	return "Fundamental and technical setup"
}

// Rationale explains a result in one paragraph: verdict, strengths, lead catalyst
// and the components that carry unmeasured defaults.
func Rationale(r *contracts.ScreeningResult) string {
	var b strings.Builder

	sector := r.Sector
	if sector == "" {
		sector = UnknownSector
	}
	fmt.Fprintf(&b, "%s (%s) rated %s at %.1f/100.", r.Ticker, sector, r.Rating, r.FinalScore)

	var strengths []string
	for _, c := range contracts.AllComponents() {
		if r.Component(c).Score >= strengthThreshold {
			strengths = append(strengths, strengthLabels[c])
		}
	}
	if len(strengths) > 0 {
		fmt.Fprintf(&b, " Strengths: %s.", strings.Join(strengths, ", "))
	} else {
		b.WriteString(" No component scored above 75.")
	}

	fmt.Fprintf(&b, " Key catalyst: %s.", KeyCatalyst(r))

	var unmeasured []string
	for _, c := range contracts.AllComponents() {
		for _, name := range r.Component(c).Unmeasured() {
			unmeasured = append(unmeasured, fmt.Sprintf("%s/%s", c, name))
		}
	}
	if len(unmeasured) > 0 {
		fmt.Fprintf(&b, " Fixed defaults (not differentiating): %s.", strings.Join(unmeasured, ", "))
	}

	return b.String()
}
