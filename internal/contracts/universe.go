package contracts

import "time"

// SourceKind tags where a universe came from
type SourceKind string

const (
	SourcePrimary         SourceKind = "primary"          // live index listing
	SourceSecondaryAPI    SourceKind = "secondary_api"    // vendor screener endpoint
	SourceTertiaryLibrary SourceKind = "tertiary_library" // packaged symbol dataset
	SourceHardcoded       SourceKind = "hardcoded"        // embedded static list
	SourceNasdaq100       SourceKind = "nasdaq100"
	SourceFile            SourceKind = "file"
)

// AttemptOutcome is the result of trying one universe source
type AttemptOutcome string

const (
	OutcomeAccepted AttemptOutcome = "accepted"
	OutcomeRejected AttemptOutcome = "rejected" // responded, but outside its validity band
	OutcomeFailed   AttemptOutcome = "failed"   // no usable response after retries
)

// SourceAttempt records one source in a resolution
type SourceAttempt struct {
	Source   SourceKind     `json:"source"`
	Outcome  AttemptOutcome `json:"outcome"`
	Count    int            `json:"count"`
	Tries    int            `json:"tries"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Universe is the resolved working set of tickers
// ⭐ SSOT: UniverseResolver → ScreeningPipeline 종목 전달
type Universe struct {
	Mode       string            `json:"mode"`
	Symbols    []string          `json:"symbols"`
	Source     SourceKind        `json:"source"`   // source that served the symbols (first one for unions)
	Degraded   bool              `json:"degraded"` // auto mode served by a fallback below Primary
	Attempts   []SourceAttempt   `json:"attempts"`
	Excluded   map[string]string `json:"excluded,omitempty"` // ticker → reason (sector/liquidity filters)
	ResolvedAt time.Time         `json:"resolved_at"`
}

// Count returns the number of symbols
func (u *Universe) Count() int {
	return len(u.Symbols)
}

// IsEmpty reports a valid universe with no symbols (e.g. a strict filter)
func (u *Universe) IsEmpty() bool {
	return len(u.Symbols) == 0
}

// Contains checks if a ticker is in the universe
func (u *Universe) Contains(ticker string) bool {
	t := NormalizeTicker(ticker)
	for _, s := range u.Symbols {
		if s == t {
			return true
		}
	}
	return false
}

// IsExcluded checks if a ticker was filtered out, with the reason
func (u *Universe) IsExcluded(ticker string) (bool, string) {
	reason, exists := u.Excluded[NormalizeTicker(ticker)]
	return exists, reason
}
