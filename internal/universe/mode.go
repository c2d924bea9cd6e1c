package universe

import (
	"strings"

	"github.com/wonny/screener/internal/contracts"
)

// Mode selects how a universe is assembled
type Mode string

const (
	ModeAuto       Mode = "auto"       // fallback chain
	ModeSP500      Mode = "sp500"      // primary only
	ModeNasdaq100  Mode = "nasdaq100"  // NASDAQ-100 only
	ModeCombined   Mode = "combined"   // S&P 500 ∪ NASDAQ-100
	ModeTech       Mode = "tech"       // S&P 500, Technology
	ModeHealthcare Mode = "healthcare" // S&P 500, Healthcare
	ModeGrowth     Mode = "growth"     // S&P 500, growth sectors
	ModeFile       Mode = "file"       // YAML universe file
)

// AllModes returns every mode in help order
func AllModes() []Mode {
	return []Mode{ModeAuto, ModeSP500, ModeNasdaq100, ModeCombined, ModeTech, ModeHealthcare, ModeGrowth, ModeFile}
}

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllModes() {
		if m == known {
			return m, nil
		}
	}
	names := make([]string, 0, len(AllModes()))
	for _, known := range AllModes() {
		names = append(names, string(known))
	}
	return "", contracts.NewConfigError("mode", "unknown mode %q (choose from %s)", s, strings.Join(names, ", "))
}

// sectorModes maps sector-filter modes to the sectors they keep
var sectorModes = map[Mode][]string{
	ModeTech:       {"Technology"},
	ModeHealthcare: {"Healthcare"},
	ModeGrowth:     {"Technology", "Healthcare", "Consumer Cyclical"},
}

// Sectors returns the sector filter of a mode, nil when it has none
func (m Mode) Sectors() []string {
	return sectorModes[m]
}
