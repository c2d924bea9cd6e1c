package universe

import (
	"fmt"

	"github.com/wonny/screener/internal/contracts"
)

// Band is the plausible size range of a source's list. Max 0 means unbounded.
type Band struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether n symbols is a plausible answer
func (b Band) Contains(n int) bool {
	return n >= b.Min && (b.Max == 0 || n <= b.Max)
}

func (b Band) String() string {
	if b.Max == 0 {
		return fmt.Sprintf("[%d,∞)", b.Min)
	}
	return fmt.Sprintf("[%d,%d]", b.Min, b.Max)
}

// Validate checks min <= max
func (b Band) Validate() error {
	if b.Min < 0 || (b.Max != 0 && b.Max < b.Min) {
		return fmt.Errorf("invalid band %s", b)
	}
	return nil
}

// Bands maps each source to its validity band
type Bands map[contracts.SourceKind]Band

// DefaultBands returns the size guards for a ~500 name index and the NASDAQ-100.
// They catch layout drift (a wrong column, a truncated page), they are not index rules.
func DefaultBands() Bands {
	return Bands{
		contracts.SourcePrimary:         {Min: 480, Max: 520},
		contracts.SourceSecondaryAPI:    {Min: 450, Max: 550},
		contracts.SourceTertiaryLibrary: {Min: 450, Max: 550},
		contracts.SourceHardcoded:       {Min: 1},
		contracts.SourceNasdaq100:       {Min: 90, Max: 110},
		contracts.SourceFile:            {Min: 0},
	}
}

// For returns the band of a source; unknown sources accept any non-empty list
func (b Bands) For(kind contracts.SourceKind) Band {
	if band, ok := b[kind]; ok {
		return band
	}
	return Band{Min: 1}
}
