package selection

import "github.com/wonny/screener/internal/contracts"

// UnknownSector groups results without a sector tag
const UnknownSector = "Unknown"

// SelectTop walks ranked results in order and keeps the first n while no sector exceeds
// perSectorCap. Earlier rank wins a sector slot. n <= 0 or perSectorCap <= 0 disable
// the respective limit. The input must already be ranked.
func SelectTop(ranked []contracts.ScreeningResult, n, perSectorCap int) []contracts.ScreeningResult {
	selected := make([]contracts.ScreeningResult, 0)
	perSector := make(map[string]int)

	for _, r := range ranked {
		if n > 0 && len(selected) >= n {
			break
		}

		sector := r.Sector
		if sector == "" {
			sector = UnknownSector
		}
		if perSectorCap > 0 && perSector[sector] >= perSectorCap {
			continue
		}

		perSector[sector]++
		selected = append(selected, r)
	}
	return selected
}

// SectorCounts tallies results per sector
func SectorCounts(results []contracts.ScreeningResult) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		sector := r.Sector
		if sector == "" {
			sector = UnknownSector
		}
		counts[sector]++
	}
	return counts
}
