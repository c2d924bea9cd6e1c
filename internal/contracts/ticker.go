package contracts

import "strings"

// NormalizeTicker returns the canonical form of a ticker symbol (trimmed, uppercase)
// ⭐ SSOT: 종목 코드 정규화는 여기서만
func NormalizeTicker(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// DedupTickers normalizes symbols and drops empties and repeats.
// The first occurrence of each symbol keeps its position.
func DedupTickers(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))

	for _, s := range symbols {
		t := NormalizeTicker(s)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseTickerList splits a comma-separated list ("aapl, msft,,GOOGL")
func ParseTickerList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return DedupTickers(strings.Split(raw, ","))
}

// ExcludeTickers removes every symbol in exclude from symbols, preserving order.
// It returns the kept symbols and the removed ones.
func ExcludeTickers(symbols, exclude []string) (kept, removed []string) {
	if len(exclude) == 0 {
		return symbols, nil
	}

	drop := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		if t := NormalizeTicker(e); t != "" {
			drop[t] = struct{}{}
		}
	}

	kept = make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := drop[NormalizeTicker(s)]; ok {
			removed = append(removed, s)
			continue
		}
		kept = append(kept, s)
	}
	return kept, removed
}
