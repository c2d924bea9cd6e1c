package universe

import (
	"context"

	"github.com/wonny/screener/internal/contracts"
)

// FetchFunc produces a raw symbol list
type FetchFunc func(ctx context.Context) ([]string, error)

// funcSource adapts a FetchFunc to contracts.UniverseSource
type funcSource struct {
	kind  contracts.SourceKind
	fetch FetchFunc
}

// NewSource wraps any list producer as a universe source
func NewSource(kind contracts.SourceKind, fetch FetchFunc) contracts.UniverseSource {
	return funcSource{kind: kind, fetch: fetch}
}

func (s funcSource) Kind() contracts.SourceKind { return s.kind }

func (s funcSource) Fetch(ctx context.Context) ([]string, error) { return s.fetch(ctx) }

// StaticSource serves a fixed list; used for tests and inline ticker lists
func StaticSource(kind contracts.SourceKind, symbols ...string) contracts.UniverseSource {
	return NewSource(kind, func(context.Context) ([]string, error) {
		out := make([]string, len(symbols))
		copy(out, symbols)
		return out, nil
	})
}

// autoChain is the fallback order of auto mode
var autoChain = []contracts.SourceKind{
	contracts.SourcePrimary,
	contracts.SourceSecondaryAPI,
	contracts.SourceTertiaryLibrary,
	contracts.SourceHardcoded,
}
