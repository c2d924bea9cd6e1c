package contracts

import "context"

// MarketDataProvider fetches everything needed to score one ticker.
// Failures are per ticker and come back as *SnapshotError.
// ⭐ SSOT: 시세/재무 데이터 공급 인터페이스
type MarketDataProvider interface {
	GetSnapshot(ctx context.Context, ticker string) (*StockSnapshot, error)
}

// ProfileProvider returns descriptive data used by sector and liquidity filters
type ProfileProvider interface {
	GetProfile(ctx context.Context, ticker string) (*StockProfile, error)
}

// UniverseSource produces a raw candidate symbol list
// ⭐ SSOT: 유니버스 소스 인터페이스
type UniverseSource interface {
	Kind() SourceKind
	Fetch(ctx context.Context) ([]string, error)
}

// ComponentScorer maps a snapshot to one sub-score. Implementations are pure.
// ⭐ SSOT: 컴포넌트 점수 인터페이스
type ComponentScorer interface {
	Component() Component
	Score(snapshot *StockSnapshot) ComponentScore
}
