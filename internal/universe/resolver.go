package universe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/progress"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = 1 * time.Second // 1s, 2s, ...
)

// Resolver builds a universe from an ordered set of sources
// ⭐ SSOT: 유니버스 결정은 여기서만
type Resolver struct {
	sources  map[contracts.SourceKind]contracts.UniverseSource
	bands    Bands
	attempts int
	backoff  time.Duration
	profiles contracts.ProfileProvider
	file     string
	cache    *redis.Cache
	observer progress.Observer
	now      func() time.Time
	logger   *logger.Logger
}

// NewResolver creates a resolver with only the embedded fallback registered
func NewResolver(log *logger.Logger) *Resolver {
	r := &Resolver{
		sources:  make(map[contracts.SourceKind]contracts.UniverseSource),
		bands:    DefaultBands(),
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		observer: progress.Nop{},
		now:      time.Now,
		logger:   log,
	}
	return r.WithSource(NewHardcodedSource())
}

// WithSource registers a source under its kind, replacing any previous one
func (r *Resolver) WithSource(src contracts.UniverseSource) *Resolver {
	r.sources[src.Kind()] = src
	return r
}

// WithBands overrides validity bands per source
func (r *Resolver) WithBands(bands Bands) *Resolver {
	for kind, band := range bands {
		r.bands[kind] = band
	}
	return r
}

// WithRetry sets per-source attempts and the first backoff delay
func (r *Resolver) WithRetry(attempts int, backoff time.Duration) *Resolver {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.backoff = backoff
	return r
}

// WithProfiles enables sector and market cap filtering
func (r *Resolver) WithProfiles(p contracts.ProfileProvider) *Resolver {
	r.profiles = p
	return r
}

// WithUniverseFile sets the YAML file used by file mode
func (r *Resolver) WithUniverseFile(path string) *Resolver {
	r.file = path
	return r
}

// WithCache caches accepted source lists for the day
func (r *Resolver) WithCache(c *redis.Cache) *Resolver {
	r.cache = c
	return r
}

// WithObserver attaches a progress observer
func (r *Resolver) WithObserver(o progress.Observer) *Resolver {
	r.observer = progress.OrNop(o)
	return r
}

// Resolve returns up to maxCount normalized, unique symbols for mode.
// Configuration problems are reported before any source is contacted.
// In auto mode only exhaustion of the whole chain is an error; every other
// mode fails as soon as its named source fails.
func (r *Resolver) Resolve(ctx context.Context, mode Mode, maxCount int) (*contracts.Universe, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	fileCfg, err := r.validate(mode, maxCount)
	if err != nil {
		return nil, err
	}

	u := &contracts.Universe{
		Mode:       string(mode),
		Symbols:    make([]string, 0),
		Excluded:   make(map[string]string),
		ResolvedAt: r.now(),
	}

	switch mode {
	case ModeAuto:
		err = r.resolveAuto(ctx, u)
	case ModeSP500:
		u.Symbols, err = r.resolveSingle(ctx, u, contracts.SourcePrimary)
	case ModeNasdaq100:
		u.Symbols, err = r.resolveSingle(ctx, u, contracts.SourceNasdaq100)
	case ModeCombined:
		u.Symbols, err = r.resolveUnion(ctx, u, contracts.SourcePrimary, contracts.SourceNasdaq100)
	case ModeTech, ModeHealthcare, ModeGrowth:
		err = r.resolveSectors(ctx, u, mode.Sectors(), maxCount)
	case ModeFile:
		err = r.resolveFile(ctx, u, fileCfg, maxCount)
	}
	if err != nil {
		return nil, err
	}

	if len(u.Symbols) > maxCount {
		u.Symbols = u.Symbols[:maxCount]
	}

	r.logger.WithFields(map[string]interface{}{
		"mode":     string(mode),
		"source":   string(u.Source),
		"count":    len(u.Symbols),
		"degraded": u.Degraded,
		"excluded": len(u.Excluded),
	}).Info("Universe resolved")

	return u, nil
}

// validate checks mode, count and required collaborators. File mode parses its file here.
func (r *Resolver) validate(mode Mode, maxCount int) (*FileConfig, error) {
	if maxCount <= 0 {
		return nil, contracts.NewConfigError("max_stocks", "must be positive, got %d", maxCount)
	}

	need := func(kinds ...contracts.SourceKind) error {
		for _, k := range kinds {
			if _, ok := r.sources[k]; !ok {
				return contracts.NewConfigError("mode", "mode %s needs the %s source, which is not configured", mode, k)
			}
		}
		return nil
	}
	needProfiles := func() error {
		if r.profiles == nil {
			return contracts.NewConfigError("mode", "mode %s needs a profile provider for filtering", mode)
		}
		return nil
	}

	switch mode {
	case ModeSP500:
		return nil, need(contracts.SourcePrimary)
	case ModeNasdaq100:
		return nil, need(contracts.SourceNasdaq100)
	case ModeCombined:
		return nil, need(contracts.SourcePrimary, contracts.SourceNasdaq100)
	case ModeTech, ModeHealthcare, ModeGrowth:
		if err := need(contracts.SourcePrimary); err != nil {
			return nil, err
		}
		return nil, needProfiles()
	case ModeFile:
		if r.file == "" {
			return nil, contracts.NewConfigError("universe_file", "file mode needs a universe file")
		}
		cfg, err := LoadFile(r.file)
		if err != nil {
			return nil, err
		}
		if f := cfg.Filters; len(cfg.Tickers) == 0 && f != nil {
			for _, idx := range f.Indices {
				if err := need(indexSources[idx]); err != nil {
					return nil, err
				}
			}
			if len(f.Sectors) > 0 || f.MinMarketCap > 0 {
				if err := needProfiles(); err != nil {
					return nil, err
				}
			}
		}
		return cfg, nil
	}
	return nil, nil
}

// resolveAuto walks the fallback chain until one source passes its band
func (r *Resolver) resolveAuto(ctx context.Context, u *contracts.Universe) error {
	for _, kind := range autoChain {
		src, ok := r.sources[kind]
		if !ok {
			continue
		}

		symbols, rec := r.attempt(ctx, src)
		u.Attempts = append(u.Attempts, rec)
		if err := ctx.Err(); err != nil {
			return err
		}
		if rec.Outcome != contracts.OutcomeAccepted {
			continue
		}

		u.Symbols = symbols
		u.Source = kind
		u.Degraded = kind != contracts.SourcePrimary

		if kind == contracts.SourceHardcoded {
			r.emit(progress.Event{Type: progress.ResolveHardcoded, Source: kind, Count: len(symbols),
				Message: "All live sources failed; using the embedded list"})
		} else if u.Degraded {
			r.logger.WithField("source", string(kind)).Warn("Universe served by a fallback source")
		}
		return nil
	}

	return fmt.Errorf("%w: %s", contracts.ErrUniverseExhausted, summarize(u.Attempts))
}

// resolveSingle runs one named source with no fallback
func (r *Resolver) resolveSingle(ctx context.Context, u *contracts.Universe, kind contracts.SourceKind) ([]string, error) {
	symbols, rec := r.attempt(ctx, r.sources[kind])
	u.Attempts = append(u.Attempts, rec)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rec.Outcome != contracts.OutcomeAccepted {
		return nil, &contracts.SourceError{Source: kind, Err: errors.New(rec.Error)}
	}
	if u.Source == "" {
		u.Source = kind
	}
	return symbols, nil
}

// resolveUnion concatenates sources in order and drops repeats
func (r *Resolver) resolveUnion(ctx context.Context, u *contracts.Universe, kinds ...contracts.SourceKind) ([]string, error) {
	var all []string
	for _, kind := range kinds {
		symbols, err := r.resolveSingle(ctx, u, kind)
		if err != nil {
			return nil, err
		}
		all = append(all, symbols...)
	}
	return contracts.DedupTickers(all), nil
}

// resolveSectors takes the primary list and keeps the first maxCount names in sectors
func (r *Resolver) resolveSectors(ctx context.Context, u *contracts.Universe, sectors []string, maxCount int) error {
	symbols, err := r.resolveSingle(ctx, u, contracts.SourcePrimary)
	if err != nil {
		return err
	}

	filtered, err := FilterProfiles(ctx, r.profiles, symbols, maxCount, r.logger, SectorCheck(sectors))
	if err != nil {
		return err
	}
	for t, reason := range filtered.Excluded {
		u.Excluded[t] = reason
	}
	u.Symbols = filtered.Kept
	return nil
}

// resolveFile serves an explicit ticker list or filtered index constituents
func (r *Resolver) resolveFile(ctx context.Context, u *contracts.Universe, cfg *FileConfig, maxCount int) error {
	start := time.Now()

	if len(cfg.Tickers) > 0 {
		u.Symbols = contracts.DedupTickers(cfg.Tickers)
		u.Source = contracts.SourceFile
		u.Attempts = append(u.Attempts, contracts.SourceAttempt{
			Source:   contracts.SourceFile,
			Outcome:  contracts.OutcomeAccepted,
			Count:    len(u.Symbols),
			Tries:    1,
			Duration: time.Since(start),
		})
		return nil
	}

	f := cfg.Filters
	kinds := make([]contracts.SourceKind, 0, len(f.Indices))
	for _, idx := range f.Indices {
		kinds = append(kinds, indexSources[idx])
	}
	symbols, err := r.resolveUnion(ctx, u, kinds...)
	if err != nil {
		return err
	}
	u.Source = contracts.SourceFile

	limit := maxCount
	if f.MaxStocks > 0 && f.MaxStocks < limit {
		limit = f.MaxStocks
	}

	var checks []ProfileCheck
	if len(f.Sectors) > 0 {
		checks = append(checks, SectorCheck(f.Sectors))
	}
	if f.MinMarketCap > 0 {
		checks = append(checks, MinMarketCapCheck(f.MinMarketCap))
	}
	if len(checks) > 0 {
		filtered, err := FilterProfiles(ctx, r.profiles, symbols, limit, r.logger, checks...)
		if err != nil {
			return err
		}
		for t, reason := range filtered.Excluded {
			u.Excluded[t] = reason
		}
		symbols = filtered.Kept
	}

	if len(symbols) > limit {
		symbols = symbols[:limit]
	}
	u.Symbols = symbols
	return nil
}

// attempt fetches one source with retries and validates the size of its answer.
// An out-of-band answer is rejected without retrying.
func (r *Resolver) attempt(ctx context.Context, src contracts.UniverseSource) (symbols []string, rec contracts.SourceAttempt) {
	kind := src.Kind()
	band := r.bands.For(kind)
	rec = contracts.SourceAttempt{Source: kind}

	start := time.Now()
	defer func() { rec.Duration = time.Since(start) }()

	if cached, ok := r.cached(ctx, kind); ok {
		rec.Count = len(cached)
		if band.Contains(len(cached)) {
			rec.Outcome = contracts.OutcomeAccepted
			r.emit(progress.Event{Type: progress.ResolveAccepted, Source: kind, Count: len(cached),
				Message: fmt.Sprintf("%s: %d symbols (cached)", kind, len(cached))})
			return cached, rec
		}
	}

	var lastErr error
	delay := r.backoff

	for try := 1; try <= r.attempts; try++ {
		rec.Tries = try
		r.emit(progress.Event{Type: progress.ResolveAttempt, Source: kind, Index: try, Total: r.attempts,
			Message: fmt.Sprintf("Fetching %s (attempt %d/%d)", kind, try, r.attempts)})

		raw, err := src.Fetch(ctx)
		if err == nil {
			symbols = contracts.DedupTickers(raw)
			rec.Count = len(symbols)

			if !band.Contains(len(symbols)) {
				rec.Outcome = contracts.OutcomeRejected
				rec.Error = fmt.Sprintf("%d symbols outside validity band %s", len(symbols), band)
				r.emit(progress.Event{Type: progress.ResolveRejected, Source: kind, Count: len(symbols),
					Message: fmt.Sprintf("%s rejected: %s", kind, rec.Error)})
				return nil, rec
			}

			rec.Outcome = contracts.OutcomeAccepted
			r.store(ctx, kind, symbols)
			r.emit(progress.Event{Type: progress.ResolveAccepted, Source: kind, Count: len(symbols),
				Message: fmt.Sprintf("%s: %d symbols", kind, len(symbols))})
			return symbols, rec
		}

		lastErr = err
		if ctx.Err() != nil || try == r.attempts {
			break
		}

		r.logger.WithFields(map[string]interface{}{
			"source":  string(kind),
			"attempt": try,
			"delay":   delay.String(),
			"error":   err.Error(),
		}).Debug("Retrying universe source")

		if !sleep(ctx, delay) {
			break
		}
		delay *= 2
	}

	if ctx.Err() != nil {
		lastErr = ctx.Err()
	}
	rec.Outcome = contracts.OutcomeFailed
	rec.Error = lastErr.Error()
	r.emit(progress.Event{Type: progress.ResolveFailed, Source: kind, Index: rec.Tries, Total: r.attempts,
		Message: fmt.Sprintf("%s failed after %d attempt(s): %v", kind, rec.Tries, lastErr)})
	return nil, rec
}

func (r *Resolver) cached(ctx context.Context, kind contracts.SourceKind) ([]string, bool) {
	if r.cache == nil || kind == contracts.SourceHardcoded {
		return nil, false
	}
	var symbols []string
	hit, err := r.cache.Get(ctx, redis.UniverseKey(string(kind), r.now()), &symbols)
	if err != nil {
		r.logger.WithError(err).Warn("Universe cache read failed")
		return nil, false
	}
	return symbols, hit
}

func (r *Resolver) store(ctx context.Context, kind contracts.SourceKind, symbols []string) {
	if r.cache == nil || kind == contracts.SourceHardcoded {
		return
	}
	if err := r.cache.Set(ctx, redis.UniverseKey(string(kind), r.now()), symbols, redis.TTLUniverse); err != nil {
		r.logger.WithError(err).Warn("Universe cache write failed")
	}
}

func (r *Resolver) emit(e progress.Event) {
	e.Stage = contracts.StageUniverse
	e.Time = r.now()
	r.observer.Notify(e)
}

// sleep waits d or until ctx is done; false means cancelled
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func summarize(attempts []contracts.SourceAttempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Source, a.Outcome))
	}
	return strings.Join(parts, ", ")
}
