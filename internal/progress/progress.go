// Package progress carries the events a run emits while it resolves a universe and screens it.
// Observers must be cheap; they run on the caller's goroutine.
package progress

import (
	"sync"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// EventType names a progress event
type EventType string

const (
	ResolveAttempt   EventType = "resolve.attempt"
	ResolveRejected  EventType = "resolve.rejected"
	ResolveFailed    EventType = "resolve.failed"
	ResolveAccepted  EventType = "resolve.accepted"
	ResolveHardcoded EventType = "resolve.fallback_hardcoded"

	ScreenStarted   EventType = "screen.started"
	ScreenTicker    EventType = "screen.ticker"
	ScreenSkipped   EventType = "screen.skipped"
	ScreenCompleted EventType = "screen.completed"
	ScreenStopped   EventType = "screen.stopped"
)

// Event is one progress notification
type Event struct {
	Type    EventType            `json:"type"`
	Stage   contracts.Stage      `json:"stage"`
	RunID   string               `json:"run_id,omitempty"`
	Source  contracts.SourceKind `json:"source,omitempty"`
	Ticker  string               `json:"ticker,omitempty"`
	Index   int                  `json:"index,omitempty"`
	Total   int                  `json:"total,omitempty"`
	Count   int                  `json:"count,omitempty"`
	Score   float64              `json:"score,omitempty"`
	Message string               `json:"message,omitempty"`
	Time    time.Time            `json:"time"`
}

// Observer receives progress events
type Observer interface {
	Notify(Event)
}

// Func adapts a function to Observer
type Func func(Event)

// Notify implements Observer
func (f Func) Notify(e Event) { f(e) }

// Nop drops every event
type Nop struct{}

// Notify implements Observer
func (Nop) Notify(Event) {}

// Multi fans an event out to several observers
type Multi []Observer

// Notify implements Observer
func (m Multi) Notify(e Event) {
	for _, o := range m {
		if o != nil {
			o.Notify(e)
		}
	}
}

// OrNop returns o, or Nop when o is nil
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop{}
	}
	return o
}

// LogObserver writes events through the structured logger
type LogObserver struct {
	logger *logger.Logger
}

// NewLogObserver creates a log-backed observer
func NewLogObserver(log *logger.Logger) *LogObserver {
	return &LogObserver{logger: log}
}

// Notify implements Observer
func (l *LogObserver) Notify(e Event) {
	fields := map[string]interface{}{
		"event": string(e.Type),
		"stage": string(e.Stage),
	}
	if e.Source != "" {
		fields["source"] = string(e.Source)
	}
	if e.Ticker != "" {
		fields["ticker"] = e.Ticker
	}
	if e.Total > 0 {
		fields["progress"] = e.Index
		fields["total"] = e.Total
	}
	if e.Count > 0 {
		fields["count"] = e.Count
	}

	log := l.logger.WithFields(fields)
	switch e.Type {
	case ResolveRejected, ResolveFailed, ResolveHardcoded, ScreenSkipped, ScreenStopped:
		log.Warn(e.Message)
	case ScreenTicker:
		log.Debug(e.Message)
	default:
		log.Info(e.Message)
	}
}

// Recorder keeps every event in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify implements Observer
func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order
func (r *Recorder) Types() []EventType {
	events := r.Events()
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}
