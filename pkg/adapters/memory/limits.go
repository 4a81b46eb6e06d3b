package memory

import (
	"context"
	"sync"

	"github.com/nexsupply/nexi/pkg/analysis"
)

// LimitLog implements analysis.LimitEventSink by keeping events in memory.
type LimitLog struct {
	mu     sync.Mutex
	events []analysis.LimitEvent
}

// NewLimitLog creates an empty log.
func NewLimitLog() *LimitLog {
	return &LimitLog{}
}

// RecordLimitHit appends the event.
func (l *LimitLog) RecordLimitHit(ctx context.Context, event analysis.LimitEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a copy of the recorded events in arrival order.
func (l *LimitLog) Events() []analysis.LimitEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]analysis.LimitEvent(nil), l.events...)
}
