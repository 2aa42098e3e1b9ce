package listaccess

import (
	"context"
	"sync"
	"time"
)

// Searcher debounces rapidly changing query input. Each Input resets the
// debounce window; when the window elapses without newer input, run is
// invoked once with the latest query. A newer input cancels both the
// pending timer and the context of a run already dispatched, so a stale
// fetch can be abandoned by anything downstream that honors the context.
type Searcher struct {
	delay time.Duration
	run   func(ctx context.Context, query string)

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewSearcher creates a debounced search scheduler.
func NewSearcher(delay time.Duration, run func(ctx context.Context, query string)) *Searcher {
	return &Searcher{delay: delay, run: run}
}

// Input schedules run for query after the debounce window, superseding any
// pending or in-flight run.
func (s *Searcher) Input(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(ctx, query)
	})
}

// Stop cancels any pending or in-flight run.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
