// internal/cache/poller.go
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval matches the dashboard refresh for command
// history and latest values, which change through external broker and
// device activity rather than client mutations.
const DefaultPollInterval = 5 * time.Second

// Poller re-runs fetches on a fixed interval and hands each result to
// a consumer callback. Fetches for one watch run sequentially, so a
// tick never overlaps a still-in-flight predecessor; concurrent
// watches of the same cache key coalesce through the cache's
// singleflight group.
type Poller struct {
	interval time.Duration
	logger   *logrus.Logger

	mu      sync.Mutex
	stopped bool
	cancel  []context.CancelFunc
	wg      sync.WaitGroup
}

// NewPoller creates a poller; interval <= 0 uses DefaultPollInterval.
func NewPoller(interval time.Duration, logger *logrus.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Poller{interval: interval, logger: logger}
}

// Watch fetches immediately and then on every tick until ctx ends or
// the poller stops. Results arriving after stop are discarded rather
// than delivered; they have lost relevance, they are not failures.
func Watch[T any](p *Poller, ctx context.Context, name string, fetch func(context.Context) (T, error), deliver func(T, error)) {
	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		cancel()
		return
	}
	p.cancel = append(p.cancel, cancel)
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			v, err := fetch(ctx)
			if ctx.Err() != nil || p.isStopped() {
				return
			}
			if err != nil {
				p.logger.WithField("watch", name).WithError(err).Debug("poll fetch failed")
			}
			deliver(v, err)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (p *Poller) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Stop cancels every watch and waits for their goroutines to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	cancels := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	p.wg.Wait()
}
