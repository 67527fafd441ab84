package restart

import (
	"context"
	"sync"
	"time"

	"restartctl/internal/logging"
)

// DefaultPollInterval is how often an open set is silently re-checked.
const DefaultPollInterval = 30 * time.Second

// Poller periodically invokes a silent refresh while a set is open. A
// coordinator owns exactly one Poller; Start cancels any previous loop
// before launching a new one. Stop only cancels, it does not join: the
// refresh callback may itself decide to stop the poller mid-tick.
type Poller struct {
	mu       sync.Mutex
	interval time.Duration
	refresh  func(ctx context.Context)
	log      logging.Logger
	cancel   context.CancelFunc
}

func NewPoller(interval time.Duration, refresh func(ctx context.Context), log logging.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Poller{
		interval: interval,
		refresh:  refresh,
		log:      log,
	}
}

// Start launches the polling loop, replacing any running one.
func (p *Poller) Start() {
	if p == nil || p.refresh == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()

	p.log.Debug("status poller started", logging.F("interval", p.interval))
	go p.loop(ctx)
}

// Stop cancels the loop. Idempotent.
func (p *Poller) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
		p.log.Debug("status poller stopped")
	}
	p.mu.Unlock()
}

func (p *Poller) Running() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}
