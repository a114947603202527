package watch

import (
	"sync"
	"time"

	"github.com/Iron-Ham/prtasks/internal/logging"
)

// DefaultPollInterval is how often a remote page is re-read.
const DefaultPollInterval = 30 * time.Second

// Poller calls back on a fixed interval. It stands in for change
// notification on pages that can only be re-fetched.
type Poller struct {
	interval time.Duration
	logger   *logging.Logger

	mu      sync.RWMutex
	onTick  func()
	started bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewPoller creates a Poller. A non-positive interval uses
// DefaultPollInterval.
func NewPoller(interval time.Duration, logger *logging.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Poller{
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// SetCallback sets the function called on every tick.
func (p *Poller) SetCallback(cb func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onTick = cb
}

// Start begins polling.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	go p.loop()
}

// Stop ends polling and waits for a running callback to return. It is safe
// to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })

	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()
	if started {
		<-p.doneCh
	}
}

func (p *Poller) loop() {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.mu.RLock()
			cb := p.onTick
			p.mu.RUnlock()

			p.logger.Debug("poll tick")
			if cb != nil {
				cb()
			}
		}
	}
}
