package client

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

// PollInterval is the fixed spacing between execution polls for a flow.
const PollInterval = 10 * time.Second

// ExecutionPoller periodically fetches a flow's execution history and
// keeps the latest successful result. Ticks are skipped while a previous
// request is still pending, so a slow server never stacks requests; a
// failed tick keeps the previous result and never delays the next tick.
type ExecutionPoller struct {
	client   *Client
	flowID   string
	interval time.Duration
	logger   *slog.Logger

	inFlight atomic.Bool

	mu     sync.RWMutex
	latest []*models.Execution

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// PollerOption configures an ExecutionPoller.
type PollerOption func(*ExecutionPoller)

// WithInterval overrides the poll interval. Intended for tests.
func WithInterval(d time.Duration) PollerOption {
	return func(p *ExecutionPoller) { p.interval = d }
}

// NewExecutionPoller creates a poller for one flow. Call Start to begin
// polling and Stop to halt it.
func NewExecutionPoller(c *Client, flowID string, opts ...PollerOption) *ExecutionPoller {
	p := &ExecutionPoller{
		client:   c,
		flowID:   flowID,
		interval: PollInterval,
		logger:   c.logger.With("module", "poller", "flow_id", flowID),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start begins polling. The first poll happens immediately; subsequent
// polls fire on the interval until Stop is called or ctx is cancelled.
func (p *ExecutionPoller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	go p.run(ctx)
}

func (p *ExecutionPoller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *ExecutionPoller) poll(ctx context.Context) {
	// Skip the tick if the previous request has not finished.
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.DebugContext(ctx, "Previous poll still in flight, skipping tick")

		return
	}

	go func() {
		defer p.inFlight.Store(false)

		executions, err := p.client.GetExecutions(ctx, p.flowID)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.WarnContext(ctx, "Execution poll failed", "error", err)
			}

			return
		}

		p.mu.Lock()
		p.latest = executions
		p.mu.Unlock()
	}()
}

// Latest returns the most recent successful poll result, or nil if no
// poll has succeeded yet.
func (p *ExecutionPoller) Latest() []*models.Execution {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.latest
}

// Stop halts polling. Safe to call more than once; an in-flight request
// is abandoned via context cancellation.
func (p *ExecutionPoller) Stop() {
	p.once.Do(func() {
		if p.cancel == nil {
			return
		}

		p.cancel()
		<-p.done
	})
}
