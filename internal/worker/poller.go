package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainErrors "omsrelay/internal/domain/errors"
	"omsrelay/internal/domain/model"
	"omsrelay/internal/telemetry"
)

// RelayFacade exposes the subset of application functionality required by the poller.
type RelayFacade interface {
	PendingNotifications(ctx context.Context) ([]model.FeedNotification, error)
	FetchOrder(ctx context.Context, orderID string, hint model.Status) (*model.Order, error)
	RouteOrder(ctx context.Context, order *model.Order) error
	Acknowledge(ctx context.Context, commitToken string) error
	SyntheticOrders(n int) []*model.Order
}

// maxBackoffFactor caps the delay growth for consecutive failed cycles.
const maxBackoffFactor = 8

// Poller runs the poll-process-acknowledge loop on a single-shot timer
// that re-arms only after the current cycle completes, so two cycles
// are never in flight.
type Poller struct {
	facade         RelayFacade
	telemetry      telemetry.Tracker
	interval       time.Duration
	synthetic      bool
	syntheticBatch int
	logger         *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPoller constructs the feed poller.
func NewPoller(facade RelayFacade, tracker telemetry.Tracker, interval time.Duration, synthetic bool, syntheticBatch int, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	if syntheticBatch <= 0 {
		syntheticBatch = 1
	}
	return &Poller{
		facade:         facade,
		telemetry:      tracker,
		interval:       interval,
		synthetic:      synthetic,
		syntheticBatch: syntheticBatch,
		logger:         logger,
	}
}

// Start launches the polling loop. The first cycle fires immediately.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.run(runCtx)
}

// Stop cancels the loop and waits for an in-flight cycle to unwind.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := p.cycle(ctx); err != nil {
			failures++
		} else {
			failures = 0
		}

		// Re-arm only after the cycle has fully completed.
		timer.Reset(p.nextDelay(failures))
	}
}

// nextDelay doubles the interval per consecutive failed cycle, capped
// at maxBackoffFactor times the configured interval.
func (p *Poller) nextDelay(failures int) time.Duration {
	factor := 1
	for i := 0; i < failures && factor < maxBackoffFactor; i++ {
		factor *= 2
	}
	return p.interval * time.Duration(factor)
}

func (p *Poller) cycle(ctx context.Context) error {
	start := time.Now()
	outcome := "success"
	defer func() {
		p.telemetry.CycleObserved(outcome, time.Since(start))
	}()

	if p.synthetic {
		p.syntheticCycle(ctx)
		return nil
	}

	notifications, err := p.facade.PendingNotifications(ctx)
	if err != nil {
		p.telemetry.TrackException(domainErrors.StageFeed, err)
		outcome = "failure"
		return err
	}

	p.telemetry.FeedRetrieved(len(notifications))

	for _, notification := range notifications {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		p.process(ctx, notification)
	}
	return nil
}

// process handles one notification: fetch, route, acknowledge, in that
// order. Acknowledge runs only after successful routing; a crash
// between persist and acknowledge means upstream redelivers on the
// next cycle. Any failure drops the notification from this cycle only.
func (p *Poller) process(ctx context.Context, notification model.FeedNotification) {
	order, err := p.facade.FetchOrder(ctx, notification.OrderID, model.Status(notification.Status))
	if err != nil {
		p.telemetry.TrackException(domainErrors.StageOrder, err)
		return
	}

	if err := p.facade.RouteOrder(ctx, order); err != nil {
		// Router already reported the failing stage.
		p.logger.Warn("order not routed", slog.String("order", notification.OrderID), slog.String("error", err.Error()))
		return
	}

	if err := p.facade.Acknowledge(ctx, notification.CommitToken); err != nil {
		p.telemetry.TrackException(domainErrors.StageAcknowledge, err)
	}
}

func (p *Poller) syntheticCycle(ctx context.Context) {
	orders := p.facade.SyntheticOrders(p.syntheticBatch)
	p.telemetry.FeedRetrieved(len(orders))
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := p.facade.RouteOrder(ctx, order); err != nil {
			p.logger.Warn("synthetic order not routed", slog.String("order", order.OrderID), slog.String("error", err.Error()))
		}
	}
}
