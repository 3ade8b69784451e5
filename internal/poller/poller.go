package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/statusboard/internal/board"
	"github.com/angeloszaimis/statusboard/internal/metrics"
	"github.com/angeloszaimis/statusboard/internal/statusclient"
)

// LastCheckLayout formats the wall clock time shown after a successful check.
const LastCheckLayout = "15:04:05"

// Trigger names what started a refresh cycle.
type Trigger string

const (
	TriggerStartup Trigger = "startup"
	TriggerManual  Trigger = "manual"
	TriggerTimer   Trigger = "timer"
)

// Outcome is how a refresh cycle ended.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	OutcomeDiscarded
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Renderer is the view state a refresh cycle writes to. *board.Board
// implements it.
type Renderer interface {
	Reset()
	Update(name string, accessible bool) bool
	SetAll(state board.State)
	SetTrigger(disabled bool, label string)
	SetLastCheck(value string)
}

// EventSink receives metric events. *metrics.Collector implements it.
type EventSink interface {
	Emit(event metrics.MetricEvent)
}

// Config is the runtime configuration of a Poller.
type Config struct {
	Interval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Poller struct {
	fetcher  statusclient.Fetcher
	renderer Renderer
	events   EventSink
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	// cycleMutex serializes the start and the render phase of cycles so the
	// generation check and the board writes happen together.
	cycleMutex sync.Mutex
	generation uint64

	// ctx is installed by Run; Trigger refuses cycles until then so every
	// background cycle can be cancelled on shutdown.
	ctxMutex sync.RWMutex
	ctx      context.Context
	stopped  bool

	inflight sync.WaitGroup
}

// New creates a poller. events may be nil.
func New(cfg Config, fetcher statusclient.Fetcher, renderer Renderer, events EventSink, logger *slog.Logger) (*Poller, error) {
	if fetcher == nil {
		return nil, errors.New("poller: fetcher required")
	}
	if renderer == nil {
		return nil, errors.New("poller: renderer required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Poller{
		fetcher:  fetcher,
		renderer: renderer,
		events:   events,
		logger:   logger,
		interval: cfg.Interval,
		now:      now,
	}, nil
}

// Interval returns the automatic refresh interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run refreshes once immediately and then on every tick until ctx is
// cancelled. Cycles run in their own goroutines so a slow request never
// delays the ticker. Run returns after the ticker is stopped and all cycles
// it started have finished.
func (p *Poller) Run(ctx context.Context) {
	p.ctxMutex.Lock()
	p.ctx = ctx
	p.ctxMutex.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Poller started", slog.Duration("interval", p.interval))

	p.Trigger(TriggerStartup)

	for {
		select {
		case <-ctx.Done():
			p.ctxMutex.Lock()
			p.stopped = true
			p.ctxMutex.Unlock()

			p.inflight.Wait()
			p.logger.Info("Poller stopped")
			return

		case <-ticker.C:
			p.Trigger(TriggerTimer)
		}
	}
}

// Trigger starts a refresh cycle in the background and returns at once.
// A cycle already in flight is left running. It reports false when Run has
// not started yet or the poller has been stopped.
func (p *Poller) Trigger(trigger Trigger) bool {
	p.ctxMutex.RLock()
	ctx := p.ctx
	if ctx == nil || p.stopped || ctx.Err() != nil {
		p.ctxMutex.RUnlock()
		return false
	}
	p.inflight.Add(1)
	p.ctxMutex.RUnlock()

	go func() {
		defer p.inflight.Done()
		p.RefreshAll(ctx, trigger)
	}()

	return true
}

// Wait blocks until every cycle started through Trigger has finished.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

// RefreshAll runs one refresh cycle to completion. Fetch errors are logged
// and rendered, never returned.
func (p *Poller) RefreshAll(ctx context.Context, trigger Trigger) Outcome {
	log := p.logger.With(
		slog.String("cycle", uuid.NewString()),
		slog.String("trigger", string(trigger)),
	)

	gen := p.begin()
	p.emit(metrics.MetricEvent{Type: metrics.EventRefreshStarted, Trigger: string(trigger)})
	log.Debug("Refresh started", slog.Uint64("generation", gen))

	start := p.now()
	res, err := p.fetcher.Fetch(ctx)
	elapsed := p.now().Sub(start)

	p.cycleMutex.Lock()
	defer p.cycleMutex.Unlock()

	if gen != p.generation {
		p.emit(metrics.MetricEvent{Type: metrics.EventRefreshDiscarded, Trigger: string(trigger)})
		log.Debug("Discarding stale refresh result",
			slog.Uint64("generation", gen),
			slog.Uint64("latest", p.generation))
		return OutcomeDiscarded
	}

	defer p.renderer.SetTrigger(false, board.LabelIdle)

	if err != nil && ctx.Err() != nil {
		log.Info("Refresh cancelled", slog.Any("err", err))
		return OutcomeCancelled
	}

	if err != nil {
		p.renderer.SetAll(board.StateError)
		p.emit(metrics.MetricEvent{Type: metrics.EventRefreshFailed, Trigger: string(trigger), Duration: elapsed})
		log.Error("Error checking connectivity", slog.Any("err", err))
		return OutcomeFailed
	}

	var online, offline, ignored int
	for _, name := range res.Results.Names() {
		accessible := res.Results[name].Accessible
		if !p.renderer.Update(name, accessible) {
			ignored++
			continue
		}

		if accessible {
			online++
		} else {
			offline++
		}
		p.emit(metrics.MetricEvent{Type: metrics.EventServiceStatus, Service: name, Accessible: accessible})
	}

	checkedAt := p.now()
	p.renderer.SetLastCheck(checkedAt.Local().Format(LastCheckLayout))
	p.emit(metrics.MetricEvent{
		Type:      metrics.EventRefreshSucceeded,
		Timestamp: checkedAt,
		Trigger:   string(trigger),
		Duration:  elapsed,
	})

	attrs := []any{
		slog.Int("online", online),
		slog.Int("offline", offline),
		slog.Int("ignored", ignored),
		slog.Bool("local", res.IsLocal),
		slog.Duration("took", elapsed),
	}
	if serverTime := res.CheckedAt(); !serverTime.IsZero() {
		attrs = append(attrs, slog.Time("server_time", serverTime))
	}
	log.Info("Refresh completed", attrs...)

	return OutcomeSucceeded
}

// begin claims the next generation and puts the view into its busy state.
func (p *Poller) begin() uint64 {
	p.cycleMutex.Lock()
	defer p.cycleMutex.Unlock()

	p.generation++
	p.renderer.SetTrigger(true, board.LabelBusy)
	p.renderer.Reset()

	return p.generation
}

func (p *Poller) emit(event metrics.MetricEvent) {
	if p.events == nil {
		return
	}
	p.events.Emit(event)
}
