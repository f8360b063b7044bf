// Package processor drains the ingestion queue in the background, persisting
// each event and running it through the rule engine and reward applier.
package processor

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/metrics"
	"github.com/osheron/meritum/internal/queue"
	"github.com/osheron/meritum/internal/repository"
)

// Engine evaluates an event against the active rules.
type Engine interface {
	Evaluate(ctx context.Context, event domain.Event) ([]domain.RewardInstruction, error)
}

// Applier applies reward instructions to user state.
type Applier interface {
	Apply(ctx context.Context, instructions []domain.RewardInstruction) error
}

// Processor is the long-running worker draining the event queue. Events are
// routed to shard workers by userId hash so events of the same user are
// processed in enqueue order; no ordering is promised across users.
type Processor struct {
	queue       *queue.Queue
	events      repository.Event
	engine      Engine
	applier     Applier
	shards      int
	gracePeriod time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	processed atomic.Int64
	inFlight  atomic.Int64
}

// Option configures a Processor.
type Option func(*Processor)

// WithShards sets the number of shard workers (default DefaultShards).
func WithShards(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.shards = n
		}
	}
}

// WithGracePeriod bounds how long Stop waits for in-flight events.
func WithGracePeriod(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.gracePeriod = d
		}
	}
}

// New creates a processor over the given queue and collaborators.
func New(q *queue.Queue, events repository.Event, engine Engine, applier Applier, opts ...Option) *Processor {
	p := &Processor{
		queue:       q,
		events:      events,
		engine:      engine,
		applier:     applier,
		shards:      DefaultShards,
		gracePeriod: DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins draining in the background. Double-start is a no-op with a
// warning.
func (p *Processor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		logger.FromContext(ctx).Warn(LogMsgAlreadyRunning)
		return
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(runCtx, p.done)
	logger.FromContext(ctx).Info(LogMsgStarted, "shards", p.shards)
}

// Stop signals cancellation and waits for the current in-flight events to
// finish, bounded by the grace period. Remaining queued events are left for a
// future start.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(p.gracePeriod):
		logger.FromContext(context.Background()).Warn(LogMsgStopTimeout, "grace_period", p.gracePeriod)
	}
}

// ProcessedCount returns the monotonic count of fully processed events.
func (p *Processor) ProcessedCount() int64 {
	return p.processed.Load()
}

// IsProcessing reports whether any event is currently in flight.
func (p *Processor) IsProcessing() bool {
	return p.inFlight.Load() > 0
}

// run dispatches dequeued events to per-shard FIFO channels.
func (p *Processor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	shardChans := make([]chan domain.Event, p.shards)
	var wg sync.WaitGroup
	for i := range shardChans {
		shardChans[i] = make(chan domain.Event, shardBuffer)
		wg.Add(1)
		go func(events <-chan domain.Event) {
			defer wg.Done()
			for event := range events {
				p.processOne(ctx, event)
			}
		}(shardChans[i])
	}

	for {
		event, ok := p.queue.Dequeue(ctx)
		if !ok {
			break
		}
		shard := shardFor(event.UserID, p.shards)
		select {
		case shardChans[shard] <- event:
		case <-ctx.Done():
			// Shard backlog is abandoned with the rest of the queue.
		}
		if ctx.Err() != nil {
			break
		}
	}

	for _, ch := range shardChans {
		close(ch)
	}
	wg.Wait()
}

// processOne runs the store -> evaluate -> apply pipeline for one event.
// Failures are logged and the processor continues; the event is not
// redelivered by this layer.
func (p *Processor) processOne(ctx context.Context, event domain.Event) {
	p.inFlight.Add(1)
	defer p.inFlight.Add(-1)

	log := logger.FromContext(ctx).With("event_id", event.ID, "event_type", event.EventType, "user_id", event.UserID)

	if err := p.events.StoreEvent(ctx, event); err != nil {
		// Storage failure is fatal for this event only: without stored
		// history the rule engine would evaluate against a gap.
		log.Error(LogMsgStoreFailed, "error", err)
		metrics.EventsFailed.WithLabelValues(metrics.PhaseStore).Inc()
		return
	}

	instructions, err := p.engine.Evaluate(ctx, event)
	if err != nil {
		log.Error(LogMsgEvaluateFailed, "error", err)
		metrics.EventsFailed.WithLabelValues(metrics.PhaseEvaluate).Inc()
		return
	}

	if len(instructions) > 0 {
		if err := p.applier.Apply(ctx, instructions); err != nil {
			log.Error(LogMsgApplyFailed, "error", err)
			metrics.EventsFailed.WithLabelValues(metrics.PhaseApply).Inc()
			return
		}
	}

	p.processed.Add(1)
	metrics.EventsProcessed.Inc()
	log.Debug(LogMsgProcessed, "instructions", len(instructions))
}

func shardFor(userID string, shards int) int {
	if shards == 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(shards))
}
