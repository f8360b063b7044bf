package scheduler

import (
	"context"
	"time"

	"github.com/osheron/meritum/internal/logger"
	"github.com/osheron/meritum/internal/metrics"
	"github.com/osheron/meritum/internal/queue"
	"github.com/osheron/meritum/internal/repository"
)

// Log messages
const (
	LogMsgRetentionPurge       = "Event retention purge completed"
	LogMsgRetentionPurgeFailed = "Event retention purge failed"
)

// RetentionJob deletes events older than the retention window and keeps the
// purge counter current.
type RetentionJob struct {
	events    repository.Event
	retention time.Duration
}

// NewRetentionJob creates a retention purge job. Retention must be positive.
func NewRetentionJob(events repository.Event, retention time.Duration) *RetentionJob {
	return &RetentionJob{events: events, retention: retention}
}

// Process deletes events that fell out of the retention window.
func (j *RetentionJob) Process(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.retention)
	purged, err := j.events.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgRetentionPurgeFailed, "error", err)
		return err
	}
	if purged > 0 {
		metrics.EventsPurged.Add(float64(purged))
		logger.FromContext(ctx).Info(LogMsgRetentionPurge, "purged", purged, "cutoff", cutoff)
	}
	return nil
}

// QueueDepthJob refreshes the queue depth gauge.
type QueueDepthJob struct {
	queue *queue.Queue
}

// NewQueueDepthJob creates a gauge refresh job over the ingestion queue.
func NewQueueDepthJob(q *queue.Queue) *QueueDepthJob {
	return &QueueDepthJob{queue: q}
}

// Process publishes the current queue depth.
func (j *QueueDepthJob) Process(_ context.Context) error {
	metrics.QueueDepth.Set(float64(j.queue.Len()))
	return nil
}
