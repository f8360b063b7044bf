package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osheron/meritum/internal/database/memory"
	"github.com/osheron/meritum/internal/domain"
	"github.com/osheron/meritum/internal/worker"
)

// MockJob is a simple job for testing
type MockJob struct {
	Done chan struct{}
}

func (m *MockJob) Process(ctx context.Context) error {
	select {
	case m.Done <- struct{}{}:
	default:
	}
	return nil
}

func TestSchedulerRunsJobsOnInterval(t *testing.T) {
	pool := worker.NewPool(1, 10)
	pool.Start()
	defer pool.Stop()

	sched := New(pool)
	defer sched.Stop()

	job := &MockJob{Done: make(chan struct{}, 10)}
	sched.Schedule(10*time.Millisecond, job)

	timeout := time.After(time.Second)
	runCount := 0
	for runCount < 2 {
		select {
		case <-job.Done:
			runCount++
		case <-timeout:
			t.Fatal("Timeout waiting for job execution")
		}
	}

	assert.GreaterOrEqual(t, runCount, 2)
}

func TestRetentionJobPurgesOldEvents(t *testing.T) {
	ctx := context.Background()
	events := memory.NewEventRepository()

	old := domain.Event{
		ID: "old", EventType: "user.login", UserID: "alice",
		OccurredAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	fresh := domain.Event{
		ID: "fresh", EventType: "user.login", UserID: "alice",
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, events.StoreEvent(ctx, old))
	require.NoError(t, events.StoreEvent(ctx, fresh))

	job := NewRetentionJob(events, 24*time.Hour)
	require.NoError(t, job.Process(ctx))

	_, err := events.GetEventByID(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = events.GetEventByID(ctx, "fresh")
	assert.NoError(t, err)
}
