package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/osheron/meritum/internal/testing/leaktest"
)

// startPostgres launches a disposable Postgres with the schema migrated and
// returns its connection string. Skipped in -short runs.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("container terminate failed: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(ctx, connStr))
	return connStr
}

func TestNewPoolRejectsMalformedURL(t *testing.T) {
	_, err := NewPool("://not-a-url", 5, time.Minute, 5*time.Minute)
	require.Error(t, err)
}

func TestPoolServesMigratedSchema(t *testing.T) {
	connStr := startPostgres(t)

	pool, err := NewPool(connStr, 5, time.Minute, 5*time.Minute)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	_, err = pool.Exec(ctx,
		`INSERT INTO wallets (user_id, category_id, balance) VALUES ($1, $2, $3)`,
		"alice", "coins", int64(120))
	require.NoError(t, err)

	var balance int64
	err = pool.QueryRow(ctx,
		`SELECT balance FROM wallets WHERE user_id = $1 AND category_id = $2`,
		"alice", "coins").Scan(&balance)
	require.NoError(t, err)
	assert.Equal(t, int64(120), balance)
}

func TestPoolReleasesConnectionsUnderLoad(t *testing.T) {
	connStr := startPostgres(t)

	pool, err := NewPool(connStr, 8, time.Minute, 5*time.Minute)
	require.NoError(t, err)

	checker := leaktest.NewChecker(t)

	var wg sync.WaitGroup
	for i := 0; i < 24; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ctx := context.Background()
			var got int
			if err := pool.QueryRow(ctx, `SELECT $1::int`, n).Scan(&got); err != nil {
				t.Errorf("query %d failed: %v", n, err)
				return
			}
			if got != n {
				t.Errorf("query %d returned %d", n, got)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(0), pool.Stat().AcquiredConns(), "all connections returned to the pool")

	pool.Close()
	// The pool's health-check goroutines must exit with it.
	checker.Check(2)
}

func TestPoolBoundsConcurrentAcquires(t *testing.T) {
	connStr := startPostgres(t)

	const maxConns = 2
	pool, err := NewPool(connStr, maxConns, time.Minute, 5*time.Minute)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	first, err := pool.Acquire(ctx)
	require.NoError(t, err)
	second, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(maxConns), pool.Stat().AcquiredConns())

	// A third acquire has to wait for a release.
	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(waitCtx)
	require.Error(t, err, "acquire beyond the cap times out")

	first.Release()
	third, err := pool.Acquire(ctx)
	require.NoError(t, err)
	third.Release()
	second.Release()
}
