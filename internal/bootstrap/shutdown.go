package bootstrap

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osheron/meritum/internal/processor"
	"github.com/osheron/meritum/internal/scheduler"
	"github.com/osheron/meritum/internal/server"
	"github.com/osheron/meritum/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server     *server.Server
	Processor  *processor.Processor
	Scheduler  *scheduler.Scheduler
	WorkerPool *worker.Pool
	DBPool     *pgxpool.Pool
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down in dependency order:
// 1. HTTP server (stop accepting new requests)
// 2. Processor (drain in-flight events within its grace period)
// 3. Scheduler and worker pool (stop background jobs)
// 4. Database pool (close connections)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.Processor != nil {
		components.Processor.Stop()
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}
	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	if components.DBPool != nil {
		components.DBPool.Close()
	}

	slog.Info(LogMsgServerStopped)
}
