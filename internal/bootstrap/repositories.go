// Package bootstrap wires the application together: repository selection,
// notification subscribers, logging setup, and graceful shutdown.
package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osheron/meritum/internal/database"
	"github.com/osheron/meritum/internal/database/memory"
	"github.com/osheron/meritum/internal/database/postgres"
	"github.com/osheron/meritum/internal/repository"
)

// Repositories holds all repository implementations used by the application.
// This provides a centralized location for repository initialization and
// makes dependency injection clearer.
type Repositories struct {
	Events  repository.Event
	States  repository.UserState
	Rules   repository.Rule
	History repository.RewardHistory
	Wallets repository.Wallet
}

// InitializeMemoryRepositories creates the in-memory repository set.
func InitializeMemoryRepositories() *Repositories {
	slog.Info(LogMsgUsingMemoryRepositories)
	return &Repositories{
		Events:  memory.NewEventRepository(),
		States:  memory.NewUserStateRepository(),
		Rules:   memory.NewRuleRepository(),
		History: memory.NewRewardHistoryRepository(),
		Wallets: memory.NewWalletRepository(),
	}
}

// InitializePostgresRepositories applies pending migrations, opens the
// connection pool, and creates the postgres repository set.
func InitializePostgresRepositories(ctx context.Context, databaseURL string) (*Repositories, *pgxpool.Pool, error) {
	if err := database.RunMigrations(ctx, databaseURL); err != nil {
		return nil, nil, err
	}
	slog.Info(LogMsgMigrationsApplied)

	pool, err := database.NewPool(databaseURL, DBMaxConnections,
		DBMaxIdleMinutes*time.Minute, DBMaxLifeMinutes*time.Minute)
	if err != nil {
		return nil, nil, err
	}

	slog.Info(LogMsgUsingPostgresRepositories)
	return &Repositories{
		Events:  postgres.NewEventRepository(pool),
		States:  postgres.NewUserStateRepository(pool),
		Rules:   postgres.NewRuleRepository(pool),
		History: postgres.NewRewardHistoryRepository(pool),
		Wallets: postgres.NewWalletRepository(pool),
	}, pool, nil
}
