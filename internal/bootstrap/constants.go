package bootstrap

// Log messages for application startup and shutdown
const (
	LogMsgUsingMemoryRepositories   = "Using in-memory repositories"
	LogMsgUsingPostgresRepositories = "Using postgres repositories"
	LogMsgMigrationsApplied         = "Database migrations applied"
	LogMsgShuttingDownServer        = "Shutting down server..."
	LogMsgServerForcedShutdown      = "Server forced to shutdown"
	LogMsgServerStopped             = "Server stopped"
	LogMsgRewardGranted             = "Reward granted"
	LogMsgRewardDenied              = "Reward denied"
	LogMsgLevelChanged              = "Level changed"
	LogMsgWalletPosted              = "Wallet posting recorded"
)

// Database pool sizing
const (
	DBMaxConnections = 25
	DBMaxIdleMinutes = 5
	DBMaxLifeMinutes = 30
)
