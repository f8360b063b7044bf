package catalog

// Log messages
const (
	LogMsgCatalogLoaded    = "Catalog loaded"
	LogMsgSeedRulesLoaded  = "Seed rules loaded"
	LogMsgSeedRuleSkipped  = "Seed rule already exists, skipping"
)

// Error messages
const (
	ErrMsgReadConfigFileFailed = "failed to read config file: %w"
	ErrMsgParseConfigFailed    = "failed to parse config file: %w"
	ErrMsgConfigNil            = "config is nil"
)
