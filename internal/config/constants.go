package config

// Default configuration file paths
const (
	DefaultCatalogPath = "configs/catalog.json"
	DefaultRulesPath   = "configs/rules.json"
)

// Environment names with stricter validation requirements
const (
	EnvProduction = "production"
	EnvDev        = "dev"
)
