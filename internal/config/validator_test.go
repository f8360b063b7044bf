package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateForEnvironment_ProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{Environment: EnvProduction}

	err := cfg.ValidateForEnvironment()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidateForEnvironment_ProductionComplete(t *testing.T) {
	cfg := &Config{
		Environment: EnvProduction,
		APIKey:      "a-real-key",
		DatabaseURL: "postgres://localhost/meritum",
	}
	require.NoError(t, cfg.ValidateForEnvironment())
}

func TestValidateForEnvironment_DevAllowsDefaults(t *testing.T) {
	cfg := &Config{Environment: EnvDev}
	require.NoError(t, cfg.ValidateForEnvironment())
}

func TestValidateWithWarnings_InsecureDefaults(t *testing.T) {
	cfg := &Config{
		Environment: EnvDev,
		APIKey:      "generate_with_openssl_rand_hex_32",
		DatabaseURL: "postgres://localhost/meritum",
	}

	warnings, err := cfg.ValidateWithWarnings()
	require.NoError(t, err, "Should not error even with warnings")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "API_KEY")
}

func TestValidateWithWarnings_MemoryBackend(t *testing.T) {
	cfg := &Config{Environment: EnvDev}

	warnings, err := cfg.ValidateWithWarnings()
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
}
