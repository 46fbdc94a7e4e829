package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		AlgorithmName:       "OrderBot_BaseStock",
		Version:             "v1.0.0",
		Port:                "8080",
		Echelons:            4,
		OrderCeiling:        100,
		MaxSessions:         64,
		SafetyStockFactor:   1.5,
		TargetInventoryDays: 14,
		SmoothingFactor:     0.3,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"algorithm name too short", func(c *Config) { c.AlgorithmName = "ab" }},
		{"algorithm name bad chars", func(c *Config) { c.AlgorithmName = "order bot!" }},
		{"version without v prefix", func(c *Config) { c.Version = "1.0.0" }},
		{"zero echelons", func(c *Config) { c.Echelons = 0 }},
		{"non-positive ceiling", func(c *Config) { c.OrderCeiling = 0 }},
		{"zero max sessions", func(c *Config) { c.MaxSessions = 0 }},
		{"negative safety factor", func(c *Config) { c.SafetyStockFactor = -1 }},
		{"zero safety factor", func(c *Config) { c.SafetyStockFactor = 0 }},
		{"zero target days", func(c *Config) { c.TargetInventoryDays = 0 }},
		{"smoothing factor zero", func(c *Config) { c.SmoothingFactor = 0 }},
		{"smoothing factor above one", func(c *Config) { c.SmoothingFactor = 1.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "OrderBot_BaseStock", cfg.AlgorithmName)
	assert.Equal(t, 4, cfg.Echelons)
	assert.Equal(t, 100.0, cfg.OrderCeiling)
	assert.Equal(t, 0.3, cfg.SmoothingFactor)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("ORDERBOT_ECHELONS", "6")
	t.Setenv("ORDERBOT_ORDER_CEILING", "250")
	t.Setenv("ORDERBOT_ALGORITHM_NAME", "OrderBot_Test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Echelons)
	assert.Equal(t, 250.0, cfg.OrderCeiling)
	assert.Equal(t, "OrderBot_Test", cfg.AlgorithmName)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("ORDERBOT_SMOOTHING_FACTOR", "1.5")
	_, err := Load()
	assert.Error(t, err)
}
