package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"orderbot-go/internal/policy"
)

// Config carries the server identity and the defaults applied to every
// session's agents. Values come from ORDERBOT_* environment variables, with
// an optional config file layered underneath (ORDERBOT_CONFIG).
type Config struct {
	AlgorithmName string
	Version       string
	Port          string

	Echelons     int
	OrderCeiling float64
	MaxSessions  int

	SafetyStockFactor   float64
	TargetInventoryDays int
	SmoothingFactor     float64
}

// Load reads configuration from the environment (and config file, if set)
// and validates it.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("algorithm_name", "OrderBot_BaseStock")
	v.SetDefault("version", "v1.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("echelons", 4)
	v.SetDefault("order_ceiling", 100.0)
	v.SetDefault("max_sessions", 64)
	v.SetDefault("safety_stock_factor", policy.DefaultSafetyStockFactor)
	v.SetDefault("target_inventory_days", policy.DefaultTargetInventoryDays)
	v.SetDefault("smoothing_factor", policy.DefaultSmoothingFactor)

	v.SetEnvPrefix("ORDERBOT")
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		AlgorithmName:       v.GetString("algorithm_name"),
		Version:             v.GetString("version"),
		Port:                v.GetString("port"),
		Echelons:            v.GetInt("echelons"),
		OrderCeiling:        v.GetFloat64("order_ceiling"),
		MaxSessions:         v.GetInt("max_sessions"),
		SafetyStockFactor:   v.GetFloat64("safety_stock_factor"),
		TargetInventoryDays: v.GetInt("target_inventory_days"),
		SmoothingFactor:     v.GetFloat64("smoothing_factor"),
	}
	return cfg, cfg.Validate()
}

var algorithmNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)

func (c Config) Validate() error {
	if !algorithmNameRe.MatchString(c.AlgorithmName) {
		return errors.New("algorithm_name must be 3-32 chars: letters/digits/underscores only")
	}
	if !strings.HasPrefix(c.Version, "v") {
		return errors.New("version should look like v1, v1.0 or v1.2.3")
	}
	if c.Echelons < 1 {
		return errors.New("echelons must be >= 1")
	}
	if c.OrderCeiling <= 0 {
		return errors.New("order_ceiling must be > 0")
	}
	if c.MaxSessions < 1 {
		return errors.New("max_sessions must be >= 1")
	}
	// The policy treats a zero tunable as "use the default", so 0 cannot
	// be accepted as an explicit setting.
	if c.SafetyStockFactor <= 0 {
		return errors.New("safety_stock_factor must be > 0")
	}
	if c.TargetInventoryDays < 1 {
		return errors.New("target_inventory_days must be >= 1")
	}
	if c.SmoothingFactor <= 0 || c.SmoothingFactor > 1 {
		return errors.New("smoothing_factor must be in (0, 1]")
	}
	return nil
}
