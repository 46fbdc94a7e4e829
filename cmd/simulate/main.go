// Command simulate runs one episode of the supply-chain simulator with an
// ordering agent at every echelon and prints a cost summary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"orderbot-go/internal/policy"
	"orderbot-go/internal/sim"
)

func main() {
	echelons := pflag.Int("echelons", 4, "chain length, retailer first")
	periods := pflag.Int("periods", 36, "episode horizon in periods")
	ceiling := pflag.Float64("ceiling", 100, "order ceiling of the action space")
	demand := pflag.String("demand", "step", "demand pattern: constant, step or random")
	level := pflag.Float64("level", 4, "base demand level")
	seed := pflag.Int64("seed", 1, "seed for random demand")
	smoothing := pflag.Float64("smoothing", policy.DefaultSmoothingFactor, "demand smoothing factor in (0, 1]")
	verbose := pflag.Bool("verbose", false, "log every period")
	pflag.Parse()

	var source sim.DemandSource
	switch *demand {
	case "constant":
		source = sim.ConstantDemand(*level)
	case "step":
		source = sim.StepDemand{Base: *level, After: 2 * *level, Week: *periods / 3}
	case "random":
		source = sim.NewRandomDemand(*seed, 0, 2*(*level))
	default:
		fmt.Fprintf(os.Stderr, "unknown demand pattern %q\n", *demand)
		os.Exit(2)
	}

	logCfg := zap.NewDevelopmentConfig()
	if !*verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	chain := sim.New(sim.Config{
		Echelons:     *echelons,
		Periods:      *periods,
		OrderCeiling: *ceiling,
		Demand:       source,
	})
	agents := sim.Agents(chain, 0, 0, *smoothing)

	logger.Info("episode starting",
		zap.String("episode", chain.Episode().String()),
		zap.Int("echelons", *echelons),
		zap.Int("periods", *periods),
		zap.String("demand", *demand),
	)

	result, err := sim.Run(chain, agents, logger)
	if err != nil {
		logger.Fatal("episode failed", zap.Error(err))
	}

	for _, cost := range result.Costs {
		logger.Info("echelon summary",
			zap.Int("position", cost.Position),
			zap.Float64("holding", cost.Holding),
			zap.Float64("backorder", cost.Backorder),
			zap.Float64("total", cost.Total()),
			zap.Float64("mean_order", result.MeanOrders()[cost.Position]),
		)
	}
	logger.Info("episode finished",
		zap.String("episode", result.Episode.String()),
		zap.Int("periods", result.Periods),
		zap.Float64("total_cost", result.Total),
	)
}
