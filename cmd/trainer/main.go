// Command trainer fits the gradient-boosted model on the clustered shards,
// searching hyperparameters first, and writes one recommended list per
// credit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"cobranza/internal/app"
	"cobranza/internal/config"
	apperrors "cobranza/internal/errors"
	"cobranza/internal/pipeline"
)

func main() {
	configFile := flag.String("config", "", "path to the YAML configuration file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(config.AppName, config.AppVersion)
		return
	}

	os.Exit(run(*configFile))
}

func run(configFile string) int {
	a, err := app.NewApplication(pipeline.CommandTrainer, configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainer: %v\n", err)
		return apperrors.ExitCode(err)
	}
	defer a.Close()

	err = a.Run(func(ctx context.Context, r *pipeline.Runner) error {
		res, err := r.RunTrainer(ctx)
		if err != nil {
			return err
		}
		a.Logger.InfoContext(ctx, "Recommendations ready",
			slog.Int("credits", len(res.Recommendations)),
			slog.Float64("best_rmse", res.Search.Best.RMSE),
			slog.Int("best_trial", res.Search.Best.Number))
		return nil
	})
	return apperrors.ExitCode(err)
}
