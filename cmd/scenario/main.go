// Command scenario reads the year/bank summary and charts the baseline
// against a scenario where the target banks collect more.
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
	a, err := app.NewApplication(pipeline.CommandScenario, configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenario: %v\n", err)
		return apperrors.ExitCode(err)
	}
	defer a.Close()

	err = a.Run(func(ctx context.Context, r *pipeline.Runner) error {
		res, err := r.RunScenario(ctx)
		if err != nil {
			return err
		}
		a.Logger.InfoContext(ctx, "Scenario compared",
			slog.Int("years", len(res.Rows)),
			slog.Int("affected_rows", res.Affected),
			slog.Any("unmatched_banks", res.Unmatched))
		return nil
	})
	return apperrors.ExitCode(err)
}
