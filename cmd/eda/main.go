// Command eda joins the catalogs with the yearly transaction files and
// writes the year/bank summary, its workbook and the exploratory charts.
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
	a, err := app.NewApplication(pipeline.CommandEDA, configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "eda: %v\n", err)
		return apperrors.ExitCode(err)
	}
	defer a.Close()

	err = a.Run(func(ctx context.Context, r *pipeline.Runner) error {
		res, err := r.RunEDA(ctx)
		if err != nil {
			return err
		}
		a.Logger.InfoContext(ctx, "Summary ready",
			slog.Int("rows", len(res.Summary)),
			slog.Int("months", len(res.Monthly)),
			slog.Int("unparsed_dates", res.UnparsedDates))
		return nil
	})
	return apperrors.ExitCode(err)
}
