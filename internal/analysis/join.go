package analysis

import (
	"context"
	"log/slog"

	"cobranza/internal/config"
	"cobranza/internal/dataset"
	"cobranza/internal/infrastructure"
	"cobranza/internal/loader"
)

// JoinStep records the diagnostics of one join in the enrichment chain.
type JoinStep struct {
	Right string
	On    string
	dataset.JoinStats
}

// Enrich left-joins the transactions with the catalogs in a fixed order:
// banks, bank responses, collection lists, list issuers and issuers.
// The bank name wins the nombre collision with the issuer name.
func Enrich(ctx context.Context, tx *dataset.Table, cats *loader.Catalogs) (*dataset.Table, []JoinStep, error) {
	chain := []struct {
		right    *dataset.Table
		on       string
		suffixes [2]string
	}{
		{cats.Banks, config.ColBankID, [2]string{"_orig", "_banks"}},
		{cats.Responses, config.ColResponseID, dataset.DefaultSuffixes},
		{cats.Lists, config.ColListID, dataset.DefaultSuffixes},
		{cats.ListIssuers, config.ColListID, dataset.DefaultSuffixes},
		{cats.Issuers, config.ColIssuerID, dataset.DefaultSuffixes},
	}

	logger := infrastructure.LoggerWithContext(ctx)
	steps := make([]JoinStep, 0, len(chain))
	current := tx
	for _, j := range chain {
		joined, stats, err := dataset.LeftJoin(current, j.right, dataset.JoinOptions{
			On:       j.on,
			Suffixes: j.suffixes,
			Name:     "cobranza",
		})
		if err != nil {
			return nil, steps, err
		}
		logger.InfoContext(ctx, "Join completed",
			slog.String("right", j.right.Name),
			slog.String("on", j.on),
			slog.Int("left_rows", stats.LeftRows),
			slog.Int("output_rows", stats.OutputRows),
			slog.Int("unmatched", stats.Unmatched))
		steps = append(steps, JoinStep{Right: j.right.Name, On: j.on, JoinStats: stats})
		current = joined
	}

	if current.HasColumn(config.ColName + "_x") {
		if err := current.RenameColumn(config.ColName+"_x", config.ColName); err != nil {
			return nil, steps, err
		}
	}

	return current, steps, nil
}
