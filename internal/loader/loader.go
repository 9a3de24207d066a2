// Package loader reads the catalog and yearly transaction extracts into
// dataset tables with normalized join keys.
package loader

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"cobranza/internal/config"
	"cobranza/internal/dataset"
	"cobranza/internal/infrastructure"
)

// Catalogs holds the five reference tables joined onto the transactions.
type Catalogs struct {
	Banks       *dataset.Table
	Responses   *dataset.Table
	Lists       *dataset.Table
	ListIssuers *dataset.Table
	Issuers     *dataset.Table
}

// Tables returns the catalogs in load order.
func (c *Catalogs) Tables() []*dataset.Table {
	return []*dataset.Table{c.Banks, c.Responses, c.Issuers, c.Lists, c.ListIssuers}
}

// TransactionKeys are the key columns normalized in every transaction table.
var TransactionKeys = []string{config.ColBankID, config.ColResponseID, config.ColListID}

type catalogSpec struct {
	name string
	file string
	keys []string
	dst  **dataset.Table
}

// Loader reads input tables from the configured locations.
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// New creates a Loader for paths.
func New(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{paths: paths, logger: logger}
}

// LoadCatalogs reads the five catalogs concurrently. Any missing file,
// malformed CSV or absent key column fails the whole load.
func (l *Loader) LoadCatalogs(ctx context.Context) (*Catalogs, error) {
	cats := &Catalogs{}
	files := l.paths.Files
	specs := []catalogSpec{
		{"catbanco", files.Banks, []string{config.ColBankID}, &cats.Banks},
		{"catrespuestabancos", files.BankResponses, []string{config.ColResponseID}, &cats.Responses},
		{"catemisora", files.Issuers, []string{config.ColIssuerID}, &cats.Issuers},
		{"listacobro", files.CollectionLists, []string{config.ColListID}, &cats.Lists},
		{"listacobroemisora", files.ListIssuers, []string{config.ColListID, config.ColIssuerID}, &cats.ListIssuers},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := l.readKeyed(ctx, spec.name, l.paths.CatalogFile(spec.file), spec.keys)
			if err != nil {
				return err
			}
			*spec.dst = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cats, nil
}

// LoadTransactions reads one extract per configured year, tags every row
// with its año and concatenates the years in configured order.
func (l *Loader) LoadTransactions(ctx context.Context) (*dataset.Table, error) {
	years := l.paths.Files.Years
	tables := make([]*dataset.Table, len(years))

	g, ctx := errgroup.WithContext(ctx)
	for i, year := range years {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := "listacobrodetalle" + strconv.Itoa(year)
			t, err := l.readKeyed(ctx, name, l.paths.TransactionFile(year), TransactionKeys)
			if err != nil {
				return err
			}
			tag := strconv.Itoa(year)
			if err := t.AddColumn(config.ColYear, func(int) string { return tag }); err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tx, err := dataset.Concat("transacciones", tables...)
	if err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "Transactions loaded",
		slog.Int("years", len(years)),
		slog.Int("rows", tx.Len()))
	return tx, nil
}

func (l *Loader) readKeyed(ctx context.Context, name, path string, keys []string) (*dataset.Table, error) {
	t, err := dataset.ReadFile(path, name)
	if err != nil {
		return nil, err
	}
	if err := t.NormalizeKeys(keys...); err != nil {
		return nil, err
	}
	infrastructure.LoggerWithContext(ctx).DebugContext(ctx, "Table loaded",
		slog.String("table", name),
		slog.String("path", path),
		slog.Int("rows", t.Len()),
		slog.Int("columns", t.Width()))
	return t, nil
}
