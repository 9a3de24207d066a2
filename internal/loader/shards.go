package loader

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"cobranza/internal/dataset"
	apperrors "cobranza/internal/errors"
	"cobranza/internal/files"
)

// LoadShards reads every file matching the shard pattern, in name order,
// and concatenates them into one table.
func (l *Loader) LoadShards(ctx context.Context) (*dataset.Table, error) {
	discovery := files.NewDiscovery(l.paths.ShardDir)
	found, err := discovery.FindFilesByPattern("", l.paths.ShardPatterns()...)
	if err != nil {
		return nil, apperrors.NewStorageError("shard discovery failed", err)
	}
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError("training shards", nil).
			WithContext("pattern", l.paths.ShardGlob())
	}

	tables := make([]*dataset.Table, len(found))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range found {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
			t, err := dataset.ReadFile(f.Path, name)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out, err := dataset.Concat("shards", tables...)
	if err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "Training shards loaded",
		slog.Int("shards", len(found)),
		slog.Int64("bytes", files.TotalSize(found)),
		slog.Int("rows", out.Len()))
	return out, nil
}
