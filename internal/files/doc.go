// Package files provides file system helpers for the batch commands.
//
// Discovery locates input files, such as the training shards, by glob
// pattern and returns them sorted by name so concatenation order is stable.
//
// Manager owns the output directory. Files are written through a temporary
// file in the same directory and renamed into place, so a failed run never
// leaves a truncated CSV or PNG behind.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.ShardDir)
//	shards, err := discovery.FindFilesByPattern("", "cluster_*.csv")
//
//	manager := files.NewManager(paths)
//	err = manager.WriteAtomic("resumen.csv", func(w io.Writer) error {
//	    return writeSummary(w, rows)
//	})
package files
