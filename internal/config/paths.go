package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the resolved input and output locations.
// This is the single source of truth for file paths in the batch commands.
type Paths struct {
	BaseDir    string
	CatalogDir string
	DataDir    string
	OutputDir  string
	ShardDir   string

	Files FilesConfig
}

// NewPaths resolves relative directories against the base directory.
func NewPaths(p PathsConfig, files FilesConfig) *Paths {
	base := p.BaseDir
	if base == "" {
		base = "."
	}
	resolve := func(dir string) string {
		if dir == "" {
			return base
		}
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}

	return &Paths{
		BaseDir:    base,
		CatalogDir: resolve(p.CatalogDir),
		DataDir:    resolve(p.DataDir),
		OutputDir:  resolve(p.OutputDir),
		ShardDir:   resolve(p.ShardDir),
		Files:      files,
	}
}

// CatalogFile returns the path of a catalog file name.
func (p *Paths) CatalogFile(name string) string {
	return filepath.Join(p.CatalogDir, name)
}

// TransactionFile returns the path of the transaction extract for a year.
func (p *Paths) TransactionFile(year int) string {
	return filepath.Join(p.DataDir, fmt.Sprintf(p.Files.TransactionTemplate, year))
}

// OutputFile returns the path of an output file name.
func (p *Paths) OutputFile(name string) string {
	return filepath.Join(p.OutputDir, name)
}

// ShardGlob returns the glob matching the model training shards.
func (p *Paths) ShardGlob() string {
	return filepath.Join(p.ShardDir, p.Files.ShardPattern)
}

// ShardPatterns splits the shard pattern on commas, so that
// "cluster_*.csv,cluster_*.xlsx" matches both formats.
func (p *Paths) ShardPatterns() []string {
	var out []string
	for _, s := range strings.Split(p.Files.ShardPattern, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EnsureOutputDir creates the output directory if it doesn't exist
func (p *Paths) EnsureOutputDir() error {
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.OutputDir, err)
	}
	return nil
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("catalog_dir", p.CatalogDir),
		slog.String("data_dir", p.DataDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("shard_dir", p.ShardDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
