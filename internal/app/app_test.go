package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cobranza/internal/errors"
	"cobranza/internal/infrastructure"
	"cobranza/internal/pipeline"
	"cobranza/internal/shared/testutil"
)

func writeConfig(t *testing.T, body string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("paths:\n  base_dir: %q\n  output_dir: salida\n", dir) + body
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return dir, path
}

func newTestApplication(t *testing.T, command, body string) (*Application, string) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	dir, path := writeConfig(t, body)
	a, err := NewApplication(command, path)
	require.NoError(t, err)
	return a, dir
}

func TestNewApplication(t *testing.T) {
	a, dir := newTestApplication(t, pipeline.CommandScenario, "")

	assert.Equal(t, dir, a.Config.Paths.BaseDir)
	assert.Equal(t, pipeline.CommandScenario, a.Command)
	assert.NotNil(t, a.Logger)
	assert.NotNil(t, a.OTelProviders)
	assert.NotNil(t, a.RunMetrics)
	require.NotNil(t, a.Runner)
	assert.NotEmpty(t, a.Runner.Manifest().RunID)
}

func TestNewApplicationInvalidConfig(t *testing.T) {
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	_, path := writeConfig(t, "model:\n  trials: 0\n")
	_, err := NewApplication(pipeline.CommandTrainer, path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestNewApplicationSheetsWithoutSpreadsheet(t *testing.T) {
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	// Validation requires the id when enabled, so the failure surfaces as config.
	_, path := writeConfig(t, "publish:\n  sheets:\n    enabled: true\n")
	_, err := NewApplication(pipeline.CommandEDA, path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestRunWritesManifest(t *testing.T) {
	a, dir := newTestApplication(t, pipeline.CommandScenario, "")

	called := false
	err := a.Run(func(ctx context.Context, r *pipeline.Runner) error {
		called = true
		assert.Equal(t, r.Manifest().RunID, infrastructure.GetTraceID(ctx))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	require.NoError(t, a.Close())

	m, err := pipeline.LoadManifest(filepath.Join(dir, "salida", pipeline.ManifestName(pipeline.CommandScenario)))
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusCompleted, m.Status)
	assert.Equal(t, pipeline.CommandScenario, m.Command)
}

func TestRunReturnsCommandError(t *testing.T) {
	a, dir := newTestApplication(t, pipeline.CommandTrainer, "")

	boom := errors.New("boom")
	err := a.Run(func(context.Context, *pipeline.Runner) error { return boom })
	assert.ErrorIs(t, err, boom)

	m, err := pipeline.LoadManifest(filepath.Join(dir, "salida", pipeline.ManifestName(pipeline.CommandTrainer)))
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusFailed, m.Status)
	assert.Equal(t, "boom", m.Error)
}

func TestRunEDAEndToEnd(t *testing.T) {
	a, dir := newTestApplication(t, pipeline.CommandEDA, "files:\n  years: [2022, 2023]\n")
	testutil.WriteEDAFixture(t, a.Config.ResolvePaths())

	err := a.Run(func(ctx context.Context, r *pipeline.Runner) error {
		res, err := r.RunEDA(ctx)
		if err != nil {
			return err
		}
		assert.Len(t, res.Summary, 3)
		return nil
	})
	require.NoError(t, err)

	out := filepath.Join(dir, "salida")
	for _, name := range []string{a.Config.Files.Summary, a.Config.Files.MonthlyChart, pipeline.ManifestName(pipeline.CommandEDA)} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}
