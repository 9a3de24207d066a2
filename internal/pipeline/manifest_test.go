package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cobranza/internal/config"
	"cobranza/internal/files"
)

func TestRunManifestLifecycle(t *testing.T) {
	m := NewRunManifest("abc", CommandTrainer, "1.0.0")
	assert.Equal(t, StatusRunning, m.Status)

	m.RecordStageStart("load")
	m.RecordStageEnd("load", nil, map[string]any{"rows": 10})
	m.RecordStageStart("train")
	m.RecordStageEnd("train", errors.New("boom"), nil)

	assert.Equal(t, StatusCompleted, m.StageStatus("load"))
	assert.Equal(t, StatusFailed, m.StageStatus("train"))
	assert.Equal(t, "", m.StageStatus("recommend"))
	assert.Equal(t, "boom", m.Stages[1].Error)
	assert.NotEmpty(t, m.Stages[0].Duration)

	m.Finish(errors.New("boom"))
	assert.Equal(t, StatusFailed, m.Status)
	assert.Equal(t, "boom", m.Error)
}

func TestRunManifestRepeatedStage(t *testing.T) {
	m := NewRunManifest("abc", CommandEDA, "1.0.0")
	m.RecordStageStart("charts")
	m.RecordStageEnd("charts", errors.New("first"), nil)
	m.RecordStageStart("charts")
	m.RecordStageEnd("charts", nil, nil)

	require.Len(t, m.Stages, 2)
	assert.Equal(t, StatusFailed, m.Stages[0].Status)
	assert.Equal(t, StatusCompleted, m.Stages[1].Status)
	assert.Equal(t, StatusCompleted, m.StageStatus("charts"))
}

func TestRunManifestSaveAndLoad(t *testing.T) {
	out := t.TempDir()
	fm := files.NewManager(config.NewPaths(config.PathsConfig{BaseDir: out}, config.FilesConfig{}))

	shard := filepath.Join(out, "cluster_1.csv")
	require.NoError(t, os.WriteFile(shard, []byte("a\n1\n"), 0644))
	found, err := files.NewDiscovery(out).FindFilesByPattern("", "cluster_*.csv")
	require.NoError(t, err)

	m := NewRunManifest("abc", CommandTrainer, "1.0.0")
	m.AddInput("shards", out, found, 1)
	m.AddOutput("recomendaciones.csv", filepath.Join(out, "recomendaciones.csv"), 42, 3)
	m.Finish(nil)

	require.NoError(t, m.Save(fm, ManifestName(CommandTrainer)))

	loaded, err := LoadManifest(filepath.Join(out, "trainer_manifest.json"))
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.RunID)
	assert.Equal(t, StatusCompleted, loaded.Status)
	assert.Equal(t, []string{"cluster_1.csv"}, loaded.Inputs["shards"].Files)
	assert.Equal(t, int64(4), loaded.Inputs["shards"].TotalSize)
	sum, err := files.Checksum(shard)
	require.NoError(t, err)
	assert.Equal(t, sum, loaded.Inputs["shards"].Checksums["cluster_1.csv"])
	require.Len(t, loaded.Outputs, 1)
	assert.Equal(t, 3, loaded.Outputs[0].Rows)
}

func TestLoadManifestMissing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
