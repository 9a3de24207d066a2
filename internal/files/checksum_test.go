package files

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CatBanco.csv")
	content := []byte("idbanco,nombre\n1,BANORTE\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	sum, err := Checksum(path)
	require.NoError(t, err)

	want := blake2b.Sum256(content)
	assert.Equal(t, hex.EncodeToString(want[:]), sum)
	assert.Len(t, sum, 64)

	_, err = Checksum(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
