package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "factura b")
	writeFile(t, filepath.Join(root, "a.PDF"), "%PDF-1.4")
	writeFile(t, filepath.Join(root, "notes.md"), "ignored")
	writeFile(t, filepath.Join(root, ".hidden", "c.txt"), "hidden")
	writeFile(t, filepath.Join(root, "sub", ".d.txt"), "hidden file")

	inputs, stats, err := Collect(context.Background(), root, true)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "a.PDF", filepath.Base(inputs[0].Path))
	assert.Equal(t, "pdf", inputs[0].Ext)
	assert.Equal(t, "b.txt", filepath.Base(inputs[1].Path))
	assert.Equal(t, int64(len("factura b")), inputs[1].Size)
	assert.Len(t, inputs[1].HashHex, 64)
	assert.Equal(t, uint32(2), stats.Matched)
	assert.Zero(t, stats.Failed)

	all, _, err := Collect(context.Background(), root, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCollectSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escritura.txt")
	writeFile(t, path, "texto")

	inputs, stats, err := Collect(context.Background(), path, true)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, uint32(1), stats.Matched)

	bad := filepath.Join(t.TempDir(), "scan.gif")
	writeFile(t, bad, "gif")
	_, _, err = Collect(context.Background(), bad, true)
	assert.ErrorIs(t, err, ErrUnsupportedExt)

	_, _, err = Collect(context.Background(), "", true)
	assert.Error(t, err)
}

func TestCollectHonorsContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Collect(ctx, root, true)
	assert.ErrorIs(t, err, context.Canceled)
}
