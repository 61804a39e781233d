package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, contents string) {
	t.Helper()

	err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(contents), 0o644)
	require.NoError(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "soml"
version = "0.1.0"
repository = "https://github.com/staticintlucas/soml"
`)

	root, err := Open(dir)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(root.Dir))
	assert.Equal(t, "soml", root.Name)
	assert.Equal(t, "https://github.com/staticintlucas/soml", root.Repository)
}

func TestOpenMissingManifest(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
}

func TestOpenWorkspaceOnlyManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[workspace]
members = ["crates/*"]
`)

	root, err := Open(dir)
	require.NoError(t, err)

	assert.Empty(t, root.Name)
	assert.Empty(t, root.Repository)
}

func TestLocateWalksUp(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "soml"
`)

	nested := filepath.Join(dir, "binsize", "scratch")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	root, err := Locate(nested)
	require.NoError(t, err)

	assert.Equal(t, dir, root.Dir)
	assert.Equal(t, "soml", root.Name)
}

func TestLocateStopsAtNearestManifest(t *testing.T) {
	outer := t.TempDir()
	writeManifest(t, outer, `
[package]
name = "outer"
`)

	inner := filepath.Join(outer, "vendored")
	require.NoError(t, os.MkdirAll(inner, 0o755))
	writeManifest(t, inner, `
[package]
name = "inner"
`)

	root, err := Locate(inner)
	require.NoError(t, err)

	assert.Equal(t, "inner", root.Name)
}

func TestLocateNotFound(t *testing.T) {
	_, err := Locate(t.TempDir())
	require.Error(t, err)
}

func TestBlobURL(t *testing.T) {
	root := &Root{Repository: "https://github.com/staticintlucas/soml/"}

	tests := []struct {
		rel  string
		want string
	}{
		{".", "https://github.com/staticintlucas/soml"},
		{"binsize", "https://github.com/staticintlucas/soml/blob/main/binsize"},
		{"crates/soml", "https://github.com/staticintlucas/soml/blob/main/crates/soml"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, root.BlobURL(tt.rel), "rel %q", tt.rel)
	}
}
