// Package workspace locates the Cargo workspace enclosing the registry and
// exposes the root-manifest metadata needed to resolve local crate entries.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Root describes the root of a Cargo workspace.
type Root struct {
	Dir        string // absolute directory containing the root Cargo.toml
	Name       string // package name from the root manifest, may be empty
	Repository string // package.repository from the root manifest, may be empty
}

type rootManifest struct {
	Package struct {
		Name       string `toml:"name"`
		Repository string `toml:"repository"`
	} `toml:"package"`
}

// Open reads dir/Cargo.toml and returns the workspace root it describes.
func Open(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace dir: %w", err)
	}

	manifestPath := filepath.Join(abs, "Cargo.toml")

	var manifest rootManifest
	if _, err := toml.DecodeFile(manifestPath, &manifest); err != nil {
		return nil, fmt.Errorf("read workspace manifest %s: %w", manifestPath, err)
	}

	return &Root{
		Dir:        abs,
		Name:       manifest.Package.Name,
		Repository: manifest.Package.Repository,
	}, nil
}

// Locate walks upward from start until it finds a directory containing a
// Cargo.toml and opens that directory as the workspace root.
func Locate(start string) (*Root, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve start dir: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil {
			return Open(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no Cargo.toml found above %s", start)
		}

		dir = parent
	}
}

// BlobURL returns the browsable repository URL for a path relative to the
// workspace root, e.g. "https://github.com/x/y/blob/main/crates/foo". The
// root itself maps to the repository URL.
func (r *Root) BlobURL(rel string) string {
	repo := strings.TrimSuffix(r.Repository, "/")

	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." {
		return repo
	}

	return fmt.Sprintf("%s/blob/main/%s", repo, rel)
}
