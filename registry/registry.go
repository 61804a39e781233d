// Package registry loads the declarative list of TOML crates under
// measurement. The registry is a TOML document with one table per crate;
// section labels double as presentation names in the rendered report.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/staticintlucas/soml/binsize/workspace"
)

// Descriptor identifies one crate under measurement and the metadata
// rendered alongside its result.
type Descriptor struct {
	Name            string   // registry section label
	Package         string   // crate name as cargo knows it
	Version         string   // cargo version requirement; empty when Path is set
	Path            string   // absolute path to a local crate; empty when Version is set
	DefaultFeatures bool     // whether the crate's default features are enabled
	Features        []string // additional features enabled on the crate
	Maintained      bool
	TOMLVersion     string // latest TOML spec version the crate claims to support
	URL             string // reference URL rendered as the crate link
	Notes           string
	Footnotes       []string
}

type rawEntry struct {
	Package         string   `toml:"package"`
	Version         string   `toml:"version"`
	Path            string   `toml:"path"`
	DefaultFeatures *bool    `toml:"default-features"`
	Features        []string `toml:"features"`
	Maintained      bool     `toml:"maintained"`
	TOMLVersion     string   `toml:"toml-version"`
	URL             string   `toml:"url"`
	Notes           string   `toml:"notes"`
	Footnotes       []string `toml:"footnotes"`
}

// Load reads and validates the registry document at path. root resolves
// relative local-crate paths and derives reference URLs for entries that
// omit one; it may be nil when no entry needs it.
func Load(path string, root *workspace.Root) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	return Parse(data, root)
}

// Parse validates a registry document and returns its descriptors in
// declaration order. The first invalid entry fails the whole document.
func Parse(data []byte, root *workspace.Root) ([]Descriptor, error) {
	var raw map[string]rawEntry

	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, invalidf("", "parse: %v", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, invalidf("", "unrecognized keys: %s", strings.Join(keys, ", "))
	}

	descs := make([]Descriptor, 0, len(raw))
	seen := make(map[string]string, len(raw)) // package -> label of first declaring entry

	// md.Keys reports keys in document order; the top-level ones are the
	// entry labels.
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}

		label := key[0]

		desc, err := validate(label, raw[label], md, root)
		if err != nil {
			return nil, err
		}

		if prev, ok := seen[desc.Package]; ok {
			return nil, invalidf(label, "package %q already declared by entry %q", desc.Package, prev)
		}
		seen[desc.Package] = label

		descs = append(descs, desc)
	}

	return descs, nil
}

func validate(label string, entry rawEntry, md toml.MetaData, root *workspace.Root) (Descriptor, error) {
	var zero Descriptor

	if entry.Package == "" {
		return zero, invalidf(label, "missing required key %q", "package")
	}

	hasVersion := entry.Version != ""
	hasPath := entry.Path != ""

	switch {
	case hasVersion && hasPath:
		return zero, invalidf(label, "version and path are mutually exclusive")
	case !hasVersion && !hasPath:
		return zero, invalidf(label, "exactly one of version or path is required")
	}

	if hasVersion {
		if _, err := semver.NewConstraint(entry.Version); err != nil {
			return zero, invalidf(label, "version %q: %v", entry.Version, err)
		}
	}

	if !md.IsDefined(label, "maintained") {
		return zero, invalidf(label, "missing required key %q", "maintained")
	}

	if entry.TOMLVersion == "" {
		return zero, invalidf(label, "missing required key %q", "toml-version")
	}

	path := entry.Path
	if hasPath {
		if root == nil {
			return zero, invalidf(label, "local path %q needs a workspace root", entry.Path)
		}

		if !filepath.IsAbs(path) {
			path = filepath.Join(root.Dir, path)
		}
		path = filepath.Clean(path)
	}

	url := entry.URL
	if url == "" {
		// Local workspace crates can fall back to a URL derived from the
		// root manifest's repository field.
		if hasPath && !filepath.IsAbs(entry.Path) && root.Repository != "" {
			url = root.BlobURL(entry.Path)
		} else {
			return zero, invalidf(label, "missing required key %q", "url")
		}
	}

	defaultFeatures := true
	if entry.DefaultFeatures != nil {
		defaultFeatures = *entry.DefaultFeatures
	}

	return Descriptor{
		Name:            label,
		Package:         entry.Package,
		Version:         entry.Version,
		Path:            path,
		DefaultFeatures: defaultFeatures,
		Features:        entry.Features,
		Maintained:      entry.Maintained,
		TOMLVersion:     entry.TOMLVersion,
		URL:             url,
		Notes:           entry.Notes,
		Footnotes:       entry.Footnotes,
	}, nil
}
