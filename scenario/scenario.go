// Package scenario synthesizes the ephemeral Cargo projects that get
// measured: a baseline program that copies the fixture file unchanged, and a
// round-trip program per crate that decodes and re-encodes it.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/staticintlucas/soml/binsize/registry"
)

// Fixture and output file names inside every synthesized project.
const (
	InputFile  = "input.toml"
	OutputFile = "output.toml"
)

// Scenario describes one synthesizable project.
type Scenario struct {
	desc *registry.Descriptor // nil for the baseline
}

// Baseline returns the scenario measuring the size floor of the toolchain: a
// program that copies the fixture file without parsing it.
func Baseline() Scenario {
	return Scenario{}
}

// RoundTrip returns the scenario measuring desc: a program that decodes the
// fixture into a generic value model and re-encodes it with the crate under
// test.
func RoundTrip(desc *registry.Descriptor) Scenario {
	return Scenario{desc: desc}
}

// Descriptor returns the crate under measurement, or nil for the baseline.
func (s Scenario) Descriptor() *registry.Descriptor {
	return s.desc
}

func (s Scenario) String() string {
	if s.desc == nil {
		return "baseline"
	}

	return fmt.Sprintf("roundtrip(%s)", s.desc.Package)
}

// Write populates dir with a self-contained buildable Cargo project plus the
// fixture input. It touches nothing outside dir, and the same scenario and
// fixture always produce byte-identical contents.
func (s Scenario) Write(dir string, fixture []byte) error {
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		return fmt.Errorf("create src dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(s.manifest()), 0o644); err != nil {
		return fmt.Errorf("write Cargo.toml: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "src", "main.rs"), []byte(s.program()), 0o644); err != nil {
		return fmt.Errorf("write main.rs: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, InputFile), fixture, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", InputFile, err)
	}

	return nil
}

func (s Scenario) manifest() string {
	if s.desc == nil {
		return `[package]
name = "baseline"
edition = "2024"
`
	}

	return fmt.Sprintf(`[package]
name = "roundtrip"
edition = "2024"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
%s = { %s }
`, s.desc.Package, depSpec(s.desc))
}

// depSpec renders the inline Cargo dependency table for the crate under
// test.
func depSpec(desc *registry.Descriptor) string {
	parts := make([]string, 0, 3)

	if desc.Path != "" {
		parts = append(parts, fmt.Sprintf("path = %q", desc.Path))
	} else {
		parts = append(parts, fmt.Sprintf("version = %q", desc.Version))
	}

	if !desc.DefaultFeatures {
		parts = append(parts, "default-features = false")
	}

	if len(desc.Features) > 0 {
		quoted := make([]string, len(desc.Features))
		for i, f := range desc.Features {
			quoted[i] = fmt.Sprintf("%q", f)
		}

		parts = append(parts, fmt.Sprintf("features = [%s]", strings.Join(quoted, ", ")))
	}

	return strings.Join(parts, ", ")
}

func (s Scenario) program() string {
	if s.desc == nil {
		return fmt.Sprintf(`fn main() {
    let input = std::fs::read_to_string(%[1]q).unwrap();
    std::fs::write(%[2]q, input).unwrap();
}
`, InputFile, OutputFile)
	}

	// Crate names with hyphens are imported with underscores.
	ident := strings.ReplaceAll(s.desc.Package, "-", "_")

	return fmt.Sprintf(`use serde::{Deserialize, Serialize};
use %[1]s::{from_str, to_string};

#[derive(Deserialize, Serialize)]
#[serde(untagged)]
enum Value {
    String(String),
    Integer(i64),
    Float(f64),
    Boolean(bool),
    Array(Vec<Value>),
    Table(std::collections::HashMap<String, Value>),
}

fn main() {
    let input = std::fs::read_to_string(%[2]q).unwrap();
    let value: Value = from_str(&input).unwrap();
    let output = to_string(&value).unwrap();
    std::fs::write(%[3]q, output).unwrap();
}
`, ident, InputFile, OutputFile)
}
