// Package fixture generates the deterministic TOML document every
// synthesized project round-trips. The same seed always produces the same
// bytes, so measurements are reproducible across runs.
package fixture

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/rand"

	"github.com/BurntSushi/toml"
)

// Config controls the shape of the generated document.
type Config struct {
	Scalars      int // top-level scalar keys
	Arrays       int // top-level homogeneous arrays
	Tables       int // nested tables
	KeysPerTable int // scalar keys inside each nested table
	MaxArrayLen  int // maximum elements per array
	Seed         int64
}

// DefaultConfig returns the document shape used by the CLI.
func DefaultConfig(seed int64) Config {
	return Config{
		Scalars:      8,
		Arrays:       4,
		Tables:       4,
		KeysPerTable: 6,
		MaxArrayLen:  8,
		Seed:         seed,
	}
}

// Summary contains statistics about a generated document.
type Summary struct {
	Keys   int // scalar keys, including those inside tables
	Arrays int
	Tables int
}

// Generator produces deterministic TOML documents from a Config.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// NewGenerator creates a Generator with the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate writes one TOML document to w and returns a Summary of its
// contents. Key names are indexed so the encoder's sorted output keeps a
// stable order.
func (g *Generator) Generate(w io.Writer) (Summary, error) {
	var summary Summary

	doc := make(map[string]any)

	for i := 0; i < g.cfg.Scalars; i++ {
		doc[fmt.Sprintf("scalar_%02d", i)] = g.randomScalar()
		summary.Keys++
	}

	for i := 0; i < g.cfg.Arrays; i++ {
		doc[fmt.Sprintf("array_%02d", i)] = g.array(i % 3)
		summary.Arrays++
	}

	for i := 0; i < g.cfg.Tables; i++ {
		table := make(map[string]any, g.cfg.KeysPerTable+1)

		for j := 0; j < g.cfg.KeysPerTable; j++ {
			table[fmt.Sprintf("key_%02d", j)] = g.randomScalar()
			summary.Keys++
		}

		table["nested"] = map[string]any{
			"flag":  g.rng.Intn(2) == 1,
			"label": g.randomString(),
		}
		summary.Keys += 2
		summary.Tables++

		doc[fmt.Sprintf("table_%02d", i)] = table
		summary.Tables++
	}

	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return summary, fmt.Errorf("encode fixture: %w", err)
	}

	return summary, nil
}

func (g *Generator) randomScalar() any {
	switch g.rng.Intn(4) {
	case 0:
		return g.randomString()
	case 1:
		return g.rng.Int63n(1_000_000) - 500_000
	case 2:
		return g.randomFloat()
	default:
		return g.rng.Intn(2) == 1
	}
}

func (g *Generator) randomString() string {
	buf := make([]byte, 4+g.rng.Intn(9))
	g.rng.Read(buf)

	return hex.EncodeToString(buf)
}

func (g *Generator) randomFloat() float64 {
	return g.rng.Float64()*2000 - 1000
}

// array returns a homogeneous array of the given element kind; mixed-type
// arrays would trip encoders that predate TOML 1.0. Kinds cycle with the
// array index so every document exercises strings, integers and floats.
func (g *Generator) array(kind int) any {
	maxLen := g.cfg.MaxArrayLen
	if maxLen < 1 {
		maxLen = 1
	}
	n := 1 + g.rng.Intn(maxLen)

	switch kind {
	case 0:
		vals := make([]string, n)
		for i := range vals {
			vals[i] = g.randomString()
		}

		return vals
	case 1:
		vals := make([]int64, n)
		for i := range vals {
			vals[i] = g.rng.Int63n(10_000)
		}

		return vals
	default:
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = g.randomFloat()
		}

		return vals
	}
}
