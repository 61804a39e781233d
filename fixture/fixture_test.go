package fixture

import (
	"bytes"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{
		Scalars:      6,
		Arrays:       3,
		Tables:       2,
		KeysPerTable: 4,
		MaxArrayLen:  5,
		Seed:         42,
	}

	var buf1, buf2 bytes.Buffer

	sum1, err := NewGenerator(cfg).Generate(&buf1)
	if err != nil {
		t.Fatalf("first generation failed: %v", err)
	}

	sum2, err := NewGenerator(cfg).Generate(&buf2)
	if err != nil {
		t.Fatalf("second generation failed: %v", err)
	}

	if buf1.String() != buf2.String() {
		t.Error("documents are not deterministic for same seed")
	}

	if sum1 != sum2 {
		t.Errorf("summaries differ: %+v vs %+v", sum1, sum2)
	}
}

func TestGenerateSeedChangesDocument(t *testing.T) {
	var buf1, buf2 bytes.Buffer

	if _, err := NewGenerator(DefaultConfig(1)).Generate(&buf1); err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if _, err := NewGenerator(DefaultConfig(2)).Generate(&buf2); err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if buf1.String() == buf2.String() {
		t.Error("different seeds produced identical documents")
	}
}

func TestGenerateValidTOML(t *testing.T) {
	cfg := DefaultConfig(7)

	var buf bytes.Buffer
	if _, err := NewGenerator(cfg).Generate(&buf); err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid TOML: %v", err)
	}

	wantTopLevel := cfg.Scalars + cfg.Arrays + cfg.Tables
	if len(doc) != wantTopLevel {
		t.Errorf("top-level keys = %d, want %d", len(doc), wantTopLevel)
	}
}

func TestGenerateSummaryCounts(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantKeys   int
		wantArrays int
		wantTables int
	}{
		{
			name: "basic",
			cfg: Config{
				Scalars:      3,
				Arrays:       2,
				Tables:       2,
				KeysPerTable: 4,
				MaxArrayLen:  3,
				Seed:         1,
			},
			wantKeys:   3 + 2*(4+2),
			wantArrays: 2,
			wantTables: 4,
		},
		{
			name: "scalars only",
			cfg: Config{
				Scalars: 5,
				Seed:    2,
			},
			wantKeys:   5,
			wantArrays: 0,
			wantTables: 0,
		},
		{
			name: "tables only",
			cfg: Config{
				Tables:       3,
				KeysPerTable: 2,
				Seed:         3,
			},
			wantKeys:   3 * (2 + 2),
			wantArrays: 0,
			wantTables: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			sum, err := NewGenerator(tt.cfg).Generate(&buf)
			if err != nil {
				t.Fatalf("generation failed: %v", err)
			}

			if sum.Keys != tt.wantKeys {
				t.Errorf("keys = %d, want %d", sum.Keys, tt.wantKeys)
			}
			if sum.Arrays != tt.wantArrays {
				t.Errorf("arrays = %d, want %d", sum.Arrays, tt.wantArrays)
			}
			if sum.Tables != tt.wantTables {
				t.Errorf("tables = %d, want %d", sum.Tables, tt.wantTables)
			}
		})
	}
}

func TestGenerateCoversValueKinds(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewGenerator(DefaultConfig(42)).Generate(&buf); err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid TOML: %v", err)
	}

	kinds := make(map[string]bool)

	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case string:
			kinds["string"] = true
		case int64:
			kinds["integer"] = true
		case float64:
			kinds["float"] = true
		case bool:
			kinds["boolean"] = true
		case []any:
			kinds["array"] = true
			for _, elem := range val {
				walk(elem)
			}
		case map[string]any:
			kinds["table"] = true
			for _, elem := range val {
				walk(elem)
			}
		}
	}

	for _, v := range doc {
		walk(v)
	}

	for _, kind := range []string{"string", "integer", "float", "boolean", "array", "table"} {
		if !kinds[kind] {
			t.Errorf("document contains no %s value", kind)
		}
	}
}
