// Package harness runs synthesized projects through the external cargo
// tooling and collects one measurement per scenario.
package harness

// Result holds the measurements extracted from one scenario build.
type Result struct {
	// Version is the crate version cargo actually resolved, which for a
	// requirement like "0.22" can be any 0.22.x release. Empty for the
	// baseline scenario.
	Version string `json:"version,omitempty"`

	// TextSize is the size in bytes of the built executable's .text
	// section, the code-size figure the report compares.
	TextSize uint64 `json:"text_size"`
}
