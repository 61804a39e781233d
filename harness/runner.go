package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/staticintlucas/soml/binsize/registry"
)

// Default tool invocations, in argv form. The size report comes from
// cargo-bloat's machine-readable output; the resolved dependency graph from
// cargo metadata.
var (
	DefaultBloat    = []string{"cargo", "bloat", "--release", "--message-format=json"}
	DefaultMetadata = []string{"cargo", "metadata", "--format-version=1"}
)

// Runner invokes the external cargo tooling against synthesized projects.
type Runner struct {
	Bloat    []string  // size-report command
	Metadata []string  // dependency-inspection command
	Diag     io.Writer // receives tool stderr on failure; defaults to os.Stderr
	Logger   *slog.Logger
}

// NewRunner creates a Runner using the default cargo commands.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		Bloat:    DefaultBloat,
		Metadata: DefaultMetadata,
		Diag:     os.Stderr,
		Logger:   logger,
	}
}

// Measure builds the project in dir with the size-report tool and, when desc
// is non-nil, resolves the version of the crate under test with the
// dependency-inspection tool. A failed tool is terminal: its stderr is
// surfaced to Diag and the error propagates without retries.
func (r *Runner) Measure(ctx context.Context, dir string, desc *registry.Descriptor) (*Result, error) {
	out, err := r.run(ctx, r.Bloat, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBuild, strings.Join(r.Bloat, " "), err)
	}

	size, err := parseBloat(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parse %s output: %w", r.Bloat[0], err)
	}

	result := &Result{TextSize: size}

	if desc == nil {
		return result, nil
	}

	out, err = r.run(ctx, r.Metadata, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBuild, strings.Join(r.Metadata, " "), err)
	}

	version, err := resolvedVersion(bytes.NewReader(out), desc.Package)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", desc.Package, err)
	}

	result.Version = version

	if desc.Version != "" {
		r.checkRequirement(desc, version)
	}

	return result, nil
}

// run executes argv in dir and returns its captured stdout. On failure the
// captured stderr is written verbatim to Diag before the error returns, so
// compiler output is never swallowed.
func (r *Runner) run(ctx context.Context, argv []string, dir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Info("running tool",
		slog.String("command", strings.Join(argv, " ")),
		slog.String("dir", dir),
	)

	if err := cmd.Run(); err != nil {
		diag := r.Diag
		if diag == nil {
			diag = os.Stderr
		}
		_, _ = diag.Write(stderr.Bytes())

		return nil, err
	}

	return stdout.Bytes(), nil
}

// bloatReport mirrors the part of the size report this harness depends on.
// The field is a pointer so a report that omits it can be told apart from a
// genuine zero.
type bloatReport struct {
	TextSectionSize *uint64 `json:"text-section-size"`
}

func parseBloat(r io.Reader) (uint64, error) {
	var report bloatReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return 0, fmt.Errorf("decode JSON: %w", err)
	}

	if report.TextSectionSize == nil {
		return 0, fmt.Errorf("report has no text-section-size field")
	}

	return *report.TextSectionSize, nil
}

type metadataReport struct {
	Packages []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"packages"`
}

// resolvedVersion extracts the version of pkg from the dependency graph.
// Anything other than exactly one matching package record is an error: zero
// means the build measured something else entirely, two or more means the
// version column would be a guess.
func resolvedVersion(r io.Reader, pkg string) (string, error) {
	var report metadataReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return "", fmt.Errorf("decode JSON: %w", err)
	}

	var matches []string
	for _, p := range report.Packages {
		if p.Name == pkg {
			matches = append(matches, p.Version)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: no package record for %q", ErrAmbiguousDependency, pkg)
	default:
		return "", fmt.Errorf("%w: %d package records for %q", ErrAmbiguousDependency, len(matches), pkg)
	}
}

// checkRequirement warns when the resolved version does not satisfy the
// registry's requirement, read with cargo's caret semantics. Requirement
// syntax this check cannot model is skipped rather than misreported.
func (r *Runner) checkRequirement(desc *registry.Descriptor, resolved string) {
	req := desc.Version
	if req[0] >= '0' && req[0] <= '9' {
		req = "^" + req
	}

	constraint, err := semver.NewConstraint(req)
	if err != nil {
		return
	}

	v, err := semver.NewVersion(resolved)
	if err != nil {
		r.Logger.Warn("unparseable resolved version",
			slog.String("package", desc.Package),
			slog.String("version", resolved),
		)

		return
	}

	if !constraint.Check(v) {
		r.Logger.Warn("resolved version does not satisfy requirement",
			slog.String("package", desc.Package),
			slog.String("requirement", desc.Version),
			slog.String("resolved", resolved),
		)
	}
}
