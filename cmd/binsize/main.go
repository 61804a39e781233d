// Package main provides the CLI entry point for binsize, a binary-size
// benchmark for TOML serialization crates.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/staticintlucas/soml/binsize/fixture"
	"github.com/staticintlucas/soml/binsize/harness"
	"github.com/staticintlucas/soml/binsize/registry"
	"github.com/staticintlucas/soml/binsize/report"
	"github.com/staticintlucas/soml/binsize/workspace"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "binsize",
		Short: "Binary-size benchmark for TOML crates",
		Long: `Binsize compares the compiled code size of TOML serialization crates by
building a minimal round-trip program against each crate in the registry,
measuring its text section, and rendering the comparison as a footnoted
markdown table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		registryPath string
		rootDir      string
		outputPath   string
		seed         int64
		outputJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Measure every crate in the registry and render the report",
		Long: `Synthesize a baseline project and one round-trip project per registry
entry, measure each with the cargo tooling, and write the comparison report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), logger, runConfig{
				registryPath: registryPath,
				rootDir:      rootDir,
				outputPath:   outputPath,
				seed:         seed,
				outputJSON:   outputJSON,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&registryPath, "registry", "crates.toml",
		"Path to the crate registry document")
	flags.StringVar(&rootDir, "root", "",
		"Workspace root for local crates (default: discovered above the registry)")
	flags.StringVarP(&outputPath, "output", "o", "",
		"Write the report to this file instead of stdout")
	flags.Int64Var(&seed, "seed", 1,
		"Seed for the generated fixture document")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of markdown")

	return cmd
}

type runConfig struct {
	registryPath string
	rootDir      string
	outputPath   string
	seed         int64
	outputJSON   bool
}

func runReport(ctx context.Context, logger *slog.Logger, cfg runConfig) error {
	registryPath, err := filepath.Abs(cfg.registryPath)
	if err != nil {
		return fmt.Errorf("resolve registry path: %w", err)
	}

	// Step 1: Locate the workspace root for local crate entries.
	root, err := locateRoot(cfg.rootDir, registryPath)
	if err != nil {
		return err
	}

	if root != nil {
		logger.InfoContext(ctx, "using workspace root",
			slog.String("dir", root.Dir),
			slog.String("package", root.Name),
		)
	}

	// Step 2: Load the registry.
	descs, err := registry.Load(registryPath, root)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	logger.InfoContext(ctx, "registry loaded",
		slog.String("path", registryPath),
		slog.Int("crates", len(descs)),
	)

	// Step 3: Generate the fixture document shared by all scenarios.
	fixtureDoc, err := generateFixture(ctx, logger, cfg.seed)
	if err != nil {
		return fmt.Errorf("generate fixture: %w", err)
	}

	// Step 4: Measure the baseline and every crate sequentially.
	runner := harness.NewRunner(logger)

	entries, err := harness.Collect(ctx, runner, descs, fixtureDoc)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	// Step 5: Render the report.
	out, err := openOutput(cfg.outputPath)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer out.Close()

	if cfg.outputJSON {
		if err := report.WriteJSON(out, entries); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
	} else {
		if err := report.Write(out, entries); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	logger.InfoContext(ctx, "report complete",
		slog.Int("scenarios", len(entries)),
	)

	return nil
}

// locateRoot opens the workspace root named by --root, or discovers one
// above the registry document. Registries with no local crates work without
// any root, so a failed discovery is not an error.
func locateRoot(rootDir, registryPath string) (*workspace.Root, error) {
	if rootDir != "" {
		root, err := workspace.Open(rootDir)
		if err != nil {
			return nil, fmt.Errorf("open workspace root: %w", err)
		}

		return root, nil
	}

	root, err := workspace.Locate(filepath.Dir(registryPath))
	if err != nil {
		return nil, nil
	}

	return root, nil
}

func generateFixture(ctx context.Context, logger *slog.Logger, seed int64) ([]byte, error) {
	gen := fixture.NewGenerator(fixture.DefaultConfig(seed))

	var buf bytes.Buffer

	summary, err := gen.Generate(&buf)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "fixture generated",
		slog.Int64("seed", seed),
		slog.Int("keys", summary.Keys),
		slog.Int("arrays", summary.Arrays),
		slog.Int("tables", summary.Tables),
	)

	return buf.Bytes(), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}

	return os.Create(path)
}
