package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/staticintlucas/soml/binsize/registry"
	"github.com/staticintlucas/soml/binsize/scenario"
)

// Entry pairs one measurement with the descriptor it was taken for. A nil
// Desc marks the baseline scenario.
type Entry struct {
	Desc   *registry.Descriptor
	Result Result
}

// Collect measures the baseline scenario and then every registry entry in
// declaration order. The first failure aborts the whole run, so a report
// with silently missing rows is never produced.
func Collect(
	ctx context.Context,
	runner *Runner,
	descs []registry.Descriptor,
	fixture []byte,
) ([]Entry, error) {
	entries := make([]Entry, 0, len(descs)+1)

	baseline, err := runScenario(ctx, runner, scenario.Baseline(), fixture)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}

	entries = append(entries, Entry{Result: *baseline})

	for i := range descs {
		desc := &descs[i]

		result, err := runScenario(ctx, runner, scenario.RoundTrip(desc), fixture)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", desc.Name, err)
		}

		entries = append(entries, Entry{Desc: desc, Result: *result})
	}

	return entries, nil
}

// runScenario synthesizes the project in a fresh scratch directory, measures
// it, and discards the directory on every exit path.
func runScenario(
	ctx context.Context,
	runner *Runner,
	sc scenario.Scenario,
	fixture []byte,
) (*Result, error) {
	dir, err := os.MkdirTemp("", "binsize-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	runner.Logger.Info("measuring scenario",
		slog.String("scenario", sc.String()),
		slog.String("dir", dir),
	)

	if err := sc.Write(dir, fixture); err != nil {
		return nil, fmt.Errorf("write project: %w", err)
	}

	result, err := runner.Measure(ctx, dir, sc.Descriptor())
	if err != nil {
		return nil, err
	}

	runner.Logger.Info("scenario measured",
		slog.String("scenario", sc.String()),
		slog.Uint64("text_size", result.TextSize),
	)

	return result, nil
}
