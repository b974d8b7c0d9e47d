package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	rferrors "github.com/reflow-ui/reflow/internal/errors"
	"github.com/reflow-ui/reflow/pkg/reactive"
	"github.com/reflow-ui/reflow/pkg/runtime"
	"github.com/reflow-ui/reflow/pkg/tree"
)

func runCmd() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute benchmark scenarios and print a timing report",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios := defaultScenarios
			if scenarioPath != "" {
				loaded, err := loadScenarios(scenarioPath)
				if err != nil {
					return err
				}
				scenarios = loaded
			}

			tbl := table.NewWriter()
			tbl.SetTitle("Reflow Update Engine")
			tbl.SetOutputMirror(os.Stdout)
			tbl.AppendHeader(table.Row{
				"scenario", "iterations", "patches", "avg", "min", "p75", "p99", "max",
			})

			for _, s := range scenarios {
				result, err := runScenario(s)
				if err != nil {
					return describe(fmt.Errorf("scenario %s: %w", s.Name, err))
				}
				calc := result.timings.Calc()
				tbl.AppendRow(table.Row{
					s.Name,
					humanize.Comma(int64(s.Iterations)),
					humanize.Comma(result.patches),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				})
			}

			tbl.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&scenarioPath, "scenarios", "s", "", "YAML scenario file (default: built-in set)")
	return cmd
}

// describe maps engine sentinels to their registry codes so the CLI can
// print the full diagnostic.
func describe(err error) error {
	switch {
	case errors.Is(err, reactive.ErrOrderingViolation):
		return rferrors.FromError(err, "E021")
	case errors.Is(err, reactive.ErrFlushReentered):
		return rferrors.FromError(err, "E022")
	case errors.Is(err, reactive.ErrDisposedSignal):
		return rferrors.FromError(err, "E001")
	case errors.Is(err, tree.ErrHandleExpired):
		return rferrors.FromError(err, "E040")
	}
	return err
}

type scenarioResult struct {
	timings *tachymeter.Tachymeter
	patches int64
}

func runScenario(s Scenario) (*scenarioResult, error) {
	switch s.Kind {
	case "propagate":
		return runPropagate(s)
	case "list":
		return runList(s)
	default:
		return nil, fmt.Errorf("unknown kind %q", s.Kind)
	}
}

// runPropagate times writes through a Width x Depth grid of memo chains.
func runPropagate(s Scenario) (*scenarioResult, error) {
	store := reactive.NewStore()
	src := reactive.NewSignal(store, 0)

	for w := 0; w < s.Width; w++ {
		last := func() int { return src.Get() }
		for d := 0; d < s.Depth; d++ {
			prev := last
			m := reactive.NewMemo(store, func() int { return prev() + 1 })
			last = m.Get
		}
		chain := last
		_ = reactive.NewEffect(store, func() error {
			chain()
			return nil
		})
	}

	tach := tachymeter.New(&tachymeter.Config{Size: s.Iterations})
	for i := 0; i < s.Iterations; i++ {
		start := time.Now()
		if err := src.Set(i + 1); err != nil {
			return nil, err
		}
		if err := store.Flush(); err != nil {
			return nil, err
		}
		tach.AddTime(time.Since(start))
	}

	return &scenarioResult{timings: tach}, nil
}

// runList times keyed list rotations through a mounted component,
// exercising render, diff, and patch emission per flush.
func runList(s Scenario) (*scenarioResult, error) {
	var patches int64
	root := runtime.New(runtime.WithRenderer(func(ps []tree.Patch) {
		patches += int64(len(ps))
	}))
	defer root.Dispose()

	keys := make([]string, s.ListSize)
	for i := range keys {
		keys[i] = "k" + strconv.Itoa(i)
	}
	items := reactive.NewSignal(root.Store(), keys)

	_, _, err := root.Mount(func() *tree.Node {
		current := items.Get()
		children := make([]*tree.Node, len(current))
		for i, k := range current {
			children[i] = tree.El("li", nil, tree.Text(k)).WithKey(k)
		}
		return tree.El("ul", nil, children...)
	})
	if err != nil {
		return nil, err
	}

	tach := tachymeter.New(&tachymeter.Config{Size: s.Iterations})
	for i := 0; i < s.Iterations; i++ {
		rotated := append(append([]string{}, keys[1:]...), keys[0])
		keys = rotated

		start := time.Now()
		if err := items.Set(rotated); err != nil {
			return nil, err
		}
		if err := root.Flush(); err != nil {
			return nil, err
		}
		tach.AddTime(time.Since(start))
	}

	return &scenarioResult{timings: tach, patches: patches}, nil
}
