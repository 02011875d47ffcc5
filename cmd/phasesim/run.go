package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/phasesim/internal/config"
	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/sim"
	"github.com/san-kum/phasesim/internal/storage"
	"github.com/san-kum/phasesim/internal/viz"
)

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if csvPath != "" {
		cfg.Output = csvPath
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	expCfg := experimentConfig(cfg)
	if !env.NoProgress {
		bar := newProgressBar(stepCount(cfg.Dt, cfg.Duration), cfg.Scenario)
		atexit.Register(func() { bar.Exit() })
		expCfg.Hooks = append(expCfg.Hooks, sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == sim.HookPosStepCommitted {
				bar.Add64(1) //nolint:errcheck
			}
		}))
		defer bar.Finish() //nolint:errcheck
	}

	start := time.Now()
	outcome, err := experiment.NewRegistry().Run(ctx, expCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printOutcome(os.Stdout, outcome)
	fmt.Printf("\n%d steps in %s\n", outcome.Steps, elapsed.Round(time.Microsecond))

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(metadataFor(cfg, preset, outcome), outcome.Table)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", runID)
	return nil
}

type batchResult struct {
	preset  string
	runID   string
	outcome *experiment.Outcome
	err     error
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario := args[0]
	names := args[1:]
	if len(names) == 0 {
		names = config.ListPresets(scenario)
	}
	if len(names) == 0 {
		return fmt.Errorf("no presets for scenario %s", scenario)
	}

	cfgs := make([]*config.Config, len(names))
	for i, name := range names {
		cfgs[i] = config.GetPreset(scenario, name)
		if cfgs[i] == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(scenario))
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	limit := workers
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(limit)

	registry := experiment.NewRegistry()
	results := make([]batchResult, len(names))
	var mu sync.Mutex
	completed := 0

	for i := range cfgs {
		i := i
		g.Go(func() error {
			res := batchResult{preset: names[i]}
			defer func() {
				results[i] = res
				mu.Lock()
				completed++
				fmt.Fprintf(os.Stderr, "\r[%3.0f%%] %d/%d runs", float64(completed)/float64(len(names))*100, completed, len(names))
				mu.Unlock()
			}()

			expCfg := experimentConfig(cfgs[i])
			expCfg.Logger = logger.With("preset", names[i])
			res.outcome, res.err = registry.Run(ctx, expCfg)
			if res.err != nil {
				return nil
			}
			res.runID, res.err = st.Save(metadataFor(cfgs[i], names[i], res.outcome), res.outcome.Table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tRUN\tSTEPS\tEVENTS\tSTATUS")
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", res.preset, res.err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\tok\n", res.preset, res.runID, res.outcome.Steps, len(res.outcome.Events))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(results))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	m := viz.NewModel(cfg.Scenario, cfg.Duration, "pos_x", "pos_y")
	p := tea.NewProgram(m)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var delay time.Duration
	if pace > 0 {
		delay = time.Duration(cfg.Dt / pace * float64(time.Second))
	}

	expCfg := experimentConfig(cfg)
	// the view owns the terminal
	expCfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	expCfg.OnSample = viz.Observer(p, delay)
	expCfg.Hooks = append(expCfg.Hooks, viz.EventHook(p))

	go func() {
		outcome, err := experiment.NewRegistry().Run(ctx, expCfg)
		p.Send(viz.DoneMsg{Outcome: outcome, Err: err})
	}()

	_, err = p.Run()
	return err
}

func newProgressBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// stepCount is the number of steps a run of the given length takes.
func stepCount(dt, duration float64) int64 {
	if !(dt > 0) || !(duration > 0) {
		return 0
	}
	n := int64(math.Ceil(duration / dt))
	// the loop compares dt*step against the end time, not the quotient
	for n > 0 && dt*float64(n-1) >= duration {
		n--
	}
	for dt*float64(n) < duration {
		n++
	}
	return n
}

func parseParams(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("param %s=%q: %w", k, v, dynamo.ErrInvalidConfig)
		}
		out[k] = f
	}
	return out, nil
}

func metadataFor(cfg *config.Config, presetName string, o *experiment.Outcome) storage.RunMetadata {
	meta := storage.RunMetadata{
		Scenario:   cfg.Scenario,
		Preset:     presetName,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		Params:     cfg.Params,
		Steps:      o.Steps,
		FinalTime:  o.FinalTime,
		Summary:    o.Summary,
		Events:     make([]storage.EventMeta, 0, len(o.Events)),
	}
	for _, ev := range o.Events {
		meta.Events = append(meta.Events, storage.EventMeta{
			Name:       ev.Name,
			Time:       ev.Time,
			Step:       ev.Step,
			Iterations: ev.Iterations,
			Converged:  ev.Converged,
		})
	}
	return meta
}

func printOutcome(w io.Writer, o *experiment.Outcome) {
	fmt.Fprintln(w, viz.HeaderStyle.Render(strings.ToUpper(o.Scenario)))
	fmt.Fprintln(w, viz.MetricLabel.Render("final time")+viz.MetricValue.Render(fmt.Sprintf("%.4fs", o.FinalTime)))
	for _, k := range o.SummaryKeys() {
		fmt.Fprintln(w, viz.MetricLabel.Render(k)+viz.MetricValue.Render(fmt.Sprintf("%.6g", o.Summary[k])))
	}
	if len(o.Events) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EVENT\tTIME\tSTEP\tITER\tCONVERGED")
	for _, ev := range o.Events {
		fmt.Fprintf(tw, "%s\t%.6f\t%d\t%d\t%t\n", ev.Name, ev.Time, ev.Step, ev.Iterations, ev.Converged)
	}
	tw.Flush()
}
