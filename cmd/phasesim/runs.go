package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/phasesim/internal/config"
	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/recorder"
	"github.com/san-kum/phasesim/internal/storage"
)

const maxPlots = 6

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tPRESET\tTIME\tDURATION\tDT\tINTEG\tEVENTS")

	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Scenario,
			p,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			len(run.Events),
		)
	}

	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range registry.Names() {
		runner, err := registry.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", name, runner.Description())
	}
	return w.Flush()
}

// loadRun returns the named run, or the latest one when no ID is given.
func loadRun(args []string) (*storage.Store, *storage.RunMetadata, error) {
	st := storage.New(dataDir)
	if len(args) == 0 || args[0] == "latest" {
		meta, err := st.Latest()
		return st, meta, err
	}
	meta, err := st.Load(args[0])
	return st, meta, err
}

func loadRunSamples(args []string) (*storage.RunMetadata, *recorder.Table, error) {
	st, meta, err := loadRun(args)
	if err != nil {
		return nil, nil, err
	}
	table, err := st.LoadSamples(meta.ID)
	if err != nil {
		return nil, nil, err
	}
	return meta, table, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRunSamples(args)
	if err != nil {
		return err
	}
	if table.Len() < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", table.Len())

	names := table.Names
	if channel != "" {
		if _, ok := table.Column(channel); !ok {
			return fmt.Errorf("unknown channel %s (available: %v)", channel, table.Names)
		}
		names = []string{channel}
	}
	if len(names) > maxPlots {
		names = names[:maxPlots]
	}

	for _, name := range names {
		data, _ := table.Column(name)
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s vs time (%.2fs to %.2fs)", name, table.Times[0], table.Times[table.Len()-1])),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	_, meta, err := loadRun(args)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRunSamples(args[:1])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		return storage.ExportJSON(os.Stdout, *meta, table)
	}

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(f, *meta, table); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", args[1])
	return nil
}

func exportXLSX(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRunSamples(args[:1])
	if err != nil {
		return err
	}
	if err := storage.ExportXLSX(args[1], *meta, table); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", args[1])
	return nil
}

func exportSQLite(cmd *cobra.Command, args []string) error {
	meta, table, err := loadRunSamples(args[:1])
	if err != nil {
		return err
	}
	if err := storage.ExportSQLite(args[1], *meta, table); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", meta.ID, args[1])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenarios := experiment.NewRegistry().Names()
	if len(args) == 1 {
		scenarios = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tPRESET\tINTEG\tDT\tDURATION\tPARAMS")
	for _, scenario := range scenarios {
		presets := config.ListPresets(scenario)
		if len(presets) == 0 && len(args) == 1 {
			return fmt.Errorf("no presets for scenario: %s", scenario)
		}
		for _, name := range presets {
			p := config.GetPreset(scenario, name)
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%v\n", scenario, name, p.Integrator, p.Dt, p.Duration, p.Params)
		}
	}
	return w.Flush()
}
