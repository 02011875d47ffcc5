package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/san-kum/phasesim/internal/config"
	"github.com/san-kum/phasesim/internal/experiment"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	integrator string
	motorFile  string
	params     map[string]string
	configFile string
	preset     string
	csvPath    string
	noSave     bool
	pace       float64
	channel    string
	workers    int
)

var (
	env    config.Env
	logger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "phasesim",
		Short:        "fixed-step simulation with event location",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			env, err = config.LoadEnv(".env")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("data") {
				dataDir = env.DataDir
			}
			logger, err = newLogger(env, os.Stderr)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "runs", "data directory (default from PHASESIM_DATA)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and store the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().StringVar(&csvPath, "csv", "", "also write samples to this CSV file")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list available scenarios",
		RunE:  listScenarios,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded channels of a run (latest when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&channel, "channel", "", "plot only this channel")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id] [output]",
		Short: "export a run as JSON (stdout when output is omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportJSON,
	}

	exportXLSXCmd := &cobra.Command{
		Use:   "export-xlsx [run_id] [output]",
		Short: "export a run as an Excel workbook",
		Args:  cobra.ExactArgs(2),
		RunE:  exportXLSX,
	}

	exportSQLiteCmd := &cobra.Command{
		Use:   "export-sqlite [run_id] [database]",
		Short: "append a run to a SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSQLite,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().Float64Var(&pace, "speed", 1.0, "playback speed relative to simulated time (0 runs flat out)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario] [preset...]",
		Short: "run presets of a scenario concurrently (all when none given)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default number of CPUs)")

	rootCmd.AddCommand(runCmd, listCmd, scenariosCmd, plotCmd, exportCmd, exportJSONCmd,
		exportXLSXCmd, exportSQLiteCmd, presetsCmd, liveCmd, batchCmd)

	code := 0
	if err := rootCmd.Execute(); err != nil {
		code = 1
	}
	atexit.Exit(code)
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (rk4, euler)")
	cmd.Flags().StringVar(&motorFile, "motor", "", "RASP .eng motor file (rocket)")
	cmd.Flags().StringToStringVar(&params, "param", nil, "scenario parameter, name=value (repeatable)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func newLogger(e config.Env, w io.Writer) (*slog.Logger, error) {
	level, err := e.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if e.JSONLogs() {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// resolveConfig layers the preset, the config file and explicitly set flags,
// in that order.
func resolveConfig(cmd *cobra.Command, scenario string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Scenario = scenario

	if preset != "" {
		p := config.GetPreset(scenario, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scenario))
		}
		cfg = p
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if fileCfg.Scenario != scenario {
			return nil, fmt.Errorf("config file is for scenario %s, not %s", fileCfg.Scenario, scenario)
		}
		for k, v := range cfg.Params {
			if _, ok := fileCfg.Params[k]; !ok {
				fileCfg.SetParam(k, v)
			}
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("motor") {
		cfg.MotorFile = motorFile
	}
	overrides, err := parseParams(params)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		cfg.SetParam(k, v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func experimentConfig(cfg *config.Config) experiment.Config {
	return experiment.Config{
		Scenario:   cfg.Scenario,
		Integrator: cfg.Integrator,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Params:     cfg.Params,
		MotorFile:  cfg.MotorFile,
		CSVPath:    cfg.Output,
		Logger:     logger,
	}
}
