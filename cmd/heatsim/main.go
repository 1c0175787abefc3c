package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/heatsim/internal/analysis"
	"github.com/san-kum/heatsim/internal/automation"
	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/export"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/logging"
	"github.com/san-kum/heatsim/internal/metrics"
	"github.com/san-kum/heatsim/internal/optim"
	"github.com/san-kum/heatsim/internal/server"
	"github.com/san-kum/heatsim/internal/sim"
	"github.com/san-kum/heatsim/internal/storage"
	"github.com/san-kum/heatsim/internal/tui"
	"github.com/san-kum/heatsim/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	// Simulation parameters
	rows          int
	cols          int
	ambientTemp   float64
	sourceTemp    float64
	diffusionRate float64
	coolingRate   float64
	dt            float64
	radius        float64
	pattern       string
	duration      float64
	track         bool
	frameRate     int
	// Config file
	configFile string
	// Preset name
	preset string
	// Outputs
	noSave    bool
	gifPath   string
	addr      string
	loop      bool
	palette   string
	cellSize  int
	outPath   string
	chartPath string
	svgPath   string
	withField bool
	// Sweeps
	sweepSteps int
	gridSpecs  []string
)

// main is the entry point for the heatsim CLI; it registers commands and
// flags and executes the root command.
func main() {
	rootCmd := &cobra.Command{
		Use:          "heatsim",
		Short:        "moving heat source diffusion simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".heatsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&gifPath, "gif", viz.DefaultGIFPath, "GIF recording output path")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "run simulation with a plain ANSI heatmap",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	addSimFlags(watchCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream simulation frames over websocket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	serveCmd.Flags().BoolVar(&loop, "loop", false, "restart the run when it finishes")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run history to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().BoolVar(&withField, "field", false, "include the final field")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render the final field and radius history as images",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVar(&outPath, "out", "", "heatmap PNG path (default <run_id>.png)")
	exportPNGCmd.Flags().StringVar(&chartPath, "chart", "", "radius chart PNG path")
	exportPNGCmd.Flags().StringVar(&svgPath, "svg", "", "heatmap SVG path")
	exportPNGCmd.Flags().StringVar(&palette, "palette", export.DefaultPalette, "colour palette ("+strings.Join(export.PaletteNames(), ", ")+")")
	exportPNGCmd.Flags().IntVar(&cellSize, "cell", 8, "pixels per grid cell")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "beam path and periodicity analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [pattern] [pattern] ...",
		Short: "compare trajectory patterns side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE:  comparePatterns,
	}
	addSimFlags(compareCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of preset steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [min] [max]",
		Short: "sweep one parameter and tabulate the outcome (" + strings.Join(config.TunableParams(), ", ") + ")",
		Args:  cobra.ExactArgs(3),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of sweep points")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [metric]",
		Short: "grid search parameters minimising a metric (prefix '-' to maximise)",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimize,
	}
	addSimFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "parameter values, e.g. cooling_rate=0.01,0.05,0.1 (repeatable)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, watchCmd, serveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportPNGCmd, analyzeCmd, compareCmd, scenarioCmd, sweepCmd, optimizeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or ini)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration ("+strings.Join(config.ListPresets(), ", ")+")")
	cmd.Flags().IntVar(&rows, "rows", d.GridSize[0], "grid rows")
	cmd.Flags().IntVar(&cols, "cols", d.GridSize[1], "grid columns")
	cmd.Flags().Float64Var(&ambientTemp, "ambient", d.AmbientTemp, "ambient temperature")
	cmd.Flags().Float64Var(&sourceTemp, "source-temp", d.SourceTemp, "source temperature")
	cmd.Flags().Float64Var(&diffusionRate, "diffusion", d.DiffusionRate, "diffusion rate")
	cmd.Flags().Float64Var(&coolingRate, "cooling", d.CoolingRate, "cooling rate")
	cmd.Flags().Float64Var(&dt, "dt", d.TimeStep, "timestep")
	cmd.Flags().Float64Var(&radius, "radius", d.SourceRadius, "source radius (0 for a point source)")
	cmd.Flags().StringVar(&pattern, "pattern", d.Pattern, "trajectory ("+strings.Join(heat.Patterns(), ", ")+")")
	cmd.Flags().Float64Var(&duration, "time", d.Duration, "duration in seconds")
	cmd.Flags().BoolVar(&track, "track", d.TrackDissipation, "track heat dissipation radius")
	cmd.Flags().IntVar(&frameRate, "fps", d.FrameRate, "frame rate")
}

// resolveConfig layers preset < config file < explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("rows") {
		cfg.GridSize[0] = rows
	}
	if flags.Changed("cols") {
		cfg.GridSize[1] = cols
	}
	if flags.Changed("ambient") {
		cfg.AmbientTemp = ambientTemp
	}
	if flags.Changed("source-temp") {
		cfg.SourceTemp = sourceTemp
	}
	if flags.Changed("diffusion") {
		cfg.DiffusionRate = diffusionRate
	}
	if flags.Changed("cooling") {
		cfg.CoolingRate = coolingRate
	}
	if flags.Changed("dt") {
		cfg.TimeStep = dt
	}
	if flags.Changed("radius") {
		cfg.SourceRadius = radius
	}
	if flags.Changed("pattern") {
		cfg.Pattern = pattern
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("track") {
		cfg.TrackDissipation = track
	}
	if flags.Changed("fps") {
		cfg.FrameRate = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() (*log.Logger, error) {
	return logging.New(logLevel, logFormat)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func metricOptions() []sim.Option {
	opts := make([]sim.Option, 0)
	for _, m := range metrics.Default() {
		opts = append(opts, sim.WithMetric(m))
	}
	return opts
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	sc, err := cfg.Sim()
	if err != nil {
		return err
	}

	s, err := sim.New(sc, append(metricOptions(), sim.WithLogger(logger))...)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s simulation...\n", sc.Pattern)
	start := time.Now()

	result, err := s.Run(ctx, sc.Duration, sc.Pattern)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	canceled := err != nil

	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	if canceled {
		fmt.Printf("interrupted after %d ticks\n", result.Ticks)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(preset, cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("ticks: %d\n", result.Ticks)
	if n := len(result.Distances); n > 0 {
		fmt.Printf("final radius: %.4f\n", result.Distances[n-1])
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := cfg.Sim()
	if err != nil {
		return err
	}

	s, err := sim.New(sc)
	if err != nil {
		return err
	}

	m := viz.NewModel(s, sc.Pattern, cfg.FrameRate).WithGIFPath(gifPath)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	sc, err := cfg.Sim()
	if err != nil {
		return err
	}

	renderer := tui.NewLiveRenderer(string(sc.Pattern), cfg.FrameRate)
	opts := []sim.Option{sim.WithObserver(renderer), sim.WithLogger(logger)}
	if cfg.FrameRate > 0 {
		pacer := sim.NewTickerPacer(cfg.FrameRate)
		defer pacer.Stop()
		opts = append(opts, sim.WithPacer(pacer))
	}

	s, err := sim.New(sc, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	renderer.Start()
	defer renderer.Stop()

	result, err := s.Run(ctx, sc.Duration, sc.Pattern)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Printf("\n%d ticks, %d frames drawn\n", result.Ticks, renderer.Frames())
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	sc, err := cfg.Sim()
	if err != nil {
		return err
	}

	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	var inner sim.Pacer
	if cfg.FrameRate > 0 {
		pacer := sim.NewTickerPacer(cfg.FrameRate)
		defer pacer.Stop()
		inner = pacer
	}
	gate := server.NewGate(inner)

	s, err := sim.New(sc, sim.WithPacer(gate), sim.WithObserver(collector), sim.WithLogger(logger))
	if err != nil {
		return err
	}

	srv := server.New(
		server.WithGate(gate),
		server.WithCollector(collector),
		server.WithLoop(loop),
		server.WithLogger(logger),
	)

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("streaming %s on %s (ws: /ws, metrics: /metrics)\n", sc.Pattern, addr)
	return srv.ListenAndServe(ctx, addr, s, sc.Duration, sc.Pattern)
}

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
	fmt.Fprintln(w, "ID\tPRESET\tPATTERN\tTIME\tGRID\tRADIUS\tDURATION\tTICKS")

	for _, run := range runs {
		name := run.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dx%d\t%.1f\t%.2fs\t%d\n",
			run.ID,
			name,
			run.Config.Pattern,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.GridSize[0], run.Config.GridSize[1],
			run.Config.SourceRadius,
			run.Config.Duration,
			run.Ticks,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	h, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	if len(h.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("pattern: %s\n", meta.Config.Pattern)
	fmt.Printf("samples: %d\n\n", len(h.Times))

	xs := make([]float64, len(h.Sources))
	ys := make([]float64, len(h.Sources))
	for i, p := range h.Sources {
		xs[i], ys[i] = p.X, p.Y
	}

	series := []struct {
		data    []float64
		caption string
	}{
		{h.Distances, "heat radius vs time"},
		{xs, "beam row (x) vs time"},
		{ys, "beam column (y) vs time"},
	}
	for _, s := range series {
		if len(s.data) == 0 {
			continue
		}
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	h, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	if len(h.Times) == 0 {
		return fmt.Errorf("no data to export")
	}

	return export.WriteHistoryCSV(os.Stdout, h.Times, h.Sources, h.Distances)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	h, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	data := &export.ExportData{
		Pattern:   meta.Config.Pattern,
		Rows:      meta.Config.GridSize[0],
		Cols:      meta.Config.GridSize[1],
		Radius:    meta.Config.SourceRadius,
		Dt:        meta.Config.TimeStep,
		Duration:  meta.Config.Duration,
		Steps:     len(h.Times),
		Times:     h.Times,
		Sources:   h.Sources,
		Distances: h.Distances,
		Metrics:   meta.Metrics,
	}
	if withField {
		if data.Field, err = st.LoadField(runID); err != nil {
			return err
		}
	}

	return export.WriteJSON(os.Stdout, data)
}

func exportPNG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	field, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	grad, err := export.Palette(palette)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = runID + ".png"
	}
	if err := writeFile(outPath, func(f *os.File) error {
		return export.WriteFieldPNG(f, field, cellSize, grad)
	}); err != nil {
		return err
	}
	fmt.Printf("heatmap: %s\n", outPath)

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.FieldToSVG(field, cellSize, grad)), 0644); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", svgPath)
	}

	if chartPath != "" {
		h, err := st.LoadHistory(runID)
		if err != nil {
			return err
		}
		if err := writeFile(chartPath, func(f *os.File) error {
			return export.WriteRadiusChart(f, h.Times, h.Distances)
		}); err != nil {
			return err
		}
		fmt.Printf("chart: %s\n", chartPath)
	}

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	h, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	if len(h.Times) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("beam analysis: %s\n", meta.ID)
	fmt.Printf("pattern: %s\n\n", meta.Config.Pattern)

	rows, cols := meta.Config.GridSize[0], meta.Config.GridSize[1]
	fmt.Print(analysis.PathToASCII(h.Sources, rows, cols, 60, 20))
	fmt.Println()

	ys := make([]float64, len(h.Sources))
	for i, p := range h.Sources {
		ys[i] = p.Y
	}

	ps := analysis.PowerSpectrum(ys)
	if len(ps) > 1 {
		plotData := ps[:max(len(ps)/4, 2)]
		graph := asciigraph.Plot(plotData,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("power spectrum (beam column)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	dt := meta.Config.TimeStep
	if period, ok := analysis.DominantPeriod(ys, dt); ok {
		fmt.Printf("beam period: %.3f s\n", period)
	} else {
		fmt.Println("beam period: none (stationary)")
	}
	if len(h.Distances) > 0 {
		if period, ok := analysis.DominantPeriod(h.Distances, dt); ok {
			fmt.Printf("radius period: %.3f s\n", period)
		}
	}

	return nil
}

func comparePatterns(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	configs := make([]sim.Config, 0, len(args))
	for _, name := range args {
		c := cfg.Clone()
		c.Pattern = name
		sc, err := c.Sim()
		if err != nil {
			return err
		}
		configs = append(configs, sc)
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("comparing patterns (%dx%d, dt=%.3f, duration=%.1fs)\n\n",
		cfg.GridSize[0], cfg.GridSize[1], cfg.TimeStep, cfg.Duration)

	start := time.Now()
	results, err := sim.NewEnsemble(configs, metrics.Default, logger).Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATTERN\tFINAL_RADIUS\tPEAK\tMEAN_EXCESS\tHEATED")
	for i, res := range results {
		radius := "-"
		if cfg.TrackDissipation {
			radius = fmt.Sprintf("%.4f", res.Metrics["final_radius"])
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.4f\t%.0f\n",
			configs[i].Pattern,
			radius,
			res.Metrics["peak_temp"],
			res.Metrics["mean_excess"],
			res.Metrics["heated_cells"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ncompleted in %v\n", elapsed)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}

	results, err := automation.RunScenario(ctx, scenario, logger)

	st := storage.New(dataDir)
	for i, r := range results {
		name := r.Step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		fmt.Printf("\n[%s] %s, %d ticks\n", name, r.Config.Pattern, r.Result.Ticks)
		for _, k := range sortedKeys(r.Result.Metrics) {
			fmt.Printf("  %-14s %.4f\n", k, r.Result.Metrics[k])
		}
		if r.Step.SaveAs == "" {
			continue
		}
		if err := st.Init(); err != nil {
			return err
		}
		runID, serr := st.Save(r.Step.SaveAs, r.Config, r.Result)
		if serr != nil {
			return fmt.Errorf("failed to save %s: %w", name, serr)
		}
		fmt.Printf("  saved: %s\n", runID)
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid min: %w", err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid max: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: args[0],
		ParamMin:  lo,
		ParamMax:  hi,
		NumSteps:  sweepSteps,
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL_RADIUS\tPEAK\tMEAN_EXCESS\tHEATED\tSTABLE\n", strings.ToUpper(args[0]))
	for _, r := range results {
		radius := "-"
		if cfg.TrackDissipation {
			radius = fmt.Sprintf("%.4f", r.FinalRadius)
		}
		fmt.Fprintf(w, "%.4f\t%s\t%.2f\t%.4f\t%.0f\t%v\n", r.ParamValue, radius, r.PeakTemp, r.MeanExcess, r.HeatedCells, r.Stable)
	}
	return w.Flush()
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridSpecs) == 0 {
		return errors.New("at least one --grid is required")
	}

	names := make([]string, 0, len(gridSpecs))
	ranges := make([][]float64, 0, len(gridSpecs))
	for _, entry := range gridSpecs {
		name, list, ok := strings.Cut(entry, "=")
		if !ok {
			return fmt.Errorf("invalid grid %q, want name=v1,v2", entry)
		}
		vals := make([]float64, 0)
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return fmt.Errorf("grid %s: %w", name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	ctx, stop := signalContext()
	defer stop()

	best, val, err := optim.NewGridSearch(names, ranges).Search(ctx, cfg, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("best %s = %.4f\n", strings.TrimPrefix(args[0], "-"), val)
	for _, name := range names {
		fmt.Printf("  %-14s %.4f\n", name, best[name])
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPATTERN\tRADIUS\tSOURCE\tTRACKED")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.0f\t%t\n", name, p.Pattern, p.SourceRadius, p.SourceTemp, p.TrackDissipation)
	}
	return w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
