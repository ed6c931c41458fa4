package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/export"
	"github.com/san-kum/orbsim/internal/metrics"
	"github.com/san-kum/orbsim/internal/physics"
	"github.com/san-kum/orbsim/internal/session"
	"github.com/san-kum/orbsim/internal/storage"
	"github.com/san-kum/orbsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logFile  string

	preset     string
	configFile string
	steps      int
	fps        int
	timeScale  float64
	scale      float64
	lock       string
	zAxis      bool
	backend    string

	svgWidth  int
	svgHeight int
	outPath   string

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbsim",
		Short: "gravitational n-body sandbox",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(tuiLogger())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to file instead of stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and record it",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", 5000, "number of ticks")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().StringVar(&backend, "backend", "tea", "terminal backend (tea, tcell)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot distance from origin body over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render recorded orbits to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the stepper",
		RunE:  benchPreset,
	}
	benchCmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "preset configuration")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBODIES\tTIME SCALE\tDT")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%.0fx\t%.0fs\n", name, len(cfg.Bodies), cfg.TimeScale, cfg.Dt())
			}
			return w.Flush()
		},
	}

	bodiesCmd := &cobra.Command{
		Use:   "bodies",
		Short: "show the bodies of a configuration",
		RunE:  showBodies,
	}
	addConfigFlags(bodiesCmd)

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a preset as an editable config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			logger.Info("config written", "path", args[0], "preset", cfg.Name)
			return nil
		},
	}
	addConfigFlags(initCmd)

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportSVGCmd, benchCmd, presetsCmd, bodiesCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger() error {
	var out io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		out = f
	}

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	logger = log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "orbsim",
	})
	return nil
}

// tuiLogger is the logger for commands that take over the terminal. Without
// --log-file, stderr would scribble over the screen, so logs are dropped.
func tuiLogger() *log.Logger {
	if logFile == "" {
		return log.New(io.Discard)
	}
	return logger
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "ticks per wall-clock second")
	cmd.Flags().Float64Var(&timeScale, "time-scale", config.DefaultTimeScale, "simulated seconds per wall-clock second")
	cmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "initial pixels per meter")
	cmd.Flags().StringVar(&lock, "lock", "", "body to keep centered")
	cmd.Flags().BoolVar(&zAxis, "z-axis", false, "integrate velocity on the z axis")
}

// loadConfig applies preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("%w: unknown preset %q (available: %v)", dynamo.ErrInvalidConfig, preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("time-scale") {
		cfg.TimeScale = timeScale
	}
	if flags.Changed("scale") {
		cfg.Scale = scale
	}
	if flags.Changed("lock") {
		cfg.Lock = lock
	}
	if flags.Changed("z-axis") {
		cfg.EnableZAxis = zAxis
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sess, err := session.FromConfig(cfg, 800, 600, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	rec := storage.NewRecorder(cfg.RecordEvery)
	opts := sess.Options()
	ms := metrics.Defaults(opts.G, opts.Epsilon, boundRadius(sess.Bodies()))
	rec.OnStep(0, 0, sess.Bodies())
	for _, m := range ms {
		m.OnStep(0, 0, sess.Bodies())
		sess.AddObserver(m)
	}
	sess.AddObserver(rec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running simulation", "preset", cfg.Name, "bodies", len(cfg.Bodies), "steps", steps, "dt", cfg.Dt())
	start := time.Now()

	if err := sess.Start(ctx, session.StepDriver{Steps: steps}); err != nil {
		return err
	}
	runErr := sess.Wait()
	elapsed := time.Since(start)
	if runErr != nil {
		logger.Warn("run ended early, saving partial trajectory", "err", runErr)
	}

	meta := storage.RunMetadata{
		Preset:    cfg.Name,
		Dt:        cfg.Dt(),
		FPS:       cfg.FPS,
		TimeScale: cfg.TimeScale,
		Steps:     sess.Steps(),
		Duration:  sess.Time(),
		Bodies:    sess.Names(),
		Colors:    cfg.Colors(),
		Skipped:   sess.Skipped(),
		Metrics:   metrics.Collect(ms),
	}
	runID, err := st.Save(meta, rec.Samples())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%.2f days simulated)\n", meta.Steps, meta.Duration/86400)
	fmt.Printf("samples: %d\n", rec.Len())
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(meta.Metrics) {
		fmt.Printf("  %s: %.6g\n", name, meta.Metrics[name])
	}

	return runErr
}

// boundRadius is ten times the initial spread of the system.
func boundRadius(bodies []dynamo.Body) float64 {
	com := physics.CenterOfMass(bodies)
	r := 0.0
	for _, b := range bodies {
		r = max(r, b.Position.Sub(com).Length())
	}
	if r == 0 {
		return 1
	}
	return 10 * r
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	switch backend {
	case "tea":
		return viz.RunLive(cfg, tuiLogger())
	case "tcell":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return viz.RunTcell(ctx, cfg, tuiLogger())
	default:
		return fmt.Errorf("unknown backend %q (want tea or tcell)", backend)
	}
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSTEPS\tSIMULATED\tDT\tBODIES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fd\t%.0fs\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Duration/86400,
			run.Dt,
			strings.Join(run.Bodies, ","),
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

	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 || len(meta.Bodies) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(samples))

	ref := storage.Track(samples, meta.Bodies[0])
	for _, name := range meta.Bodies[1:] {
		track := storage.Track(samples, name)
		n := min(len(track), len(ref))
		data := make([]float64, n)
		for i := 0; i < n; i++ {
			data[i] = track[i].Sub(ref[i]).Length() / 1000
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s distance from %s (km)", name, meta.Bodies[0])),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if len(meta.Metrics) > 0 {
		fmt.Println("metrics:")
		for _, name := range sortedKeys(meta.Metrics) {
			fmt.Printf("  %s: %.6g\n", name, meta.Metrics[name])
		}
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	return storage.WriteJSON(os.Stdout, &storage.ExportData{RunMetadata: *meta})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	logger.Info("exported", "run", args[0], "path", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	svg, err := export.TrajectoryToSVG(samples, meta.Colors, svgWidth, svgHeight)
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("svg written", "run", runID, "path", path)
	return nil
}

func benchPreset(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return fmt.Errorf("%w: unknown preset %q", dynamo.ErrInvalidConfig, preset)
	}

	fmt.Printf("benchmarking %s\n\n", preset)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tTIME\tSTEPS/SEC")

	for _, n := range []int{1000, 10000, 100000} {
		sess, err := session.FromConfig(cfg, 800, 600, logger)
		if err != nil {
			return err
		}

		start := time.Now()
		if err := sess.Start(context.Background(), session.StepDriver{Steps: n}); err != nil {
			return err
		}
		err = sess.Wait()
		elapsed := time.Since(start)
		sess.Close()
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%d\t%v\t%.0f\n", n, elapsed, float64(n)/elapsed.Seconds())
	}

	return w.Flush()
}

func showBodies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	colors := cfg.Colors()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMASS (kg)\tRADIUS (km)\tPOSITION (km)\tSPEED (m/s)\tCOLOR")
	for _, b := range cfg.ToBodies() {
		fmt.Fprintf(w, "%s\t%.4g\t%.0f\t(%.0f, %.0f, %.0f)\t%.1f\t%s\n",
			b.Name, b.Mass, b.Radius/1000,
			b.Position.X/1000, b.Position.Y/1000, b.Position.Z/1000,
			b.Velocity.Length(), colors[b.Name])
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
