package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/peridyn/internal/config"
	"github.com/san-kum/peridyn/internal/material"
	"github.com/san-kum/peridyn/internal/mesh"
	"github.com/san-kum/peridyn/internal/sim"
	"github.com/san-kum/peridyn/internal/storage"
	"github.com/san-kum/peridyn/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string

	horizon  float64
	capacity int
	useGrid  bool
	dt       float64
	steps    int
	loadRate float64
	workers  int

	nx       int
	ny       int
	spacing  float64
	meshFile string

	crackOn   bool
	crackX    float64
	crackYMin float64
	crackYMax float64

	snapshotDir   string
	snapshotEvery int

	frameRate int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "peridyn",
		Short: "peridynamic bond fracture lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".peridyn", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a fracture simulation",
		RunE:  runSimulation,
	}
	addProblemFlags(runCmd)
	runCmd.Flags().StringVar(&snapshotDir, "vtk-dir", "", "directory for VTK snapshots")
	runCmd.Flags().IntVar(&snapshotEvery, "vtk-every", 10, "steps between VTK snapshots")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the damage history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark neighbour-list build and bond breaking",
		RunE:  benchProblem,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addProblemFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLATTICE\tHORIZON\tSTEPS\tCRACK")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dx%d\t%.3f\t%d\t%v\n",
					name, p.Mesh.NX, p.Mesh.NY, p.Horizon, p.Steps, p.Crack.Enabled)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, benchCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset configuration name")
	cmd.Flags().Float64Var(&horizon, "horizon", config.DefaultHorizon, "bond horizon")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "row capacity (0 = auto)")
	cmd.Flags().BoolVar(&useGrid, "grid", false, "use cell-grid accelerated neighbour search")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64Var(&loadRate, "load-rate", config.DefaultLoadRate, "boundary load rate")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all cores)")
	cmd.Flags().IntVar(&nx, "nx", config.DefaultNX, "lattice width")
	cmd.Flags().IntVar(&ny, "ny", config.DefaultNY, "lattice height")
	cmd.Flags().Float64Var(&spacing, "spacing", 0, "lattice spacing (0 = unit plate)")
	cmd.Flags().StringVar(&meshFile, "mesh", "", "gmsh mesh file (overrides lattice)")
	cmd.Flags().BoolVar(&crackOn, "crack", false, "cut an initial crack")
	cmd.Flags().Float64Var(&crackX, "crack-x", 0.5+1e-6, "crack line x position")
	cmd.Flags().Float64Var(&crackYMin, "crack-ymin", 0.35, "crack span lower bound")
	cmd.Flags().Float64Var(&crackYMax, "crack-ymax", 0.65, "crack span upper bound")
}

// buildConfig resolves preset, config file and flags, in increasing priority.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("capacity") {
		cfg.Capacity = capacity
	}
	if flags.Changed("grid") {
		cfg.UseGrid = useGrid
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("load-rate") {
		cfg.LoadRate = loadRate
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("nx") {
		cfg.Mesh.NX = nx
	}
	if flags.Changed("ny") {
		cfg.Mesh.NY = ny
	}
	if flags.Changed("spacing") {
		cfg.Mesh.Spacing = spacing
	}
	if flags.Changed("mesh") {
		cfg.Mesh.File = meshFile
	}
	if flags.Changed("crack") {
		cfg.Crack.Enabled = crackOn
	}
	if flags.Changed("crack-x") {
		cfg.Crack.X = crackX
	}
	if flags.Changed("crack-ymin") {
		cfg.Crack.YMin = crackYMin
	}
	if flags.Changed("crack-ymax") {
		cfg.Crack.YMax = crackYMax
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupProblem builds the mesh and initial neighbour list for cfg.
func setupProblem(cfg *config.Config) (*sim.Problem, string, error) {
	var m *mesh.Mesh
	var name string
	if cfg.Mesh.File != "" {
		var err error
		m, err = mesh.ReadGmsh(cfg.Mesh.File)
		if err != nil {
			return nil, "", err
		}
		name = "gmsh"
	} else {
		m = mesh.Lattice(cfg.Mesh.NX, cfg.Mesh.NY, cfg.LatticeSpacing())
		name = fmt.Sprintf("plate%dx%d", cfg.Mesh.NX, cfg.Mesh.NY)
	}

	mat := &material.PMB{
		Micromodulus: cfg.Material.Micromodulus,
		CritStretch:  cfg.Material.CritStretch,
	}

	var crack *material.Crack
	if cfg.Crack.Enabled {
		crack = &material.Crack{X: cfg.Crack.X, YMin: cfg.Crack.YMin, YMax: cfg.Crack.YMax}
		name += "-cracked"
	}

	p, err := sim.Setup(m, mat, cfg.Horizon, cfg.Capacity, crack, cfg.UseGrid)
	if err != nil {
		return nil, "", err
	}

	if p.List.Truncated() {
		fmt.Fprintf(os.Stderr, "warning: %d rows exceeded capacity %d, excess neighbours dropped\n",
			p.List.TruncatedRows(), p.List.Capacity())
	}

	return p, name, nil
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:            cfg.Dt,
		Steps:         cfg.Steps,
		LoadRate:      cfg.LoadRate,
		Workers:       cfg.Workers,
		ValidateState: true,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	p, name, err := setupProblem(cfg)
	if err != nil {
		return err
	}

	s := sim.New(p)
	s.AddMetric(sim.NewPeakDamage())
	s.AddMetric(sim.NewBrokenBonds())
	s.AddMetric(sim.NewIsolatedParticles())
	s.AddMetric(sim.NewOverstretchedBonds())

	snapDir, snapEvery := cfg.Snapshot.Dir, cfg.Snapshot.Every
	if snapshotDir != "" {
		snapDir, snapEvery = snapshotDir, snapshotEvery
	}
	var snaps *sim.VTKSnapshots
	if snapDir != "" {
		if err := os.MkdirAll(snapDir, 0755); err != nil {
			return err
		}
		snaps = sim.NewVTKSnapshots(snapDir, snapEvery)
		s.AddObserver(snaps)
	}

	fmt.Printf("running %s: %d particles, horizon %.4f, %d steps\n",
		name, p.List.Len(), cfg.Horizon, cfg.Steps)
	start := time.Now()

	result, err := s.Run(context.Background(), simConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", e)
	}
	if snaps != nil {
		for _, e := range snaps.Errs {
			fmt.Fprintf(os.Stderr, "warning: snapshot: %v\n", e)
		}
	}

	meta := storage.RunMetadata{
		Problem:   name,
		Particles: p.List.Len(),
		Horizon:   cfg.Horizon,
		Dt:        cfg.Dt,
		Steps:     result.StepsTaken,
		LoadRate:  cfg.LoadRate,
		Cracked:   cfg.Crack.Enabled,
		Truncated: p.List.TruncatedRows(),
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if n := len(result.MeanDamage); n > 0 {
		fmt.Printf("final mean damage: %.6f\n", result.MeanDamage[n-1])
		fmt.Printf("active bonds: %d\n", result.ActiveBonds[n-1])
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
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
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tPARTICLES\tHORIZON\tSTEPS\tDAMAGE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%d\t%.4f\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Horizon,
			run.Steps,
			run.FinalDamage,
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
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s (%d particles)\n", meta.Problem, meta.Particles)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	fmt.Println(asciigraph.Plot(series.MeanDamage,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean damage"),
	))
	fmt.Println()

	fmt.Println(asciigraph.Plot(series.MaxDamage,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("max damage"),
	))
	fmt.Println()

	bonds := make([]float64, len(series.ActiveBonds))
	for i, b := range series.ActiveBonds {
		bonds[i] = float64(b)
	}
	fmt.Println(asciigraph.Plot(bonds,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("active bonds"),
	))

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func benchProblem(cmd *cobra.Command, args []string) error {
	sizes := []int{10, 20, 40}
	workerCounts := []int{1, runtime.NumCPU()}

	fmt.Println("benchmarking plate fracture")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LATTICE\tPARTICLES\tWORKERS\tSETUP\tRUN\tSTEPS/SEC")

	for _, n := range sizes {
		for _, wk := range workerCounts {
			cfg := config.DefaultConfig()
			cfg.Mesh.NX, cfg.Mesh.NY = n, n
			cfg.Horizon = 3.0 / float64(n-1)
			cfg.Steps = 50
			cfg.LoadRate = 1e-4
			cfg.Workers = wk
			cfg.UseGrid = n >= 40

			setupStart := time.Now()
			p, _, err := setupProblem(cfg)
			if err != nil {
				return err
			}
			setupElapsed := time.Since(setupStart)

			runStart := time.Now()
			result, err := sim.New(p).Run(context.Background(), simConfig(cfg))
			if err != nil {
				return err
			}
			runElapsed := time.Since(runStart)

			fmt.Fprintf(w, "%dx%d\t%d\t%d\t%v\t%v\t%.0f\n",
				n, n, p.List.Len(), wk, setupElapsed, runElapsed,
				float64(result.StepsTaken)/runElapsed.Seconds())
		}
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	p, name, err := setupProblem(cfg)
	if err != nil {
		return err
	}

	return tui.Run(name, p, simConfig(cfg), frameRate)
}
