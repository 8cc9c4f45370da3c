package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/ufedsim/ufedsim/internal/analysis"
	"github.com/ufedsim/ufedsim/internal/config"
	"github.com/ufedsim/ufedsim/internal/integrators"
	"github.com/ufedsim/ufedsim/internal/sample"
	"github.com/ufedsim/ufedsim/internal/ufed"
)

var (
	configFile string
	preset     string
	outDir     string
	steps      int
	walkers    int
	seed       uint64

	bins     int
	sigma    []float64
	grid     int
	forceDir int
	plot     bool
	pmfOut   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ufedsim",
		Short: "unified free-energy dynamics sampling and PMF reconstruction",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "sample a model with extended-variable dynamics",
		RunE:  runSampling,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "run configuration YAML")
	runCmd.Flags().StringVar(&preset, "preset", "", "preset as model/name, e.g. rotor/default")
	runCmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	runCmd.Flags().IntVar(&steps, "steps", 0, "override step count")
	runCmd.Flags().IntVar(&walkers, "walkers", 0, "override walker count")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "base RNG seed")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [samples.csv]",
		Short: "reconstruct the free-energy surface from recorded samples",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalysis,
	}
	analyzeCmd.Flags().StringVar(&configFile, "config", "", "run configuration YAML (for CV descriptors)")
	analyzeCmd.Flags().StringVar(&preset, "preset", "", "preset as model/name")
	analyzeCmd.Flags().IntVar(&bins, "bins", 0, "histogram bins per dimension")
	analyzeCmd.Flags().Float64SliceVar(&sigma, "sigma", nil, "kernel width, one value or one per dimension")
	analyzeCmd.Flags().IntVar(&grid, "grid", 100, "profile resolution for one-dimensional output")
	analyzeCmd.Flags().IntVar(&forceDir, "dir", 0, "dimension for the mean-force column")
	analyzeCmd.Flags().BoolVar(&plot, "plot", false, "draw the one-dimensional profile in the terminal")
	analyzeCmd.Flags().StringVar(&pmfOut, "out", "", "write the profile as CSV")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, analyzeCmd, presetsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	switch {
	case configFile != "" && preset != "":
		return nil, fmt.Errorf("use either --config or --preset, not both")
	case configFile != "":
		return config.Load(configFile)
	case preset != "":
		model, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be model/name, got %q", preset)
		}
		cfg := config.GetPreset(model, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		return cfg, nil
	default:
		return config.DefaultConfig(), nil
	}
}

func runSampling(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	if walkers > 0 {
		cfg.Walkers = walkers
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	vars := cfg.CollectiveVariables()
	coords := cfg.Coordinates()

	build := func(idx int) (*ufed.Simulation, integrators.Stepper, error) {
		pot, err := cfg.Potential()
		if err != nil {
			return nil, nil, err
		}
		sim, err := ufed.New(pot, cfg.Masses, cfg.Temperature, vars, coords)
		if err != nil {
			return nil, nil, err
		}
		if err := sim.SetPositions(cfg.InitState); err != nil {
			return nil, nil, err
		}
		g := integrators.NewGeodesicBAOAB(cfg.Temperature, cfg.Friction, cfg.Dt, cfg.Rattles)
		return sim, g, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	ensemble := ufed.NewEnsemble(cfg.Walkers, build)
	table, err := ensemble.Run(ctx, ufed.Config{
		Steps:    cfg.Steps,
		Interval: cfg.Interval,
		Seed:     cfg.Seed,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	csvPath := filepath.Join(outDir, "samples.csv")
	if err := table.Save(csvPath); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(outDir, "config.yml"), cfg); err != nil {
		return err
	}
	if err := writeMetadata(filepath.Join(outDir, "metadata.json"), cfg, table.Len(), elapsed); err != nil {
		return err
	}

	fmt.Printf("sampled %d steps x %d walkers, %d rows -> %s (%.1fs)\n",
		cfg.Steps, cfg.Walkers, table.Len(), csvPath, elapsed.Seconds())
	return nil
}

type runMetadata struct {
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
	Seed      uint64    `json:"seed"`
	Dt        float64   `json:"dt"`
	Steps     int       `json:"steps"`
	Walkers   int       `json:"walkers"`
	Interval  int       `json:"interval"`
	Rows      int       `json:"rows"`
	Elapsed   float64   `json:"elapsed_seconds"`
}

func writeMetadata(path string, cfg *config.Config, rows int, elapsed time.Duration) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(runMetadata{
		Model:     cfg.Model,
		Timestamp: time.Now(),
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Steps:     cfg.Steps,
		Walkers:   cfg.Walkers,
		Interval:  cfg.Interval,
		Rows:      rows,
		Elapsed:   elapsed.Seconds(),
	})
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := sample.Load(args[0])
	if err != nil {
		return err
	}

	vars := cfg.CollectiveVariables()
	b := cfg.Bins
	if bins > 0 {
		b = bins
	}

	a, err := analysis.New(vars, table, b)
	if err != nil {
		return err
	}

	s := sigma
	if len(s) == 0 {
		// Per-variable sigmas from the config, when all are set.
		all := true
		for _, v := range vars {
			if v.Sigma <= 0 {
				all = false
				break
			}
		}
		if all {
			s = make([]float64, len(vars))
			for i, v := range vars {
				s[i] = v.Sigma
			}
		}
	}
	f, err := a.FreeEnergy(s...)
	if err != nil {
		return err
	}

	fmt.Printf("%d populated bins over %d dimensions\n", a.Anchors(), a.Dim())

	if len(vars) != 1 {
		return printAnchors(a, f)
	}
	return printProfile(vars[0].MinValue, vars[0].MaxValue, f)
}

// printAnchors tabulates the fitted surface at every anchor.
func printAnchors(a *analysis.Analyzer, f *analysis.FreeEnergy) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprint(w, "count")
	for d := 0; d < a.Dim(); d++ {
		fmt.Fprintf(w, "\tcenter[%d]\tforce[%d]", d, d)
	}
	fmt.Fprintln(w, "\tpmf")

	point := make([]float64, a.Dim())
	for i := 0; i < a.Anchors(); i++ {
		fmt.Fprintf(w, "%.0f", a.Histogram[i])
		for d := 0; d < a.Dim(); d++ {
			point[d] = a.Centers[d][i]
			fmt.Fprintf(w, "\t%.4f\t%.4f", a.Centers[d][i], a.MeanForces[d][i])
		}
		fmt.Fprintf(w, "\t%.4f\n", f.At(point...))
	}
	return nil
}

// printProfile evaluates a uniform one-dimensional profile and
// optionally plots or exports it.
func printProfile(min, max float64, f *analysis.FreeEnergy) error {
	if grid < 2 {
		grid = 2
	}
	points := make([][]float64, grid)
	for i := range points {
		points[i] = []float64{min + (max-min)*float64(i)/float64(grid-1)}
	}
	pmf := f.Profile(points)
	forces := f.MeanForceProfile(forceDir, points)

	if plot {
		fmt.Println(asciigraph.Plot(pmf,
			asciigraph.Height(15),
			asciigraph.Caption("potential of mean force")))
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "x\tpmf\tmean_force")
		for i, p := range points {
			fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\n", p[0], pmf[i], forces[i])
		}
		w.Flush()
	}

	if pmfOut != "" {
		file, err := os.Create(pmfOut)
		if err != nil {
			return err
		}
		defer file.Close()
		fmt.Fprintln(file, "x,pmf,mean_force")
		for i, p := range points {
			fmt.Fprintf(file, "%g,%g,%g\n", p[0], pmf[i], forces[i])
		}
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := make([]string, 0, len(config.Presets))
	if len(args) == 1 {
		models = append(models, args[0])
	} else {
		for m := range config.Presets {
			models = append(models, m)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "model\tpreset\tsteps\twalkers\tvariables")
	for _, m := range models {
		for _, name := range config.ListPresets(m) {
			cfg := config.GetPreset(m, name)
			ids := make([]string, len(cfg.Variables))
			for i, v := range cfg.Variables {
				ids[i] = v.ID
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", m, name, cfg.Steps, cfg.Walkers, strings.Join(ids, ","))
		}
	}
	return nil
}
