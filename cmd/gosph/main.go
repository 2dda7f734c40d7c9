package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"gosph/internal/config"
	"gosph/internal/metrics"
	"gosph/internal/scenario"
	"gosph/internal/solver"
)

const version = "0.1.0"

var (
	configFile string
	preset     string
	endTime    float64
	particles  int
	noPlot     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gosph",
		Short: "smoothed particle hydrodynamics with tree gravity",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "shock_tube", "preset configuration")
	runCmd.Flags().Float64Var(&endTime, "time", 0, "override end time")
	runCmd.Flags().IntVar(&particles, "particles", 0, "override particle count")
	runCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the terminal density plot")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gosph %s\n", version)
		},
	}

	rootCmd.AddCommand(runCmd, presetsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	default:
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset %q", preset)
		}
	}
	if cmd.Flags().Changed("time") {
		cfg.Time.End = endTime
	}
	if cmd.Flags().Changed("particles") {
		cfg.Scenario.ParticleCount = particles
	}

	parts, err := scenario.Build(cfg)
	if err != nil {
		return err
	}

	s, err := solver.New(cfg, parts)
	if err != nil {
		return err
	}
	s.AddMetric(metrics.NewEnergy(cfg.Gravity.Enabled))
	s.AddMetric(metrics.NewEnergyDrift(cfg.Gravity.Enabled))
	s.AddMetric(metrics.NewMomentum())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %s: %d particles, dim %d, t=[%g, %g]\n",
		cfg.Scenario.Name, len(parts), cfg.Dim, cfg.Time.Start, cfg.Time.End)
	start := time.Now()

	if err := s.Run(ctx); err != nil {
		return err
	}

	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "elapsed\t%v\n", elapsed)
	fmt.Fprintf(w, "steps\t%d\n", s.Steps())
	fmt.Fprintf(w, "final time\t%.6f\n", s.Time())
	fmt.Fprintf(w, "ghosts\t%d\n", s.GhostCount())
	for name, val := range s.Metrics() {
		fmt.Fprintf(w, "%s\t%.6g\n", name, val)
	}
	w.Flush()

	if !noPlot {
		plotDensity(s)
	}
	return nil
}

// plotDensity draws the density profile along x, averaged into bins so long
// runs stay within a terminal width.
func plotDensity(s *solver.Solver) {
	parts := s.Particles()
	idx := make([]int, len(parts))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return parts[idx[a]].Pos[0] < parts[idx[b]].Pos[0] })

	const bins = 80
	data := make([]float64, 0, bins)
	per := (len(idx) + bins - 1) / bins
	for lo := 0; lo < len(idx); lo += per {
		hi := lo + per
		if hi > len(idx) {
			hi = len(idx)
		}
		sum := 0.0
		for _, j := range idx[lo:hi] {
			sum += parts[j].Dens
		}
		data = append(data, sum/float64(hi-lo))
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("density along x"))
	fmt.Println()
	fmt.Println(graph)
}
