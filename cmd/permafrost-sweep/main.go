package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/chrissnell/permafrost/internal/log"
	"github.com/chrissnell/permafrost/internal/sweep"
	"github.com/chrissnell/permafrost/pkg/config"
	"github.com/chrissnell/permafrost/pkg/responseformat"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	cfgBackend string
	setName    string
	axisSpecs  []string
	workers    int
	monotonic  string
	quiet      bool
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "permafrost-sweep --axis Name=lo:hi:n [--axis Name=v1,v2,...]",
	Short: "Evaluate the active layer model over a parameter grid",
	Long: `Evaluates the active layer model at every point of a one- or two-axis grid
built around a parameter set, then prints each point, an ALT summary and,
optionally, the places where ALT falls while one axis increases.

Axis names: ` + strings.Join(sweep.AxisNames(), ", "),
	Args:          cobra.NoArgs,
	RunE:          runSweep,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "Optional configuration source holding named parameter sets")
	rootCmd.Flags().StringVar(&cfgBackend, "config-backend", "yaml", "Configuration backend type: 'yaml' or 'sqlite'")
	rootCmd.Flags().StringVar(&setName, "set", "default", "Parameter set the grid is built around")
	rootCmd.Flags().StringArrayVar(&axisSpecs, "axis", nil, "Sweep axis, Name=lo:hi:n or Name=v1,v2,... (repeat for a second axis)")
	rootCmd.Flags().IntVar(&workers, "workers", 4, "Number of concurrent evaluations")
	rootCmd.Flags().StringVar(&monotonic, "monotonic", "", "Report ALT decreases along this axis")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Print only the summary")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Turn on debugging output")
	rootCmd.MarkFlagRequired("axis")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	if err := log.Init(debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	if len(axisSpecs) > 2 {
		return fmt.Errorf("at most two axes can be swept, got %d", len(axisSpecs))
	}

	base, err := loadBase()
	if err != nil {
		return err
	}
	if err := base.Validate(); err != nil {
		return err
	}

	grid := sweep.Grid{Base: base.Inputs()}
	for _, spec := range axisSpecs {
		a, err := sweep.ParseAxis(spec)
		if err != nil {
			return err
		}
		grid.Axes = append(grid.Axes, a)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Debugw("starting sweep", "set", base.Name, "points", grid.Size(), "workers", workers)
	result, err := sweep.Run(ctx, grid, workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !quiet {
		printPoints(out, result)
	}
	printSummary(out, base.Name, result)

	if monotonic != "" {
		violations, err := sweep.CheckMonotonic(result, monotonic)
		if err != nil {
			return err
		}
		if len(violations) == 0 {
			fmt.Fprintf(out, "ALT never falls as %s increases\n", monotonic)
		}
		for _, v := range violations {
			fmt.Fprintf(out, "ALT falls from %s to %s at %s\n",
				responseformat.Display(v.Previous), responseformat.Display(v.Current), coordString(result.Grid, v.Coords))
		}
	}

	return nil
}

func loadBase() (*config.ParameterSet, error) {
	if cfgFile == "" {
		if setName != config.DefaultParameterSet().Name {
			return nil, fmt.Errorf("--set %s requires --config", setName)
		}
		def := config.DefaultParameterSet()
		return &def, nil
	}

	provider, err := config.Open(cfgFile, cfgBackend)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	set, err := config.NewBuiltinSetProvider(provider).GetSet(setName)
	if err != nil {
		return nil, fmt.Errorf("error loading parameter set %s: %w", setName, err)
	}
	return set, nil
}

func printPoints(out io.Writer, r *sweep.Result) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := make([]string, 0, len(r.Grid.Axes)+4)
	for _, a := range r.Grid.Axes {
		header = append(header, a.Name)
	}
	header = append(header, "ALT", "MAGT", "Tvs", "regime")
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, p := range r.Points {
		row := make([]string, 0, len(header))
		for _, c := range p.Coords {
			row = append(row, fmt.Sprintf("%g", c))
		}
		row = append(row,
			responseformat.Display(p.Outputs.ALT),
			responseformat.Display(p.Outputs.MAGT),
			responseformat.Display(p.Outputs.Tvs),
			p.Outputs.Regime.String(),
		)
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	tw.Flush()
}

func printSummary(out io.Writer, set string, r *sweep.Result) {
	s := sweep.Summarize(r.Points)

	fmt.Fprintf(out, "\nSweep around %s: %d points, %d not computable\n", set, s.Points, s.NonFinite)
	for _, regime := range []string{"freezing", "thawing", "none", "undefined"} {
		if n := s.Regimes[regime]; n > 0 {
			fmt.Fprintf(out, "  %-10s %d\n", regime+":", n)
		}
	}
	fmt.Fprintf(out, "  ALT min:   %s m\n", responseformat.Display(s.ALTMin))
	fmt.Fprintf(out, "  ALT max:   %s m\n", responseformat.Display(s.ALTMax))
	fmt.Fprintf(out, "  ALT mean:  %s m (sd %s)\n", responseformat.Display(s.ALTMean), responseformat.Display(s.ALTStdDev))

	for _, a := range r.Grid.Axes {
		slope, _, err := sweep.Trend(r, a.Name)
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "  dALT/d%s:  %s\n", a.Name, responseformat.Display(slope))
	}
}

func coordString(g sweep.Grid, coords []float64) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = fmt.Sprintf("%s=%g", g.Axes[i].Name, c)
	}
	return strings.Join(parts, " ")
}
