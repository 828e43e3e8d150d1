// sana characterizes resonances and signal-to-noise ratios in traces exported
// by the bench analyzers
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-rf/algorithms/resonance"
	"github.com/RyanBlaney/sonido-rf/algorithms/snr"
	"github.com/RyanBlaney/sonido-rf/config"
	"github.com/RyanBlaney/sonido-rf/instrument"
	"github.com/RyanBlaney/sonido-rf/series"
)

const long = `sana reads network or spectrum analyzer CSV exports and reports, for each
file, the peak frequency, the -3 dB points f1/f2 (and -6 dB f3/f4 with
--six-db), f0, bandwidth, Q and the slope of the rising edge.

Each half-power point carries a confidence score, 1 - |dB off target| of
the sample chosen. Scores under the threshold (0.95 by default) mean the
sweep is too sparse near the crossing or the crossing fell off the edge of
the sweep; check the trace before trusting BW and Q.

With --snr FREQ the first quartile noise floor, the level at FREQ and the
mean level within FREQ ± --window are reported instead.`

type options struct {
	configPath string
	machine    string
	mode       string
	sixDB      bool
	slope      bool
	smooth     int
	threshold  float64
	milliwatt  bool
	overrides  map[resonance.Point]*float64
	snrProbe   float64
	window     float64
	format     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{
		overrides: map[resonance.Point]*float64{
			resonance.F1: new(float64),
			resonance.F2: new(float64),
			resonance.F3: new(float64),
			resonance.F4: new(float64),
		},
	}

	cmd := &cobra.Command{
		Use:          "sana [flags] file...",
		Short:        "Resonance and SNR analysis of analyzer CSV exports",
		Long:         long,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	flags.StringVarP(&opts.machine, "machine", "m", "", "instrument that wrote the files (N5071, N9010A)")
	flags.StringVar(&opts.mode, "mode", "", "half-power search (split, whole)")
	flags.BoolVar(&opts.sixDB, "six-db", false, "also locate the -6 dB points")
	flags.BoolVar(&opts.slope, "slope", true, "fit the rising edge f1..fmax")
	flags.IntVar(&opts.smooth, "smooth", 0, "odd Hamming smoothing width, 0 disables")
	flags.Float64Var(&opts.threshold, "threshold", resonance.DefaultScoreThreshold, "confidence below which points are flagged")
	flags.BoolVar(&opts.milliwatt, "mw", false, "amplitudes are in mW; convert to dB first")
	for _, p := range []resonance.Point{resonance.F1, resonance.F2, resonance.F3, resonance.F4} {
		flags.Float64Var(opts.overrides[p], string(p), 0, fmt.Sprintf("pin %s to this frequency", p))
	}
	flags.Float64Var(&opts.snrProbe, "snr", 0, "report SNR at this frequency instead of resonance")
	flags.Float64Var(&opts.window, "window", snr.DefaultWindow, "SNR averaging half-width")
	flags.StringVarP(&opts.format, "format", "f", "text", "output format (text, yaml)")

	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := applyFlags(cmd, opts, cfg); err != nil {
		return err
	}
	if err := cfg.InstallLogger(cmd.ErrOrStderr()); err != nil {
		return err
	}

	reader, err := instrument.NewReader(&cfg.Instrument)
	if err != nil {
		return err
	}
	table, err := reader.Read(args...)
	if err != nil {
		return err
	}
	if opts.milliwatt {
		if table, err = toDB(table); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if cmd.Flags().Changed("snr") {
		stats, err := snr.NewDescriber(&cfg.SNR).Describe(table, opts.snrProbe)
		if err != nil {
			return err
		}
		return writeSNR(out, opts.format, stats)
	}

	var analyzerOpts []resonance.Option
	for p, v := range opts.overrides {
		if cmd.Flags().Changed(string(p)) {
			analyzerOpts = append(analyzerOpts, resonance.WithOverride(p, *v))
		}
	}
	analyzer := resonance.NewAnalyzer(&cfg.Resonance, analyzerOpts...)

	var reports []report
	for _, name := range table.Columns() {
		s, err := table.Column(name)
		if err != nil {
			return err
		}
		result, err := analyzer.Analyze(s)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		reports = append(reports, report{Result: *result, Scores: result.Scores()})
	}
	return writeResonance(out, opts.format, reports)
}

// applyFlags lets explicitly set flags win over the config file
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("machine") {
		if cfg.Instrument.Machine, err = instrument.ParseMachine(opts.machine); err != nil {
			return err
		}
	}
	if flags.Changed("mode") {
		if cfg.Resonance.Mode, err = resonance.ParseMode(opts.mode); err != nil {
			return err
		}
	}
	if flags.Changed("six-db") {
		cfg.Resonance.SixDB = opts.sixDB
	}
	if flags.Changed("slope") {
		cfg.Resonance.Slope = opts.slope
	}
	if flags.Changed("smooth") {
		cfg.Resonance.SmoothWidth = opts.smooth
	}
	if flags.Changed("threshold") {
		cfg.Resonance.ScoreThreshold = opts.threshold
	}
	if flags.Changed("window") {
		cfg.SNR.Window = opts.window
	}
	switch opts.format {
	case "text", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want text or yaml)", opts.format)
	}
	return cfg.Validate()
}

func toDB(t *series.Table) (*series.Table, error) {
	out, err := series.NewTable(t.Index())
	if err != nil {
		return nil, err
	}
	for _, name := range t.Columns() {
		s, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(name, series.ToDB(s).Amplitudes()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type report struct {
	resonance.Result `yaml:",inline"`
	Scores           resonance.Score `yaml:"scores"`
}

func writeResonance(w io.Writer, format string, reports []report) error {
	if format == "yaml" {
		return yaml.NewEncoder(w).Encode(map[string][]report{"resonance": reports})
	}
	for _, r := range reports {
		if _, err := fmt.Fprint(w, r.Result.String()); err != nil {
			return err
		}
		if low := r.LowConfidence(); len(low) > 0 {
			if _, err := fmt.Fprintf(w, "  low confidence: %v\n", low); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSNR(w io.Writer, format string, stats []snr.Stat) error {
	if format == "yaml" {
		return yaml.NewEncoder(w).Encode(map[string][]snr.Stat{"snr": stats})
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tfrequency\tat_freq\tsignal\tnoise_floor\tSN")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%g\t%.3f\t%.3f\t%.3f\t%.3f\n", s.Name, s.Frequency, s.AtFreq, s.Signal, s.NoiseFloor, s.SN)
	}
	return tw.Flush()
}
