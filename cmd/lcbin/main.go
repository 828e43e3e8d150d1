// lcbin prints or exports the switching table of a binary-weighted capacitor
// bank tuning an LC resonator
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-rf/algorithms/capbank"
	"github.com/RyanBlaney/sonido-rf/config"
)

const long = `lcbin enumerates every switch combination of a binary-weighted capacitor
bank and the resonant frequency it gives with the inductor.

Bit i of the row index closes capacitor i, whose value is
c_initial + c_res*2^i pF (or c_res*2^i with c_initial added once per row
when --offset global). CpF is the total capacitance after the optional
fixed parallel and series capacitors; fkHz is 1/(2π√(LC)) in kHz.

Arguments:
  c_initial   smallest capacitor, pF
  c_res       resolution, pF, doubled for every bit
  c_num       number of switched capacitors (1..24)
  lmh         inductance, mH
  c_parallel  fixed capacitance across the bank, pF (optional)
  c_series    fixed capacitance in series, pF (optional)

Put -- before the arguments when one of them is negative, otherwise it is
read as a flag:
  lcbin -- -5 10 2 12.5

Example:
  lcbin 0 10 4 12.5
           10  20  40  80  CpF        fkHz
      0     0   0   0   0    0         inf
      1     1   0   0   0   10  450.158158
      ...
     15     1   1   1   1  150  116.230337`

type options struct {
	configPath string
	sortBy     string
	outDir     string
	offset     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "lcbin c_initial c_res c_num lmh [c_parallel c_series]",
		Short:        "Binary capacitor bank table for a tunable LC resonator",
		Long:         long,
		SilenceUsage: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || (len(args) >= 4 && len(args) <= 6) {
				return nil
			}
			return fmt.Errorf("expected 4 to 6 arguments, got %d", len(args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return run(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVarP(&opts.sortBy, "sort", "s", "", "sort rows by column (index, CpF, fkHz)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "export CSV into this directory instead of printing")
	cmd.Flags().StringVar(&opts.offset, "offset", "", "c_initial convention (per_bit, global)")

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
	if err := cfg.InstallLogger(cmd.ErrOrStderr()); err != nil {
		return err
	}

	params, err := parseParams(cfg.Bank, args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("offset") {
		if params.Offset, err = capbank.ParseOffset(opts.offset); err != nil {
			return err
		}
	}

	table, err := capbank.New(params)
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		path, err := table.Export(opts.outDir, opts.sortBy)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}
	return table.Dump(cmd.OutOrStdout(), opts.sortBy)
}

// parseParams fills the positional values over the configured bank; the
// config's fixed capacitors apply when the optional arguments are absent
func parseParams(base capbank.Params, args []string) (capbank.Params, error) {
	p := base

	floats := []struct {
		name string
		dst  *float64
	}{
		{"c_initial", &p.CInitial},
		{"c_res", &p.CRes},
		{"lmh", &p.LmH},
		{"c_parallel", &p.CParallel},
		{"c_series", &p.CSeries},
	}
	positions := []int{0, 1, 3, 4, 5}

	for i, f := range floats {
		pos := positions[i]
		if pos >= len(args) {
			break
		}
		v, err := cast.ToFloat64E(args[pos])
		if err != nil {
			return p, fmt.Errorf("invalid %s %q: %w", f.name, args[pos], err)
		}
		*f.dst = v
	}

	n, err := cast.ToIntE(args[2])
	if err != nil {
		return p, fmt.Errorf("invalid c_num %q: %w", args[2], err)
	}
	p.CNum = n
	return p, nil
}
