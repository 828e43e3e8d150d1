// combi proposes standard-value capacitor combinations that add up to a
// target capacitance
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-rf/algorithms/capbank"
	"github.com/RyanBlaney/sonido-rf/config"
)

type options struct {
	configPath string
	size       int
	has        int
	catalog    []int
	format     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "combi [flags] target_pF...",
		Short: "Standard capacitor combinations summing to a target",
		Long: `combi lists every multiset of --size catalog capacitors (E24 values from
10 pF to 2.7 nF by default) whose sum is exactly the target, in pF.

With --has VALUE only the targets that can be built using VALUE are listed.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	cmd.Flags().IntVarP(&opts.size, "size", "n", 2, "capacitors per combination")
	cmd.Flags().IntVar(&opts.has, "has", 0, "list only targets whose combinations use this value")
	cmd.Flags().IntSliceVar(&opts.catalog, "catalog", nil, "capacitor values to search instead of E24")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, yaml)")

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

	if opts.size < 1 {
		return fmt.Errorf("--size must be at least 1, got %d", opts.size)
	}
	if opts.format != "text" && opts.format != "yaml" {
		return fmt.Errorf("unknown output format %q (want text or yaml)", opts.format)
	}

	targets := make([]int, len(args))
	for i, arg := range args {
		v, err := cast.ToIntE(arg)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", arg, err)
		}
		targets[i] = v
	}

	proposals := capbank.ProposeAll(opts.size, opts.catalog, targets...)
	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("has") {
		matches := capbank.HasValue(opts.has, proposals)
		if opts.format == "yaml" {
			return yaml.NewEncoder(out).Encode(map[string][]int{"targets": matches})
		}
		_, err := fmt.Fprintln(out, joinInts(matches, " "))
		return err
	}

	if opts.format == "yaml" {
		return yaml.NewEncoder(out).Encode(proposals)
	}
	return writeText(out, targets, proposals)
}

func writeText(w io.Writer, targets []int, proposals map[int][][]int) error {
	for _, target := range targets {
		combos := proposals[target]
		parts := make([]string, len(combos))
		for i, c := range combos {
			parts[i] = "(" + joinInts(c, ", ") + ")"
		}
		line := "-"
		if len(parts) > 0 {
			line = strings.Join(parts, " ")
		}
		if _, err := fmt.Fprintf(w, "%d: %s\n", target, line); err != nil {
			return err
		}
	}
	return nil
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = cast.ToString(v)
	}
	return strings.Join(parts, sep)
}
