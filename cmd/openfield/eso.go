package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/couchcryptid/openfield-comfort/internal/adapter/energyplus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func newESOCmd() *cobra.Command {
	var preamble int
	cmd := &cobra.Command{
		Use:   "eso <file>",
		Short: "List the variables of an EnergyPlus output file with summary statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := energyplus.DefaultESOFormat()
			if cmd.Flags().Changed("preamble") {
				format.Preamble = preamble
			}
			fh, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open output file: %w", err)
			}
			defer fh.Close()

			res, err := energyplus.ReadESO(fh, format)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return printESO(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&preamble, "preamble", energyplus.DefaultESOFormat().Preamble, "header lines before the first variable declaration")
	return cmd
}

func printESO(out io.Writer, res energyplus.ESOResult) error {
	fmt.Fprintf(out, "%d variables, %d timesteps\n\n", len(res.Names), res.Timesteps())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVARIABLE\tMIN\tMEAN\tMAX")
	for i, name := range res.Names {
		col, err := res.Column(i)
		if err != nil {
			return err
		}
		if len(col) == 0 {
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\n", i+1, name)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%.2f\n", i+1, name, floats.Min(col), stat.Mean(col, nil), floats.Max(col))
	}
	return tw.Flush()
}
