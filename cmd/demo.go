package cmd

import (
	"fmt"
	"io"

	"emwa/ema"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Smooth a regular and an irregular sample series",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.OutOrStdout())
	},
}

func runDemo(out io.Writer) error {
	fmt.Fprintln(out, "adding datapoints to a regular timeseries:")
	regular := ema.New(1, ema.FixedWeight)
	for i := 1; i < 100; i++ {
		if _, err := regular.Update(float64(i)); err != nil {
			return errors.Wrap(err, "Failed to add datapoint")
		}
	}
	fmt.Fprintf(out, "value: %g\n", regular.Value())

	fmt.Fprintln(out, "adding datapoints to an irregular timeseries (time-weighted smoothing):")
	irregular := ema.New(0.5, ema.TimeWeighted)
	clock := 100000 // arbitrary logical clock
	for i := 1; i < 100; i++ {
		if _, err := irregular.UpdateAt(float64(i), float64(clock)); err != nil {
			return errors.Wrap(err, "Failed to add datapoint")
		}
		clock++
	}
	fmt.Fprintf(out, "observations ema: %g\n", irregular.Value())
	return nil
}
