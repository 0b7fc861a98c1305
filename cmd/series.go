package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"emwa/ema"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

type seriesOptions struct {
	Weight    float64
	Mode      ema.Mode
	SkipStale bool
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Smooth observations read from stdin, one per line",
	Long: `Reads one observation per line from stdin and prints the running average.

In fixed mode each line holds a value. In timed mode each line holds a value
and a timestamp separated by whitespace. Blank lines and lines starting with
'#' are ignored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd.Flags())
		if err != nil {
			return err
		}
		mode, err := ema.ParseMode(v.GetString("mode"))
		if err != nil {
			return err
		}
		opts := seriesOptions{
			Weight:    v.GetFloat64("weight"),
			Mode:      mode,
			SkipStale: v.GetBool("skip-stale"),
		}
		return runSeries(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
	},
}

func runSeries(in io.Reader, out io.Writer, opts seriesOptions) error {
	acc := ema.New(opts.Weight, opts.Mode)
	log.Debug("Smoothing series", "mode", opts.Mode, "weight", opts.Weight)

	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		value, err := ingestLine(acc, line)
		if errors.Is(err, ema.ErrStaleData) && opts.SkipStale {
			log.Warn("Dropping stale observation", "line", lineNo, "err", err)
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
		fmt.Fprintln(out, strconv.FormatFloat(value, 'g', -1, 64))
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "Failed to read observations")
	}

	log.Debug("Series done", "observations", acc.Count(), "value", acc.Value())
	return nil
}

func ingestLine(acc *ema.Accumulator, line string) (float64, error) {
	fields := strings.Fields(line)
	switch acc.Mode() {
	case ema.TimeWeighted:
		if len(fields) != 2 {
			return 0, errors.Newf("want \"value timestamp\", got %d fields", len(fields))
		}
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, errors.Wrap(err, "Failed to parse value")
		}
		timestamp, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, errors.Wrap(err, "Failed to parse timestamp")
		}
		return acc.UpdateAt(value, timestamp)
	default:
		if len(fields) != 1 {
			return 0, errors.Newf("want a single value, got %d fields", len(fields))
		}
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, errors.Wrap(err, "Failed to parse value")
		}
		return acc.Update(value)
	}
}

func init() {
	seriesCmd.Flags().Float64P("weight", "w", 0.5, "Smoothing weight applied to new observations")
	seriesCmd.Flags().StringP("mode", "m", ema.FixedWeight.String(), "Smoothing mode (fixed, timed)")
	seriesCmd.Flags().Bool("skip-stale", false, "Drop out-of-order observations instead of failing")
}
