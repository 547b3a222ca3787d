// Command surfext computes the extrema of the distance between two shapes
// described in a TOML scene file.
//
// A scene names the tolerance and search mode, optional search tunables in
// a [config] table, and either [surface1] or [curve] together with
// [surface2]:
//
//	tolerance = 1e-6
//	mode = "minmax"
//
//	[surface1]
//	kind = "cone"
//	semi_angle = 30
//
//	[surface2]
//	kind = "torus"
//	origin = [0, 0, 20]
//	major_radius = 10
//	minor_radius = 1
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"honnef.co/go/surface"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		verbose   bool
		mode      string
		tolerance float64
	)
	cmd := &cobra.Command{
		Use:          "surfext scene.toml",
		Short:        "Compute distance extrema between surfaces and curves",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			log.SetOutput(cmd.ErrOrStderr())
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			sc, err := decodeScene(f)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				if err := sc.Mode.UnmarshalText([]byte(mode)); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("tolerance") {
				sc.Tolerance = tolerance
			}

			p, err := sc.search(surface.WithLogger(log.WithField("scene", args[0])))
			if err != nil {
				return err
			}
			res := p.Perform(sc.Tolerance, sc.Mode)
			log.WithFields(logrus.Fields{
				"status":  res.Status,
				"extrema": len(res.Extrema),
			}).Info("search finished")
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the stages of the search")
	cmd.Flags().StringVar(&mode, "mode", "minmax", "extrema to report: min, max or minmax")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-6, "distance below which extrema are merged")
	return cmd
}

func printResult(w io.Writer, res surface.Result) error {
	if _, err := fmt.Fprintf(w, "status: %s\n", res.Status); err != nil {
		return err
	}
	if res.Status == surface.StatusInfiniteSolutions {
		_, err := fmt.Fprintf(w, "parallel square distance: %g\n", res.ParallelSquareDistance)
		return err
	}
	for _, e := range res.Extrema {
		kind := "max"
		if e.IsMinimum {
			kind = "min"
		}
		note := ""
		if e.OnWindow {
			note = " (window edge)"
		}
		_, err := fmt.Fprintf(w, "%s d²=%.12g (%.9g, %.9g) %v | (%.9g, %.9g) %v%s\n",
			kind, e.SquareDistance, e.U1, e.V1, e.Point1, e.U2, e.V2, e.Point2, note)
		if err != nil {
			return err
		}
	}
	return nil
}
