package main

import (
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/linkage-design/objectaligner/pkg/align"
	"github.com/linkage-design/objectaligner/pkg/sceneio"
	"github.com/spf13/cobra"
)

type alignFlags struct {
	object          string
	includeChildren bool
	modes           align.AxisModes
	output          string
	format          string
	dryRun          bool
}

func newAlignCmd(c *cli) *cobra.Command {
	f := &alignFlags{}
	cmd := &cobra.Command{
		Use:   "align <scene>",
		Short: "Move the active object so its bounding box meets the origin",
		Long: `Align moves the active object (or --object) so that its bounding box lines
up with the world origin. Modes per axis: none, min, max, center, origin.
Unset flags fall back to the config file and OBJALIGN_ environment.

The aligned scene is written to --output, or to stdout when no output is
given. --dry-run only reports the move.`,
		Example: `  objalign align examples/table.yaml --x min --y center --z min
  objalign align scene.lignin --object top --include-children=false -o out.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(c, cmd, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.object, "object", "", "object to align (default: the scene's active object)")
	cmd.Flags().BoolVar(&f.includeChildren, "include-children", true, "include all descendants in the bounding box")
	for i, axis := range []string{"x", "y", "z"} {
		cmd.Flags().Var(&f.modes[i], axis, "alignment mode on the "+axis+" axis")
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the aligned scene to this file")
	cmd.Flags().StringVar(&f.format, "format", "yaml", "output format for stdout: yaml or json")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "report the move without writing the scene")
	return cmd
}

// request merges explicit flags over the configured defaults.
func (f *alignFlags) request(cmd *cobra.Command, defaults align.Request) align.Request {
	req := defaults
	if cmd.Flags().Changed("include-children") {
		req.IncludeChildren = f.includeChildren
	}
	targets := [3]*align.Mode{&req.ModeX, &req.ModeY, &req.ModeZ}
	for i, axis := range []string{"x", "y", "z"} {
		if cmd.Flags().Changed(axis) {
			*targets[i] = f.modes[i]
		}
	}
	return req
}

func runAlign(c *cli, cmd *cobra.Command, f *alignFlags, path string) error {
	s, err := c.loadScene(path, f.object)
	if err != nil {
		return err
	}

	req := f.request(cmd, c.cfg.Align)
	res, err := align.NewOperator(c.log).Invoke(s, req)
	if err != nil {
		return err
	}

	if f.dryRun {
		printResult(cmd.OutOrStdout(), res)
		return nil
	}
	if f.output != "" {
		if err := sceneio.Save(f.output, s); err != nil {
			return err
		}
		c.log.WithField("file", f.output).Info("scene written")
		return nil
	}
	format, err := sceneio.ParseFormat(f.format)
	if err != nil {
		return err
	}
	return sceneio.Encode(cmd.OutOrStdout(), format, s)
}

func printResult(w io.Writer, res align.Result) {
	r := res.Request
	fmt.Fprintf(w, "object:   %s\n", res.Name)
	fmt.Fprintf(w, "modes:    x=%s y=%s z=%s children=%t\n", r.ModeX, r.ModeY, r.ModeZ, r.IncludeChildren)
	fmt.Fprintf(w, "bbox:     %s .. %s\n", formatVec(res.BBox.Min), formatVec(res.BBox.Max))
	fmt.Fprintf(w, "from:     %s\n", formatVec(res.Original))
	fmt.Fprintf(w, "to:       %s\n", formatVec(res.Location))
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", round(v[0]), round(v[1]), round(v[2]))
}

// round trims float noise such as 1e-17 from printed coordinates.
func round(x float64) float64 {
	r := math.Round(x*1e9) / 1e9
	if r == 0 {
		return 0
	}
	return r
}
