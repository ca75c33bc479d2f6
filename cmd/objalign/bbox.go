package main

import (
	"fmt"

	"github.com/linkage-design/objectaligner/pkg/align"
	"github.com/spf13/cobra"
)

func newBBoxCmd(c *cli) *cobra.Command {
	var (
		object          string
		includeChildren bool
	)
	cmd := &cobra.Command{
		Use:   "bbox <scene>",
		Short: "Print the world-space bounding box of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadScene(args[0], object)
			if err != nil {
				return err
			}
			obj := s.ActiveObject()
			if obj == nil {
				return align.ErrNoSelection
			}
			if !cmd.Flags().Changed("include-children") {
				includeChildren = c.cfg.Align.IncludeChildren
			}
			bbox, err := align.Collect(s, obj.ID, includeChildren)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "object:   %s\n", obj.Name)
			fmt.Fprintf(w, "contains: %d mesh objects\n", len(align.Contributors(s, obj, includeChildren)))
			fmt.Fprintf(w, "min:      %s\n", formatVec(bbox.Min))
			fmt.Fprintf(w, "max:      %s\n", formatVec(bbox.Max))
			fmt.Fprintf(w, "center:   %s\n", formatVec(bbox.Center))
			fmt.Fprintf(w, "size:     %s\n", formatVec(bbox.Size()))
			return nil
		},
	}
	cmd.Flags().StringVar(&object, "object", "", "object to measure (default: the scene's active object)")
	cmd.Flags().BoolVar(&includeChildren, "include-children", true, "include all descendants")
	return cmd
}
