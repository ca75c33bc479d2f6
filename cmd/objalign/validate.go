package main

import (
	"fmt"

	"github.com/linkage-design/objectaligner/pkg/scene"
	"github.com/spf13/cobra"
)

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scene>",
		Short: "Check a scene for hierarchy and geometry problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadScene(args[0], "")
			if err != nil {
				return err
			}
			res := scene.Validate(s)
			w := cmd.OutOrStdout()
			for _, e := range res.Errors {
				fmt.Fprintf(w, "error:   %s\n", e.Message)
			}
			for _, e := range res.Warnings {
				fmt.Fprintf(w, "warning: %s\n", e.Message)
			}
			if !res.OK() {
				return fmt.Errorf("%s: %d errors", args[0], len(res.Errors))
			}
			fmt.Fprintf(w, "ok: %d objects\n", s.ObjectCount())
			return nil
		},
	}
}
