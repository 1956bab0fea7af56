package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
)

func (a *app) viewportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "viewport",
		Short: "Print the viewBox every generated path assumes",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintln(a.stdout, artifact.ViewBox())
			return err
		},
	}
}
