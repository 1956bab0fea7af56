package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agencybankai-hash/deca-website-sub001/internal/statemap"
)

func (a *app) inspectCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Validate an artifact and list its regions",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			// LoadTable validates the records and parses every path.
			table, err := statemap.LoadTable(path)
			if err != nil {
				a.logger.Error("artifact invalid", zap.String("path", path), zap.Error(err))
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tANCHOR")
			for _, code := range table.Codes() {
				rec, _ := table.Record(code)
				fmt.Fprintf(tw, "%s\t%s\t%g,%g\n", code, rec.Name, rec.CX, rec.CY)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "%d regions ok\n", table.Len())
			return err
		},
	}
	cmd.Flags().StringVar(&path, "artifact", "", "regions.json to inspect")
	_ = cmd.MarkFlagRequired("artifact")
	return cmd
}
