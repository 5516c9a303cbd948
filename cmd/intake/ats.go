package main

import (
	"github.com/spf13/cobra"
)

func newAtsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ats",
		Short: "ATS enrichment",
	}
	var batch int
	resolve := &cobra.Command{
		Use:   "resolve",
		Short: "Attach ATS resolutions to postings that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("batch") {
				batch = a.Cfg.Ats.BatchSize
			}
			n, err := a.Ats.RunOnce(cmd.Context(), batch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int{"resolved": n})
		},
	}
	resolve.Flags().IntVar(&batch, "batch", 100, "postings scanned in this pass")
	cmd.AddCommand(resolve)
	return cmd
}
