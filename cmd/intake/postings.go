package main

import (
	"github.com/spf13/cobra"

	"jobintake-engine/internal/postings"
)

func newListCmd(g *globalFlags) *cobra.Command {
	var (
		f      postings.Filter
		limit  int
		cursor string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List postings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("limit") && a.Cfg.Listing.DefaultLimit > 0 {
				limit = a.Cfg.Listing.DefaultLimit
			}
			page, err := a.Postings.List(cmd.Context(), f, limit, cursor)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&f.Company, "company", "", "filter by company substring")
	cmd.Flags().StringVar(&f.Host, "host", "", "filter by canonical host")
	cmd.Flags().IntVar(&limit, "limit", postings.DefaultLimit, "page size (1..200)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "next_cursor from the previous page")
	return cmd
}

func newGetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one posting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.Postings.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func newDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a posting with its captures and ATS resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Postings.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": args[0]})
		},
	}
}
