package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobintake-engine/internal/importer"
)

type importFlags struct {
	dryRun   bool
	batchID  string
	parallel int
}

func newImportCmd(g *globalFlags) *cobra.Command {
	f := &importFlags{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import rows from CSV files or a Google Sheet",
	}
	cmd.PersistentFlags().BoolVar(&f.dryRun, "dry-run", false, "validate and report without writing")
	cmd.PersistentFlags().StringVar(&f.batchID, "batch-id", "", "import batch id (generated when empty)")

	csvCmd := &cobra.Command{
		Use:   "csv FILE...",
		Short: "Import one or more CSV files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportCSV(cmd, g, f, args)
		},
	}
	csvCmd.Flags().IntVar(&f.parallel, "parallel", 0, "files imported at once (default import.parallel)")

	sheetCmd := &cobra.Command{
		Use:   "sheet URL",
		Short: "Import a Google Sheet through its CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Importer.ImportSheet(cmd.Context(), args[0], f.options())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.AddCommand(csvCmd, sheetCmd)
	return cmd
}

func (f *importFlags) options() importer.Options {
	return importer.Options{DryRun: f.dryRun, BatchID: f.batchID}
}

type fileResult struct {
	File   string          `json:"file"`
	Result importer.Result `json:"result"`
}

func runImportCSV(cmd *cobra.Command, g *globalFlags, f *importFlags, files []string) error {
	ctx := cmd.Context()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(files) > 1 && f.batchID != "" {
		return fmt.Errorf("--batch-id applies to a single file")
	}

	limit := f.parallel
	if limit <= 0 {
		limit = a.Cfg.Import.Parallel
	}
	if limit <= 0 {
		limit = 1
	}

	out := make([]fileResult, len(files))
	var mu sync.Mutex

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, file := range files {
		i, file := i, file
		eg.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			res, err := a.Importer.ImportCSV(egctx, data, f.options())
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			mu.Lock()
			out[i] = fileResult{File: file, Result: res}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}
