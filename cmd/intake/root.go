package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jobintake-engine/internal/app"
	"jobintake-engine/internal/config"
)

type globalFlags struct {
	dataDir string
	cfgPath string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:          "intake",
		Short:        "Import job postings and query the intake store",
		SilenceUsage: true,
	}

	defDir := os.Getenv("INTAKE_DATA_DIR")
	if defDir == "" {
		defDir = "."
	}
	root.PersistentFlags().StringVar(&g.dataDir, "data-dir", defDir, "engine data directory")
	root.PersistentFlags().StringVar(&g.cfgPath, "config", "", "config file (default <data-dir>/config.yml)")

	root.AddCommand(
		newImportCmd(g),
		newListCmd(g),
		newGetCmd(g),
		newDeleteCmd(g),
		newAtsCmd(g),
	)
	return root
}

// open loads config and connects the store. Callers must Close the App.
func (g *globalFlags) open(ctx context.Context) (*app.App, error) {
	path := g.cfgPath
	if path == "" {
		p, err := config.EnsureUserConfig(g.dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, g.dataDir, cfg, app.Options{})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
