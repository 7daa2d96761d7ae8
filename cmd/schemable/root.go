package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemable/internal/logging"
	"github.com/aretw0/schemable/pkg/catalog"
)

var rootCmd = &cobra.Command{
	Use:   "schemable",
	Short: "Schemable describes data shapes once and interprets them many ways",
	Long: `Schemable loads a directory of schema documents (YAML or JSON) and turns each one
into type guards, decoders, type text, OpenAPI components and random samples.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the schema documents")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// loadCatalog reads the --dir directory with the --log-level logger.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, *slog.Logger, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	dir, _ := cmd.Flags().GetString("dir")
	c, err := catalog.Load(dir, catalog.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return c, logger, nil
}
