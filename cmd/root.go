package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "customer-service",
		Short: "Customer CRUD service",
		// Running the binary without a subcommand starts the HTTP service.
		RunE: runServe,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", ".", "directory containing config.yml")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCmd())
}
