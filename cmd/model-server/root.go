package main

import (
	"github.com/kubev2v/model-server/internal/config"
	"github.com/spf13/cobra"
)

var (
	envFile string
)

var rootCmd = &cobra.Command{
	Use:          "model-server",
	Short:        "Imports model artifacts and keeps a registry of their versions",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnvFile(envFile)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pullCmd)

	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "", "Path to a dotenv file with the MODEL_SERVER_* variables")
}
