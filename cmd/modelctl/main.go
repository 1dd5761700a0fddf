package main

import (
	"os"

	"github.com/kubev2v/model-server/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	command := NewModelCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewModelCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelctl [flags] [options]",
		Short: "modelctl controls the model server.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdImport())
	cmd.AddCommand(cli.NewCmdGet())
	cmd.AddCommand(cli.NewCmdDelete())
	cmd.AddCommand(cli.NewCmdEdit())
	cmd.AddCommand(cli.NewCmdListHub())

	return cmd
}
