package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ImportOptions struct {
	GlobalOptions

	Wait         bool
	PollInterval time.Duration
}

func DefaultImportOptions() *ImportOptions {
	return &ImportOptions{
		GlobalOptions: DefaultGlobalOptions(),
		PollInterval:  time.Second,
	}
}

func NewCmdImport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a model artifact",
	}
	cmd.AddCommand(newCmdImportHub())
	cmd.AddCommand(newCmdImportDisk())
	return cmd
}

func newCmdImportHub() *cobra.Command {
	o := DefaultImportOptions()
	cmd := &cobra.Command{
		Use:     "hub REPOSITORY FILE",
		Short:   "Import a file of a hub repository",
		Example: "import hub TheBloke/Llama-2-7B-GGUF llama-2-7b.Q4_K_M.gguf --wait",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), api.HubLocator{Repository: args[0], File: args[1]})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func newCmdImportDisk() *cobra.Command {
	o := DefaultImportOptions()
	cmd := &cobra.Command{
		Use:     "disk PATH",
		Short:   "Import a file present on the server disk",
		Example: "import disk /models/llama-2-7b.Q4_K_M.gguf",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), api.DiskLocator{Path: args[0]})
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ImportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.BoolVarP(&o.Wait, "wait", "w", o.Wait, "Wait for the import to complete or fail")
	fs.DurationVar(&o.PollInterval, "poll-interval", o.PollInterval, "Interval between two status checks when waiting")
}

func (o *ImportOptions) Run(ctx context.Context, locator api.Locator) error {
	c := o.Client()

	id, err := c.CreateImport(ctx, locator)
	if err != nil {
		return fmt.Errorf("failed to create import: %w", err)
	}
	fmt.Fprintln(o.out, id)

	if !o.Wait {
		return nil
	}

	ticker := time.NewTicker(o.PollInterval)
	defer ticker.Stop()

	for {
		status, err := c.GetImport(ctx, id)
		if err != nil {
			return fmt.Errorf("reading import/%s: %w", id, err)
		}
		if status.IsTerminal() {
			fmt.Fprintln(o.out, status)
			if status.State == api.ImportJobStateFailed {
				return errors.New("import failed")
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
