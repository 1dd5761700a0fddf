package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type DeleteOptions struct {
	GlobalOptions

	Version string
}

func DefaultDeleteOptions() *DeleteOptions {
	return &DeleteOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdDelete() *cobra.Command {
	o := DefaultDeleteOptions()
	cmd := &cobra.Command{
		Use:     "delete TYPE/NAME",
		Short:   "Delete a model or one of its versions.",
		Example: "delete models/llama-3.gguf\ndelete models/llama-3.gguf --version 0.2.0",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *DeleteOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Version, "version", o.Version, "Delete only this version of the model")
}

func (o *DeleteOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}

	return nil
}

func (o *DeleteOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	kind, id, err := parseAndValidateKindId(args[0])
	if err != nil {
		return err
	}
	if kind != ModelKind {
		return fmt.Errorf("%s cannot be deleted", plural(kind))
	}
	if id == "" {
		return fmt.Errorf("a model name is required")
	}
	return nil
}

func (o *DeleteOptions) Run(ctx context.Context, args []string) error {
	c := o.Client()

	kind, name, err := parseAndValidateKindId(args[0])
	if err != nil {
		return err
	}

	if o.Version != "" {
		if err := c.DeleteVersion(ctx, name, o.Version); err != nil {
			return fmt.Errorf("deleting %s/%s version %s: %w", kind, name, o.Version, err)
		}
		fmt.Fprintf(o.out, "%s/%s version %s deleted\n", kind, name, o.Version)
		return nil
	}

	if err := c.DeleteModel(ctx, name); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", kind, name, err)
	}
	fmt.Fprintf(o.out, "%s/%s deleted\n", kind, name)
	return nil
}
