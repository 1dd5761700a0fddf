package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type EditOptions struct {
	GlobalOptions

	Description string
	Name        string
}

func DefaultEditOptions() *EditOptions {
	return &EditOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdEdit() *cobra.Command {
	o := DefaultEditOptions()
	cmd := &cobra.Command{
		Use:     "edit NAME",
		Short:   "Change the description or the name of a model.",
		Example: "edit llama-3.gguf --description \"chat model\" --name llama-3-chat",
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

func (o *EditOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Description, "description", "d", o.Description, "New description of the model")
	fs.StringVarP(&o.Name, "name", "n", o.Name, "New name of the model")
}

func (o *EditOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Description == "" && o.Name == "" {
		return fmt.Errorf("nothing to edit: set --description or --name")
	}
	return nil
}

// Run updates the description before renaming so both apply to the same model.
func (o *EditOptions) Run(ctx context.Context, args []string) error {
	c := o.Client()
	name := args[0]

	if o.Description != "" {
		if err := c.UpdateDescription(ctx, name, o.Description); err != nil {
			return fmt.Errorf("updating description of %s: %w", name, err)
		}
	}

	if o.Name != "" {
		if err := c.RenameModel(ctx, name, o.Name); err != nil {
			return fmt.Errorf("renaming %s: %w", name, err)
		}
		name = o.Name
	}

	fmt.Fprintf(o.out, "model/%s updated\n", name)
	return nil
}
