package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
)

type ListHubOptions struct {
	GlobalOptions

	Output string
}

func DefaultListHubOptions() *ListHubOptions {
	return &ListHubOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdListHub() *cobra.Command {
	o := DefaultListHubOptions()
	cmd := &cobra.Command{
		Use:     "ls REPOSITORY",
		Short:   "List the files of a hub repository.",
		Example: "ls TheBloke/Llama-2-7B-GGUF",
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

func (o *ListHubOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *ListHubOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.ContainsString(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func (o *ListHubOptions) Run(ctx context.Context, args []string) error {
	resp, err := o.Client().ListHubFiles(ctx, args[0])
	if err != nil {
		return fmt.Errorf("listing files of %s: %w", args[0], err)
	}
	return printResponse(o.out, resp.Files, o.Output)
}
