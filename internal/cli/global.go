package cli

import (
	"io"
	"time"

	"github.com/kubev2v/model-server/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type GlobalOptions struct {
	ServerUrl string
	Timeout   time.Duration

	out io.Writer
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		ServerUrl: "http://localhost:8080",
		Timeout:   30 * time.Second,
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Address of the server")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Timeout of a single request to the server")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return nil
}

func (o *GlobalOptions) Client() *client.Client {
	return client.NewClient(o.ServerUrl, o.Timeout)
}
