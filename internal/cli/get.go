package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

type GetOptions struct {
	GlobalOptions

	Output string
}

func DefaultGetOptions() *GetOptions {
	return &GetOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGet() *cobra.Command {
	o := DefaultGetOptions()
	cmd := &cobra.Command{
		Use:     "get (TYPE | TYPE/ID)",
		Short:   "Display one or many resources.",
		Example: "get imports\nget models/llama-3.gguf -o yaml",
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

func (o *GetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *GetOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	return nil
}

func (o *GetOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	kind, id, err := parseAndValidateKindId(args[0])
	if err != nil {
		return err
	}
	if kind == ImportKind && id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("invalid import job id %q: %w", id, err)
		}
	}

	if len(o.Output) > 0 && !funk.ContainsString(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}

	return nil
}

func (o *GetOptions) Run(ctx context.Context, args []string) error {
	c := o.Client()

	kind, id, err := parseAndValidateKindId(args[0])
	if err != nil {
		return err
	}

	var response any
	switch {
	case kind == ImportKind && id != "":
		jobID := uuid.MustParse(id)
		var status *api.ImportJobStatus
		status, err = c.GetImport(ctx, jobID)
		if status != nil {
			response = map[api.ImportJobID]api.ImportJobStatus{jobID: *status}
		}
	case kind == ImportKind:
		var resp *api.GetAllJobStatusResponse
		resp, err = c.ListImports(ctx)
		if resp != nil {
			response = resp.ImportJobs
		}
	case kind == ModelKind && id != "":
		var m *api.RegisteredModel
		m, err = c.GetModel(ctx, id)
		if m != nil {
			response = []api.RegisteredModel{*m}
		}
	case kind == ModelKind:
		var resp *api.GetRegisteredModelsResponse
		resp, err = c.ListModels(ctx)
		if resp != nil {
			response = resp.Models
		}
	default:
		return fmt.Errorf("unsupported resource kind: %s", kind)
	}

	if err != nil {
		if id != "" {
			return fmt.Errorf("reading %s/%s: %w", kind, id, err)
		}
		return fmt.Errorf("listing %s: %w", plural(kind), err)
	}

	return printResponse(o.out, response, o.Output)
}

func printResponse(w io.Writer, response any, output string) error {
	switch output {
	case jsonFormat:
		marshalled, err := json.Marshal(response)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(w, "%s\n", string(marshalled))
		return nil
	case yamlFormat:
		marshalled, err := yaml.Marshal(response)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(w, "%s\n", string(marshalled))
		return nil
	default:
		return printTable(w, response)
	}
}

func printTable(out io.Writer, response any) error {
	w := tabwriter.NewWriter(out, 0, 8, 1, '\t', 0)
	switch r := response.(type) {
	case map[api.ImportJobID]api.ImportJobStatus:
		printImportsTable(w, r)
	case []api.RegisteredModel:
		printModelsTable(w, r...)
	case []api.HubFile:
		printHubFilesTable(w, r...)
	default:
		return fmt.Errorf("unknown resource type %T", response)
	}
	return w.Flush()
}

func printImportsTable(w io.Writer, jobs map[api.ImportJobID]api.ImportJobStatus) {
	ids := funk.Keys(jobs).([]api.ImportJobID)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	fmt.Fprintln(w, "ID\tSTATUS")
	for _, id := range ids {
		fmt.Fprintf(w, "%s\t%s\n", id, jobs[id])
	}
}

func printModelsTable(w io.Writer, models ...api.RegisteredModel) {
	fmt.Fprintln(w, "NAME\tTYPE\tRUNTIME\tLATEST\tVERSIONS")
	for _, m := range models {
		latest := ""
		if len(m.Versions) > 0 {
			latest = m.Versions[len(m.Versions)-1].Version
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", m.Name, m.ModelType, m.Runtime, latest, len(m.Versions))
	}
}

func printHubFilesTable(w io.Writer, files ...api.HubFile) {
	fmt.Fprintln(w, "FILE\tSIZE\tCOMMITTED")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%d\t%s\n", f.Filename, f.SizeBytes, f.CommittedAt.Format("2006-01-02"))
	}
}
