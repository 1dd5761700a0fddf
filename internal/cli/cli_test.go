package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/cli"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("modelctl", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	Context("get", func() {
		models := api.GetRegisteredModelsResponse{Models: []api.RegisteredModel{
			{
				Name:      "llama.gguf",
				ModelType: api.ModelTypeCompletion,
				Runtime:   api.RuntimeGgml,
				Versions:  []api.ModelVersion{{Version: "0.1.0"}, {Version: "0.2.0"}},
			},
		}}

		BeforeEach(func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(models)
			}
		})

		It("prints models as a table", func() {
			out, err := execute(cli.NewCmdGet(), "models", "-u", server.URL)
			Expect(err).To(BeNil())
			Expect(out).To(ContainSubstring("NAME"))
			Expect(out).To(MatchRegexp(`llama\.gguf\s+completion\s+ggml\s+0\.2\.0\s+2`))
		})

		It("prints models as yaml", func() {
			out, err := execute(cli.NewCmdGet(), "models", "-o", "yaml", "-u", server.URL)
			Expect(err).To(BeNil())

			var decoded []api.RegisteredModel
			Expect(yaml.Unmarshal([]byte(out), &decoded)).To(Succeed())
			Expect(decoded).To(HaveLen(1))
			Expect(decoded[0].Name).To(Equal("llama.gguf"))
		})

		It("rejects unknown kinds and formats", func() {
			_, err := execute(cli.NewCmdGet(), "sources", "-u", server.URL)
			Expect(err).To(MatchError(ContainSubstring("invalid resource kind")))

			_, err = execute(cli.NewCmdGet(), "models", "-o", "xml", "-u", server.URL)
			Expect(err).To(MatchError(ContainSubstring("output format")))

			_, err = execute(cli.NewCmdGet(), "imports/not-a-uuid", "-u", server.URL)
			Expect(err).To(MatchError(ContainSubstring("invalid import job id")))
		})
	})

	Context("import", func() {
		It("prints the job id and waits for a terminal state", func() {
			jobID := uuid.New()
			var polls atomic.Int32
			handler = func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPost {
					w.WriteHeader(http.StatusCreated)
					_ = json.NewEncoder(w).Encode(jobID)
					return
				}
				if polls.Add(1) < 3 {
					_ = json.NewEncoder(w).Encode(api.InProgressStatus(0))
					return
				}
				info := "/cache/a.gguf"
				_ = json.NewEncoder(w).Encode(api.CompletedStatus(&info))
			}

			out, err := execute(cli.NewCmdImport(), "disk", "/models/a.gguf", "--wait", "--poll-interval", (10 * time.Millisecond).String(), "-u", server.URL)
			Expect(err).To(BeNil())
			Expect(out).To(ContainSubstring(jobID.String()))
			Expect(out).To(ContainSubstring("completed(/cache/a.gguf)"))
			Expect(polls.Load()).To(BeNumerically(">=", 3))
		})

		It("fails when the import fails", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPost {
					w.WriteHeader(http.StatusCreated)
					_ = json.NewEncoder(w).Encode(uuid.New())
					return
				}
				msg := "file not found"
				_ = json.NewEncoder(w).Encode(api.FailedStatus(&msg))
			}

			_, err := execute(cli.NewCmdImport(), "hub", "owner/repo", "a.gguf", "-w", "-u", server.URL)
			Expect(err).To(MatchError("import failed"))
		})
	})

	Context("delete", func() {
		It("deletes a single version", func() {
			var path string
			handler = func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				w.WriteHeader(http.StatusNoContent)
			}

			out, err := execute(cli.NewCmdDelete(), "models/llama.gguf", "--version", "0.1.0", "-u", server.URL)
			Expect(err).To(BeNil())
			Expect(path).To(Equal("/v1/models/llama.gguf/versions/0.1.0"))
			Expect(out).To(ContainSubstring("version 0.1.0 deleted"))
		})

		It("refuses to delete imports", func() {
			_, err := execute(cli.NewCmdDelete(), "imports/abc", "-u", server.URL)
			Expect(err).To(MatchError(ContainSubstring("cannot be deleted")))
		})
	})

	Context("edit", func() {
		It("requires something to change", func() {
			_, err := execute(cli.NewCmdEdit(), "llama.gguf", "-u", server.URL)
			Expect(err).To(MatchError(ContainSubstring("nothing to edit")))
		})
	})
})
