package service_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/fetch"
	"github.com/kubev2v/model-server/internal/importer"
	"github.com/kubev2v/model-server/internal/service"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeImporter struct {
	submitErr error
	statuses  map[api.ImportJobID]api.ImportJobStatus
}

func (f *fakeImporter) Submit(api.Locator) (api.ImportJobID, error) {
	if f.submitErr != nil {
		return uuid.Nil, f.submitErr
	}
	id := uuid.New()
	f.statuses[id] = api.QueuedStatus()
	return id, nil
}

func (f *fakeImporter) GetStatus(id api.ImportJobID) (api.ImportJobStatus, error) {
	status, found := f.statuses[id]
	if !found {
		return api.ImportJobStatus{}, importer.NewErrJobNotFound(id)
	}
	return status, nil
}

func (f *fakeImporter) ListStatus() map[api.ImportJobID]api.ImportJobStatus {
	return f.statuses
}

type fakeHub struct {
	files map[string][]api.HubFile
}

func (f *fakeHub) ListFiles(_ context.Context, repo string) ([]api.HubFile, error) {
	files, found := f.files[repo]
	if !found {
		return nil, fetch.NewErrRepositoryNotFound(repo)
	}
	return files, nil
}

var _ = Describe("import service", func() {
	var (
		imp *fakeImporter
		hub *fakeHub
		svc *service.ImportService
	)

	BeforeEach(func() {
		imp = &fakeImporter{statuses: make(map[api.ImportJobID]api.ImportJobStatus)}
		hub = &fakeHub{files: map[string][]api.HubFile{
			"TheBloke/Llama-2-7B-GGUF": {{Filename: "llama-2-7b.Q4_K_M.gguf", SizeBytes: 42}},
		}}
		svc = service.NewImportService(imp, hub)
	})

	It("submits a job and reports its status", func() {
		id, err := svc.Submit(api.DiskLocator{Path: "/models/a.gguf"})
		Expect(err).To(BeNil())

		status, err := svc.GetStatus(id)
		Expect(err).To(BeNil())
		Expect(status.State).To(Equal(api.ImportJobStateQueued))
		Expect(svc.ListStatus().ImportJobs).To(HaveKey(id))
	})

	It("maps an invalid locator to a bad request", func() {
		imp.submitErr = importer.NewErrInvalidLocator(errors.New("path is required"))
		_, err := svc.Submit(api.DiskLocator{})
		var invalid *service.ErrInvalidRequest
		Expect(errors.As(err, &invalid)).To(BeTrue())
	})

	It("maps a stopped importer to unavailable", func() {
		imp.submitErr = importer.ErrImporterNotRunning
		_, err := svc.Submit(api.DiskLocator{Path: "/models/a.gguf"})
		var unavailable *service.ErrServiceUnavailable
		Expect(errors.As(err, &unavailable)).To(BeTrue())
	})

	It("maps an unknown job to not found", func() {
		_, err := svc.GetStatus(uuid.New())
		var notFound *service.ErrResourceNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
	})

	It("lists the files of a hub repository", func() {
		resp, err := svc.ListHubFiles(context.TODO(), "TheBloke", "Llama-2-7B-GGUF")
		Expect(err).To(BeNil())
		Expect(resp.Repo).To(Equal("Llama-2-7B-GGUF"))
		Expect(resp.Files).To(HaveLen(1))

		_, err = svc.ListHubFiles(context.TODO(), "TheBloke", "unknown")
		var notFound *service.ErrResourceNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
	})
})
