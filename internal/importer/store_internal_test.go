package importer

import (
	"errors"

	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("job store", func() {
	var (
		store *JobStore
		job   api.ImportJob
	)

	BeforeEach(func() {
		store = NewJobStore()
		job = api.ImportJob{ID: uuid.New(), Locator: api.DiskLocator{Path: "/models/a.gguf"}}
		Expect(store.Insert(JobEntry{Job: job, Status: api.QueuedStatus()})).To(Succeed())
	})

	It("refuses to insert the same job twice", func() {
		err := store.Insert(JobEntry{Job: job, Status: api.QueuedStatus()})
		Expect(err).To(MatchError(ErrDuplicateJob))
	})

	It("returns not found for unknown jobs", func() {
		_, err := store.Get(uuid.New())
		var notFound *ErrJobNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
	})

	It("applies a full lifecycle", func() {
		path := "/models/a.gguf"
		_, err := store.apply(job.ID, api.InProgressStatus(0))
		Expect(err).To(BeNil())
		_, err = store.apply(job.ID, api.InProgressStatus(0.5))
		Expect(err).To(BeNil())
		_, err = store.apply(job.ID, api.CompletedStatus(&path))
		Expect(err).To(BeNil())

		entry, err := store.Get(job.ID)
		Expect(err).To(BeNil())
		Expect(entry.Status.State).To(Equal(api.ImportJobStateCompleted))
		Expect(*entry.Status.Info).To(Equal(path))
	})

	It("leaves the status untouched on an invalid transition", func() {
		msg := "boom"
		_, err := store.apply(job.ID, api.FailedStatus(&msg))
		Expect(err).To(BeNil())

		_, err = store.apply(job.ID, api.InProgressStatus(0.2))
		var invalid *ErrInvalidTransition
		Expect(errors.As(err, &invalid)).To(BeTrue())

		entry, _ := store.Get(job.ID)
		Expect(entry.Status.State).To(Equal(api.ImportJobStateFailed))
	})

	It("counts jobs per state", func() {
		other := api.ImportJob{ID: uuid.New(), Locator: api.DiskLocator{Path: "/models/b.gguf"}}
		Expect(store.Insert(JobEntry{Job: other, Status: api.QueuedStatus()})).To(Succeed())
		_, err := store.apply(other.ID, api.InProgressStatus(0))
		Expect(err).To(BeNil())

		counts := store.Counts()
		Expect(counts[api.ImportJobStateQueued]).To(Equal(1))
		Expect(counts[api.ImportJobStateInProgress]).To(Equal(1))
		Expect(counts[api.ImportJobStateCompleted]).To(Equal(0))
		Expect(counts[api.ImportJobStateFailed]).To(Equal(0))
	})

	It("returns a snapshot that later updates do not change", func() {
		snapshot := store.List()
		_, err := store.apply(job.ID, api.InProgressStatus(0))
		Expect(err).To(BeNil())
		Expect(snapshot[job.ID].State).To(Equal(api.ImportJobStateQueued))
	})
})

var _ = DescribeTable("status transitions",
	func(from, to api.ImportJobStatus, valid bool) {
		Expect(isValidTransition(from, to)).To(Equal(valid))
	},
	Entry("queued to in-progress", api.QueuedStatus(), api.InProgressStatus(0), true),
	Entry("queued to failed", api.QueuedStatus(), api.FailedStatus(nil), true),
	Entry("queued to completed", api.QueuedStatus(), api.CompletedStatus(nil), true),
	Entry("queued to queued", api.QueuedStatus(), api.QueuedStatus(), false),
	Entry("progress moves forward", api.InProgressStatus(0.1), api.InProgressStatus(0.7), true),
	Entry("progress goes back", api.InProgressStatus(0.7), api.InProgressStatus(0.1), false),
	Entry("in-progress to queued", api.InProgressStatus(0), api.QueuedStatus(), false),
	Entry("in-progress to completed", api.InProgressStatus(1), api.CompletedStatus(nil), true),
	Entry("completed is final", api.CompletedStatus(nil), api.FailedStatus(nil), false),
	Entry("failed is final", api.FailedStatus(nil), api.InProgressStatus(0), false),
)
