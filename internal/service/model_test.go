package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/config"
	"github.com/kubev2v/model-server/internal/service"
	"github.com/kubev2v/model-server/internal/store"
	"github.com/kubev2v/model-server/internal/store/model"
	"github.com/kubev2v/model-server/pkg/migrations"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func registerRequest(name string) api.RegisterModelRequest {
	path := "/cache/org/repo/" + name
	return api.RegisterModelRequest{
		Model:     name,
		ModelType: api.ModelTypeCompletion,
		Runtime:   api.RuntimeGgml,
		ImportMetadata: api.ImportMetadata{
			ImportedAt: time.Now(),
			Source:     api.LocatorEnvelope{Locator: api.HubLocator{Repository: "org/repo", File: name}},
		},
		Params: api.NewCompletionParams(path),
	}
}

// racingStore makes the first conflicts version inserts fail as if another
// import had taken the version first.
type racingStore struct {
	store.Store
	conflicts int
}

func (r *racingStore) Model() store.Model {
	return &racingModelStore{Model: r.Store.Model(), owner: r}
}

type racingModelStore struct {
	store.Model
	owner *racingStore
}

func (r *racingModelStore) AddVersion(ctx context.Context, version model.ModelVersion) (*model.ModelVersion, error) {
	if r.owner.conflicts > 0 {
		r.owner.conflicts--
		return nil, store.ErrDuplicateKey
	}
	return r.Model.AddVersion(ctx, version)
}

var _ = Describe("model service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		svc    *service.ModelService
	)

	BeforeAll(func() {
		cfg := config.NewDefault()
		cfg.Database.Type = "sqlite"
		cfg.Database.Name = filepath.Join(GinkgoT().TempDir(), "service.db")

		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())
		Expect(migrations.MigrateStore(db, "")).To(Succeed())

		s = store.NewStore(db)
		gormdb = db
		svc = service.NewModelService(s)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM model_versions;")
		gormdb.Exec("DELETE FROM models;")
	})

	Context("register", func() {
		It("creates the model at 0.1.0 and bumps the minor version afterwards", func() {
			firstID, err := svc.Register(context.TODO(), registerRequest("llama.gguf"))
			Expect(err).To(BeNil())
			secondID, err := svc.Register(context.TODO(), registerRequest("llama.gguf"))
			Expect(err).To(BeNil())
			Expect(secondID).To(Equal(firstID))

			m, err := svc.GetModel(context.TODO(), "llama.gguf")
			Expect(err).To(BeNil())
			Expect(m.Versions).To(HaveLen(2))
			Expect(m.Versions[0].Version).To(Equal("0.1.0"))
			Expect(m.Versions[1].Version).To(Equal("0.2.0"))
			Expect(m.Versions[1].Params.Data.ModelPath).To(Equal("/cache/org/repo/llama.gguf"))
			Expect(m.Runtime).To(Equal("ggml"))
		})

		It("honours an explicit version", func() {
			req := registerRequest("llama.gguf")
			req.Version = "1.0.0"
			_, err := svc.Register(context.TODO(), req)
			Expect(err).To(BeNil())

			_, err = svc.Register(context.TODO(), req)
			var conflict *service.ErrModelVersionConflict
			Expect(errors.As(err, &conflict)).To(BeTrue())

			_, err = svc.Register(context.TODO(), registerRequest("llama.gguf"))
			Expect(err).To(BeNil())
			m, _ := svc.GetModel(context.TODO(), "llama.gguf")
			Expect(m.Versions[1].Version).To(Equal("1.1.0"))
		})

		It("rejects an invalid version", func() {
			req := registerRequest("llama.gguf")
			req.Version = "one"
			_, err := svc.Register(context.TODO(), req)
			var invalid *service.ErrInvalidRequest
			Expect(errors.As(err, &invalid)).To(BeTrue())
		})

		It("retries while concurrent imports keep taking the next version", func() {
			_, err := svc.Register(context.TODO(), registerRequest("llama.gguf"))
			Expect(err).To(BeNil())

			racing := service.NewModelService(&racingStore{Store: s, conflicts: 3})
			_, err = racing.Register(context.TODO(), registerRequest("llama.gguf"))
			Expect(err).To(BeNil())

			m, err := svc.GetModel(context.TODO(), "llama.gguf")
			Expect(err).To(BeNil())
			Expect(m.Versions).To(HaveLen(2))
		})

		It("gives up after repeated version conflicts", func() {
			_, err := svc.Register(context.TODO(), registerRequest("llama.gguf"))
			Expect(err).To(BeNil())

			racing := service.NewModelService(&racingStore{Store: s, conflicts: 100})
			_, err = racing.Register(context.TODO(), registerRequest("llama.gguf"))
			var conflict *service.ErrModelVersionConflict
			Expect(errors.As(err, &conflict)).To(BeTrue())
		})

		It("serializes concurrent registrations of the same model", func() {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := svc.Register(context.TODO(), registerRequest("mistral.gguf"))
					Expect(err).To(BeNil())
				}()
			}
			wg.Wait()

			m, err := svc.GetModel(context.TODO(), "mistral.gguf")
			Expect(err).To(BeNil())
			Expect(m.Versions).To(HaveLen(10))
			Expect(m.Versions[9].Version).To(Equal("0.10.0"))
		})
	})

	Context("manage", func() {
		BeforeEach(func() {
			_, err := svc.Register(context.TODO(), registerRequest("llama.gguf"))
			Expect(err).To(BeNil())
			_, err = svc.Register(context.TODO(), registerRequest("llama.gguf"))
			Expect(err).To(BeNil())
			_, err = svc.Register(context.TODO(), registerRequest("mistral.gguf"))
			Expect(err).To(BeNil())
		})

		It("lists models", func() {
			models, err := svc.ListModels(context.TODO(), service.ModelFilter{})
			Expect(err).To(BeNil())
			Expect(models).To(HaveLen(2))

			models, err = svc.ListModels(context.TODO(), service.ModelFilter{Runtime: "onnx"})
			Expect(err).To(BeNil())
			Expect(models).To(BeEmpty())
		})

		It("updates and reads the description", func() {
			Expect(svc.UpdateDescription(context.TODO(), "llama.gguf", "7B chat")).To(Succeed())
			desc, err := svc.GetDescription(context.TODO(), "llama.gguf")
			Expect(err).To(BeNil())
			Expect(desc).To(Equal("7B chat"))

			_, err = svc.GetDescription(context.TODO(), "unknown")
			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})

		It("renames a model", func() {
			Expect(svc.Rename(context.TODO(), "llama.gguf", api.RenameModelRequest{Name: "llama-7b"})).To(Succeed())

			err := svc.Rename(context.TODO(), "llama-7b", api.RenameModelRequest{Name: "mistral.gguf"})
			var conflict *service.ErrModelNameConflict
			Expect(errors.As(err, &conflict)).To(BeTrue())

			err = svc.Rename(context.TODO(), "llama-7b", api.RenameModelRequest{Name: "bad name/"})
			var invalid *service.ErrInvalidRequest
			Expect(errors.As(err, &invalid)).To(BeTrue())
		})

		It("deletes versions and models", func() {
			Expect(svc.DeleteVersion(context.TODO(), "llama.gguf", "0.1.0")).To(Succeed())
			err := svc.DeleteVersion(context.TODO(), "llama.gguf", "0.1.0")
			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())

			Expect(svc.DeleteModel(context.TODO(), "llama.gguf")).To(Succeed())
			_, err = svc.GetModel(context.TODO(), "llama.gguf")
			Expect(errors.As(err, &notFound)).To(BeTrue())

			err = svc.DeleteModel(context.TODO(), "llama.gguf")
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})
	})
})
