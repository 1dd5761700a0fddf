package migrations_test

import (
	"path/filepath"

	"github.com/kubev2v/model-server/internal/config"
	"github.com/kubev2v/model-server/internal/store"
	"github.com/kubev2v/model-server/pkg/migrations"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("migrations", func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeEach(func() {
		cfg := config.NewDefault()
		cfg.Database.Type = "sqlite"
		cfg.Database.Name = filepath.Join(GinkgoT().TempDir(), "migrations.db")

		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())
		s = store.NewStore(db)
		gormdb = db
	})

	AfterEach(func() {
		s.Close()
	})

	tableExists := func(name string) bool {
		count := 0
		tx := gormdb.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
		Expect(tx.Error).To(BeNil())
		return count == 1
	}

	It("fails when the migration folder does not exist", func() {
		err := migrations.MigrateStore(gormdb, "some folder")
		Expect(err).NotTo(BeNil())
	})

	It("applies the embedded migrations", func() {
		Expect(migrations.MigrateStore(gormdb, "")).To(Succeed())

		for _, table := range []string{"models", "model_versions", "goose_db_version"} {
			Expect(tableExists(table)).To(BeTrue())
		}

		version, err := migrations.Version(gormdb)
		Expect(err).To(BeNil())
		Expect(version).To(BeNumerically("==", 20250101000000))
	})

	It("is idempotent", func() {
		Expect(migrations.MigrateStore(gormdb, "")).To(Succeed())
		Expect(migrations.MigrateStore(gormdb, "")).To(Succeed())
	})
})
