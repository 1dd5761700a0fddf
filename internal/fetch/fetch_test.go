package fetch_test

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"

	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/fetch"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("disk fetcher", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("returns the path of an existing file", func() {
		p := filepath.Join(dir, "model.gguf")
		Expect(os.WriteFile(p, []byte("weights"), 0o600)).To(Succeed())

		got, err := fetch.NewDiskFetcher().Fetch(context.TODO(), api.DiskLocator{Path: p})
		Expect(err).To(BeNil())
		Expect(got).To(Equal(p))
	})

	It("fails for a missing file", func() {
		p := filepath.Join(dir, "missing.gguf")
		_, err := fetch.NewDiskFetcher().Fetch(context.TODO(), api.DiskLocator{Path: p})

		var notFound *fetch.ErrFileNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(p))
	})

	It("fails for a directory", func() {
		_, err := fetch.NewDiskFetcher().Fetch(context.TODO(), api.DiskLocator{Path: dir})
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("router", func() {
	It("refuses locator kinds without a fetcher", func() {
		router := fetch.NewRouter(nil, fetch.NewDiskFetcher())
		_, err := router.Fetch(context.TODO(), api.HubLocator{Repository: "org/repo", File: "model.gguf"})

		var unsupported *fetch.ErrUnsupportedLocator
		Expect(errors.As(err, &unsupported)).To(BeTrue())
	})
})

var _ = Describe("hub fetcher", func() {
	var (
		server   *httptest.Server
		payload  []byte
		requests atomic.Int32
		cacheDir string
	)

	BeforeEach(func() {
		payload = make([]byte, 512)
		_, _ = rand.Read(payload)
		requests.Store(0)
		cacheDir = GinkgoT().TempDir()

		mux := http.NewServeMux()
		mux.HandleFunc("/org/repo/resolve/main/sub/model.gguf", func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			if r.Header.Get("Authorization") != "Bearer secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write(payload)
		})
		mux.HandleFunc("/api/models/org/repo/revision/main", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"lastModified": "2024-02-01T10:00:00Z",
				"siblings": []map[string]any{
					{"rfilename": "README.md", "size": 10},
					{"rfilename": "sub/model.gguf", "size": 512},
				},
			})
		})
		server = httptest.NewServer(mux)
	})

	AfterEach(func() {
		server.Close()
	})

	newFetcher := func() *fetch.HubFetcher {
		return fetch.NewHubFetcher(cacheDir, fetch.WithHubURL(server.URL), fetch.WithToken("secret"))
	}

	It("downloads a file into the cache", func() {
		p, err := newFetcher().Fetch(context.TODO(), api.HubLocator{Repository: "org/repo", File: "sub/model.gguf"})
		Expect(err).To(BeNil())
		Expect(p).To(Equal(filepath.Join(cacheDir, "org", "repo", "sub", "model.gguf")))

		data, err := os.ReadFile(p)
		Expect(err).To(BeNil())
		Expect(data).To(Equal(payload))

		entries, err := os.ReadDir(filepath.Dir(p))
		Expect(err).To(BeNil())
		Expect(entries).To(HaveLen(1))
	})

	It("reuses a cached file", func() {
		locator := api.HubLocator{Repository: "org/repo", File: "sub/model.gguf"}
		_, err := newFetcher().Fetch(context.TODO(), locator)
		Expect(err).To(BeNil())
		_, err = newFetcher().Fetch(context.TODO(), locator)
		Expect(err).To(BeNil())
		Expect(requests.Load()).To(BeNumerically("==", 1))
	})

	It("fails when the hub refuses the download", func() {
		h := fetch.NewHubFetcher(cacheDir, fetch.WithHubURL(server.URL))
		_, err := h.Fetch(context.TODO(), api.HubLocator{Repository: "org/repo", File: "sub/model.gguf"})
		Expect(err).ToNot(BeNil())

		_, statErr := os.Stat(filepath.Join(cacheDir, "org", "repo", "sub", "model.gguf"))
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("lists the files of a repository", func() {
		files, err := newFetcher().ListFiles(context.TODO(), "org/repo")
		Expect(err).To(BeNil())
		Expect(files).To(HaveLen(2))
		Expect(files[0].Filename).To(Equal("README.md"))
		Expect(files[0].Subfolder).To(BeNil())
		Expect(files[1].SizeBytes).To(BeNumerically("==", 512))
		Expect(*files[1].Subfolder).To(Equal("sub"))
		Expect(files[1].CommittedAt.Year()).To(Equal(2024))
	})

	It("reports an unknown repository", func() {
		_, err := newFetcher().ListFiles(context.TODO(), "org/unknown")
		var notFound *fetch.ErrRepositoryNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
	})
})

type fakeDownloader struct {
	data []byte
	err  error
}

func (f *fakeDownloader) Get(_ context.Context, dst io.Writer) error {
	if _, err := dst.Write(f.data); err != nil {
		return err
	}
	return f.err
}

func (f *fakeDownloader) Type() string { return "fake" }

var _ = Describe("downloader manager", func() {
	It("falls back to the next downloader and discards partial data", func() {
		f, err := os.CreateTemp(GinkgoT().TempDir(), "download")
		Expect(err).To(BeNil())
		defer f.Close()

		manager := fetch.NewDownloaderManager().
			Register(&fakeDownloader{data: []byte("partial garbage"), err: errors.New("connection reset")}).
			Register(&fakeDownloader{data: []byte("ok")})

		Expect(manager.Download(context.TODO(), f)).To(Succeed())

		data, err := os.ReadFile(f.Name())
		Expect(err).To(BeNil())
		Expect(string(data)).To(Equal("ok"))
	})

	It("fails when every downloader fails", func() {
		f, err := os.CreateTemp(GinkgoT().TempDir(), "download")
		Expect(err).To(BeNil())
		defer f.Close()

		manager := fetch.NewDownloaderManager().
			Register(&fakeDownloader{err: errors.New("nope")})

		err = manager.Download(context.TODO(), f)
		Expect(err).To(MatchError(ContainSubstring("nope")))
	})
})
