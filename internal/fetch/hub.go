package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultHubURL   = "https://huggingface.co"
	defaultRevision = "main"
)

type HubOpts func(h *HubFetcher)

// HubFetcher downloads hub files into a local cache directory laid out as
// <cache>/<owner>/<name>/<file>. A file already in the cache is reused.
type HubFetcher struct {
	baseURL  string
	token    string
	revision string
	cacheDir string
	client   *http.Client
	mirror   *Mirror
}

func NewHubFetcher(cacheDir string, opts ...HubOpts) *HubFetcher {
	h := &HubFetcher{
		baseURL:  defaultHubURL,
		revision: defaultRevision,
		cacheDir: cacheDir,
		client:   &http.Client{},
	}
	for _, o := range opts {
		o(h)
	}
	h.baseURL = strings.TrimSuffix(h.baseURL, "/")
	return h
}

func WithHubURL(baseURL string) HubOpts {
	return func(h *HubFetcher) {
		if baseURL != "" {
			h.baseURL = baseURL
		}
	}
}

func WithToken(token string) HubOpts {
	return func(h *HubFetcher) {
		h.token = token
	}
}

func WithRevision(revision string) HubOpts {
	return func(h *HubFetcher) {
		if revision != "" {
			h.revision = revision
		}
	}
}

func WithHttpClient(client *http.Client) HubOpts {
	return func(h *HubFetcher) {
		if client != nil {
			h.client = client
		}
	}
}

// WithMirror makes the fetcher try the mirror before the hub.
func WithMirror(mirror *Mirror) HubOpts {
	return func(h *HubFetcher) {
		h.mirror = mirror
	}
}

func (h *HubFetcher) Fetch(ctx context.Context, locator api.HubLocator) (string, error) {
	logger := zap.S().Named("hub_fetcher").With("repository", locator.Repository, "file", locator.File)

	target := h.cachePath(locator)
	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
		logger.Debugw("using cached file", "path", target)
		return target, nil
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create cache directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary file")
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	manager := NewDownloaderManager()
	if h.mirror != nil {
		manager.Register(h.mirror.Downloader(path.Join(locator.Repository, locator.File)))
	}
	manager.Register(NewHttpDownloader(h.fileURL(locator), h.token, h.client))

	logger.Infow("downloading file from hub")
	if err := manager.Download(ctx, tmp); err != nil {
		tmp.Close()
		return "", errors.Wrapf(err, "failed to download %s from %s", locator.File, locator.Repository)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "failed to close temporary file")
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", errors.Wrapf(err, "failed to move download to %s", target)
	}

	logger.Infow("file downloaded", "path", target)
	return target, nil
}

type hubModelInfo struct {
	LastModified time.Time `json:"lastModified"`
	Siblings     []struct {
		RFilename string `json:"rfilename"`
		Size      int64  `json:"size"`
	} `json:"siblings"`
}

// ListFiles returns the files of a hub repository at the configured revision.
func (h *HubFetcher) ListFiles(ctx context.Context, repo string) ([]api.HubFile, error) {
	u := h.baseURL + "/api/models/" + escapeRepo(repo) + "/revision/" + url.PathEscape(h.revision) + "?blobs=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query hub repository %s", repo)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnauthorized:
		return nil, NewErrRepositoryNotFound(repo)
	default:
		return nil, errors.Errorf("failed to list files of %s, status code: %d", repo, resp.StatusCode)
	}

	var info hubModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "failed to decode hub response")
	}

	files := make([]api.HubFile, 0, len(info.Siblings))
	for _, s := range info.Siblings {
		file := api.HubFile{
			Filename:    s.RFilename,
			SizeBytes:   s.Size,
			CommittedAt: info.LastModified,
		}
		if dir := path.Dir(s.RFilename); dir != "." {
			file.Subfolder = &dir
		}
		files = append(files, file)
	}
	return files, nil
}

func (h *HubFetcher) cachePath(locator api.HubLocator) string {
	return filepath.Join(h.cacheDir, filepath.FromSlash(locator.Repository), filepath.FromSlash(locator.File))
}

func (h *HubFetcher) fileURL(locator api.HubLocator) string {
	segments := strings.Split(locator.File, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return h.baseURL + "/" + escapeRepo(locator.Repository) + "/resolve/" + url.PathEscape(h.revision) + "/" + strings.Join(segments, "/")
}

func escapeRepo(repo string) string {
	owner, name, _ := strings.Cut(repo, "/")
	return url.PathEscape(owner) + "/" + url.PathEscape(name)
}
