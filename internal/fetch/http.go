package fetch

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// HttpDownloader downloads a single URL, optionally with a bearer token.
type HttpDownloader struct {
	url    string
	token  string
	client *http.Client
}

func NewHttpDownloader(url, token string, client *http.Client) *HttpDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HttpDownloader{url: url, token: token, client: client}
}

func (h *HttpDownloader) Get(ctx context.Context, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return err
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to request %s", h.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("failed to download %q, status code: %d", h.url, resp.StatusCode)
	}

	return copyWithProgress(ctx, h.url, dst, resp.Body, resp.ContentLength)
}

func (h *HttpDownloader) Type() string {
	return "http"
}
