package fetch

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/kubev2v/model-server/pkg/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrAllDownloadersFailed = errors.New("all downloaders failed")

// Downloader writes one remote file into dst.
type Downloader interface {
	Get(ctx context.Context, dst io.Writer) error
	Type() string
}

// truncater is implemented by *os.File.
type truncater interface {
	Truncate(size int64) error
}

// Manager tries its downloaders in registration order until one succeeds.
type Manager struct {
	downloaders []Downloader
}

func NewDownloaderManager() *Manager {
	return &Manager{}
}

func (m *Manager) Register(downloader Downloader) *Manager {
	m.downloaders = append(m.downloaders, downloader)
	return m
}

// Download rewinds dst before every attempt so a partial download never leaks
// into the next one.
func (m *Manager) Download(ctx context.Context, dst io.WriteSeeker) error {
	logger := zap.S().Named("downloader")

	var lastErr error
	for _, downloader := range m.downloaders {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := rewind(dst); err != nil {
			return errors.Wrap(err, "failed to reset download target")
		}

		logger.Debugw("downloading file", "downloader_type", downloader.Type())

		if err := downloader.Get(ctx, dst); err != nil {
			metrics.IncreaseHubDownloadsTotalMetric(downloader.Type(), "failed")
			logger.Warnw("download attempt failed", "error", err, "downloader_type", downloader.Type())
			lastErr = err
			continue
		}

		metrics.IncreaseHubDownloadsTotalMetric(downloader.Type(), "success")
		return nil
	}

	if lastErr == nil {
		return ErrAllDownloadersFailed
	}
	return errors.Wrap(lastErr, ErrAllDownloadersFailed.Error())
}

func rewind(dst io.WriteSeeker) error {
	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if t, ok := dst.(truncater); ok {
		return t.Truncate(0)
	}
	return nil
}

// progressWriter counts written bytes and logs the progress periodically.
type progressWriter struct {
	name    string
	written atomic.Int64
	total   int64
	w       io.Writer
}

func newProgressWriter(ctx context.Context, name string, w io.Writer, total int64) *progressWriter {
	pw := &progressWriter{name: name, w: w, total: total}
	go pw.report(ctx, 10*time.Second)
	return pw
}

func (p *progressWriter) report(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	last := int64(0)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			written := p.written.Load()
			rate := fmt.Sprintf("%.2f MB/s", float64(written-last)/(1024*1024*every.Seconds()))
			last = written
			if p.total <= 0 {
				zap.S().Named("downloader").Debugw("downloading", "file", p.name, "downloaded", fmt.Sprintf("%.2f MB", float64(written)/(1024*1024)), "rate", rate)
				continue
			}
			zap.S().Named("downloader").Debugw("downloading", "file", p.name, "progress", fmt.Sprintf("%.2f%%", 100*float64(written)/float64(p.total)), "rate", rate)
		}
	}
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written.Add(int64(n))
	return n, err
}

// copyWithProgress copies src into dst and checks the size when it is known.
func copyWithProgress(ctx context.Context, name string, dst io.Writer, src io.Reader, total int64) error {
	progressCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pw := newProgressWriter(progressCtx, name, dst, total)
	if _, err := io.Copy(pw, src); err != nil {
		return errors.Wrapf(err, "failed to copy %s", name)
	}

	if written := pw.written.Load(); total > 0 && written != total {
		return errors.Errorf("incomplete download of %s: expected %d bytes, received %d", name, total, written)
	}
	return nil
}
