package fetch

import (
	"context"
	"errors"
	"io/fs"
	"os"

	api "github.com/kubev2v/model-server/api/v1alpha1"
	pkgerrors "github.com/pkg/errors"
)

// DiskFetcher imports files that already live on the local filesystem.
// The artifact is used in place.
type DiskFetcher struct{}

func NewDiskFetcher() *DiskFetcher {
	return &DiskFetcher{}
}

func (d *DiskFetcher) Fetch(ctx context.Context, locator api.DiskLocator) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(locator.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", NewErrFileNotFound(locator.Path)
		}
		return "", pkgerrors.Wrapf(err, "failed to stat %s", locator.Path)
	}
	if !info.Mode().IsRegular() {
		return "", pkgerrors.Errorf("%s is not a regular file", locator.Path)
	}

	return locator.Path, nil
}
