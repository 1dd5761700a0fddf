package fetch

import (
	"context"

	api "github.com/kubev2v/model-server/api/v1alpha1"
)

// Router dispatches a locator to the fetcher of its kind.
type Router struct {
	hub  *HubFetcher
	disk *DiskFetcher
}

// NewRouter returns a router. A nil fetcher disables its locator kind.
func NewRouter(hub *HubFetcher, disk *DiskFetcher) *Router {
	return &Router{hub: hub, disk: disk}
}

func (r *Router) Fetch(ctx context.Context, locator api.Locator) (string, error) {
	switch l := locator.(type) {
	case api.HubLocator:
		if r.hub != nil {
			return r.hub.Fetch(ctx, l)
		}
	case api.DiskLocator:
		if r.disk != nil {
			return r.disk.Fetch(ctx, l)
		}
	}
	return "", NewErrUnsupportedLocator(locator)
}
