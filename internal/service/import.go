package service

import (
	"context"
	"errors"

	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/fetch"
	"github.com/kubev2v/model-server/internal/importer"
)

type Importer interface {
	Submit(locator api.Locator) (api.ImportJobID, error)
	GetStatus(id api.ImportJobID) (api.ImportJobStatus, error)
	ListStatus() map[api.ImportJobID]api.ImportJobStatus
}

type HubBrowser interface {
	ListFiles(ctx context.Context, repo string) ([]api.HubFile, error)
}

type ImportService struct {
	importer Importer
	hub      HubBrowser
}

// NewImportService returns the import service. A nil hub disables hub browsing.
func NewImportService(importer Importer, hub HubBrowser) *ImportService {
	return &ImportService{importer: importer, hub: hub}
}

func (is *ImportService) Submit(locator api.Locator) (api.ImportJobID, error) {
	id, err := is.importer.Submit(locator)
	if err != nil {
		var invalid *importer.ErrInvalidLocator
		switch {
		case errors.As(err, &invalid):
			return id, NewErrInvalidRequest(err)
		case errors.Is(err, importer.ErrImporterNotRunning):
			return id, NewErrServiceUnavailable("importer is not accepting jobs")
		}
		return id, err
	}
	return id, nil
}

func (is *ImportService) GetStatus(id api.ImportJobID) (api.ImportJobStatus, error) {
	status, err := is.importer.GetStatus(id)
	if err != nil {
		var notFound *importer.ErrJobNotFound
		if errors.As(err, &notFound) {
			return status, NewErrImportJobNotFound(id.String())
		}
		return status, err
	}
	return status, nil
}

func (is *ImportService) ListStatus() api.GetAllJobStatusResponse {
	return api.GetAllJobStatusResponse{ImportJobs: is.importer.ListStatus()}
}

func (is *ImportService) ListHubFiles(ctx context.Context, community, name string) (api.ListHubFilesResponse, error) {
	if is.hub == nil {
		return api.ListHubFilesResponse{}, NewErrServiceUnavailable("hub browsing is disabled")
	}

	files, err := is.hub.ListFiles(ctx, community+"/"+name)
	if err != nil {
		var notFound *fetch.ErrRepositoryNotFound
		if errors.As(err, &notFound) {
			return api.ListHubFilesResponse{}, NewErrHubRepositoryNotFound(community + "/" + name)
		}
		return api.ListHubFilesResponse{}, err
	}

	return api.ListHubFilesResponse{Repo: name, Files: files}, nil
}
