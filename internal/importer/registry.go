package importer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
)

var ErrMissingArtifactPath = errors.New("completed import carries no artifact path")

// RegistryBridge turns a completed import into a model registration.
type RegistryBridge struct {
	registry ModelRegistry
	now      func() time.Time
}

func NewRegistryBridge(registry ModelRegistry) *RegistryBridge {
	return &RegistryBridge{registry: registry, now: time.Now}
}

func (b *RegistryBridge) Register(ctx context.Context, job api.ImportJob, info *string) (uuid.UUID, error) {
	req, err := NewRegisterModelRequest(job, info, b.now())
	if err != nil {
		return uuid.Nil, err
	}
	return b.registry.Register(ctx, req)
}

// NewRegisterModelRequest names the model after the locator's file name and
// leaves the version choice to the registry.
func NewRegisterModelRequest(job api.ImportJob, info *string, importedAt time.Time) (api.RegisterModelRequest, error) {
	if info == nil || *info == "" {
		return api.RegisterModelRequest{}, ErrMissingArtifactPath
	}
	return api.RegisterModelRequest{
		Model:     job.Locator.FileName(),
		ModelType: api.ModelTypeCompletion,
		Runtime:   api.RuntimeGgml,
		ImportMetadata: api.ImportMetadata{
			ImportedAt: importedAt.UTC(),
			Source:     api.LocatorEnvelope{Locator: job.Locator},
		},
		Params: api.NewCompletionParams(*info),
	}, nil
}
