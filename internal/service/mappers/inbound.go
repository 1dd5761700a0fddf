package mappers

import (
	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/store/model"
)

func ModelFromApi(id uuid.UUID, req api.RegisterModelRequest) model.Model {
	return model.Model{
		ID:        id,
		Name:      req.Model,
		ModelType: string(req.ModelType),
		Runtime:   string(req.Runtime),
	}
}

func VersionFromApi(modelID uuid.UUID, version string, req api.RegisterModelRequest) model.ModelVersion {
	return model.ModelVersion{
		ModelID:    modelID,
		Version:    version,
		ImportedAt: req.ImportMetadata.ImportedAt.UTC(),
		Source:     model.MakeJSONField(req.ImportMetadata.Source),
		Params:     model.MakeJSONField(req.Params),
	}
}
