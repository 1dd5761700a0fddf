package mappers

import (
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/store/model"
)

func ModelToApi(m model.Model) api.RegisteredModel {
	versions := make([]api.ModelVersion, 0, len(m.Versions))
	for _, v := range m.Versions {
		versions = append(versions, api.ModelVersion{
			Version: v.Version,
			ImportMetadata: api.ImportMetadata{
				ImportedAt: v.ImportedAt.UTC(),
				Source:     v.Source.Data,
			},
		})
	}

	return api.RegisteredModel{
		ID:          m.ID,
		Name:        m.Name,
		ModelType:   api.ModelType(m.ModelType),
		Runtime:     api.Runtime(m.Runtime),
		Description: m.Description,
		Versions:    versions,
	}
}

func ModelListToApi(models model.ModelList) api.GetRegisteredModelsResponse {
	resp := api.GetRegisteredModelsResponse{Models: make([]api.RegisteredModel, 0, len(models))}
	for _, m := range models {
		resp.Models = append(resp.Models, ModelToApi(m))
	}
	return resp
}
