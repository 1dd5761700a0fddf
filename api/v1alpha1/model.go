package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

// ModelType is the category of a model.
type ModelType string

// Runtime is the runtime a model is built for, e.g. "ggml" or "onnx".
type Runtime string

const (
	ModelTypeCompletion ModelType = "completion"

	RuntimeGgml Runtime = "ggml"

	ModelParamsTypeCompletion = "paramsv1/completion"
)

type RegisteredModel struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	ModelType   ModelType      `json:"model_type"`
	Runtime     Runtime        `json:"runtime"`
	Description string         `json:"description"`
	Versions    []ModelVersion `json:"versions"`
}

type ModelVersion struct {
	Version        string         `json:"version"`
	ImportMetadata ImportMetadata `json:"import_metadata"`
}

type ImportMetadata struct {
	ImportedAt time.Time       `json:"imported_at"`
	Source     LocatorEnvelope `json:"source"`
}

// ModelParams are the runtime parameters stored with a model version.
type ModelParams struct {
	Type      string `json:"type"`
	ModelPath string `json:"model_path"`
}

func NewCompletionParams(modelPath string) ModelParams {
	return ModelParams{Type: ModelParamsTypeCompletion, ModelPath: modelPath}
}

// RegisterModelRequest asks the registry to record a new model version.
// An empty Version lets the registry pick the next one.
type RegisterModelRequest struct {
	Model          string         `json:"model"`
	Version        string         `json:"version,omitempty"`
	ModelType      ModelType      `json:"model_type"`
	Runtime        Runtime        `json:"runtime"`
	ImportMetadata ImportMetadata `json:"import_metadata"`
	Params         ModelParams    `json:"internal_params"`
}

type GetRegisteredModelsResponse struct {
	Models []RegisteredModel `json:"models"`
}

type UpdateDescriptionRequest struct {
	Description string `json:"description"`
}

type RenameModelRequest struct {
	Name string `json:"name" validate:"required,modelname"`
}

type HubFile struct {
	Filename    string    `json:"filename"`
	Subfolder   *string   `json:"subfolder,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	CommittedAt time.Time `json:"committed_at"`
}

type ListHubFilesResponse struct {
	Repo  string    `json:"repo"`
	Files []HubFile `json:"files"`
}

type ErrorResponse struct {
	Message   string  `json:"message"`
	RequestId *string `json:"request_id,omitempty"`
}
