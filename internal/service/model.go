package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/service/mappers"
	"github.com/kubev2v/model-server/internal/store"
	"github.com/kubev2v/model-server/internal/store/model"
	"github.com/kubev2v/model-server/internal/validator"
	"go.uber.org/zap"
)

const maxRegisterAttempts = 5

type ModelFilter struct {
	Runtime   string
	ModelType string
}

// ModelService is the model registry. Completed imports are registered through it.
type ModelService struct {
	store     store.Store
	validator *validator.Validator
}

func NewModelService(s store.Store) *ModelService {
	return &ModelService{
		store:     s,
		validator: validator.NewValidator().Register(validator.NewModelValidationRules()...),
	}
}

// Register records a new version of req.Model, creating the model on its first
// import. Without an explicit version the first import gets 0.1.0 and every
// later one bumps the minor version of the latest.
func (ms *ModelService) Register(ctx context.Context, req api.RegisterModelRequest) (uuid.UUID, error) {
	if req.Model == "" {
		return uuid.Nil, NewErrInvalidRequest(errors.New("model name is required"))
	}
	if req.Version != "" {
		if _, err := semver.StrictNewVersion(req.Version); err != nil {
			return uuid.Nil, NewErrInvalidRequest(fmt.Errorf("version %q: %w", req.Version, err))
		}
	}

	id, err := ms.register(ctx, req)
	// a concurrent import of the same name took the version this one computed
	for attempt := 1; attempt < maxRegisterAttempts && errors.Is(err, store.ErrDuplicateKey) && req.Version == ""; attempt++ {
		id, err = ms.register(ctx, req)
	}
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return uuid.Nil, NewErrModelVersionConflict(req.Model, req.Version)
		}
		return uuid.Nil, err
	}

	return id, nil
}

func (ms *ModelService) register(ctx context.Context, req api.RegisterModelRequest) (uuid.UUID, error) {
	logger := zap.S().Named("model_service").With("model", req.Model)

	ctx, err := ms.store.NewTransactionContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	var (
		modelID uuid.UUID
		version string
	)

	existing, err := ms.store.Model().Get(ctx, req.Model)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		modelID = uuid.New()
		version = req.Version
		if version == "" {
			version = model.InitialVersion
		}

		m := mappers.ModelFromApi(modelID, req)
		m.Versions = []model.ModelVersion{mappers.VersionFromApi(modelID, version, req)}
		if _, err := ms.store.Model().Create(ctx, m); err != nil {
			return uuid.Nil, err
		}
	case err != nil:
		return uuid.Nil, err
	default:
		modelID = existing.ID
		version = req.Version
		if version == "" {
			version = existing.NextVersion()
		}

		if _, err := ms.store.Model().AddVersion(ctx, mappers.VersionFromApi(modelID, version, req)); err != nil {
			return uuid.Nil, err
		}
	}

	if _, err := store.Commit(ctx); err != nil {
		return uuid.Nil, err
	}

	logger.Infow("model version registered", "model_id", modelID, "version", version)
	return modelID, nil
}

func (ms *ModelService) ListModels(ctx context.Context, filter ModelFilter) (model.ModelList, error) {
	storeFilter := store.NewModelQueryFilter()
	if filter.Runtime != "" {
		storeFilter = storeFilter.ByRuntime(filter.Runtime)
	}
	if filter.ModelType != "" {
		storeFilter = storeFilter.ByModelType(filter.ModelType)
	}
	return ms.store.Model().List(ctx, storeFilter)
}

func (ms *ModelService) GetModel(ctx context.Context, name string) (*model.Model, error) {
	m, err := ms.store.Model().Get(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrModelNotFound(name)
		}
		return nil, err
	}
	return m, nil
}

func (ms *ModelService) GetDescription(ctx context.Context, name string) (string, error) {
	m, err := ms.GetModel(ctx, name)
	if err != nil {
		return "", err
	}
	return m.Description, nil
}

func (ms *ModelService) UpdateDescription(ctx context.Context, name, description string) error {
	if err := ms.store.Model().UpdateDescription(ctx, name, description); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrModelNotFound(name)
		}
		return err
	}
	return nil
}

func (ms *ModelService) Rename(ctx context.Context, name string, req api.RenameModelRequest) error {
	if err := ms.validator.Struct(req); err != nil {
		return NewErrInvalidRequest(err)
	}

	if err := ms.store.Model().Rename(ctx, name, req.Name); err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return NewErrModelNotFound(name)
		case errors.Is(err, store.ErrDuplicateKey):
			return NewErrModelNameConflict(req.Name)
		}
		return err
	}

	zap.S().Named("model_service").Infow("model renamed", "model", name, "new_name", req.Name)
	return nil
}

func (ms *ModelService) DeleteModel(ctx context.Context, name string) error {
	ctx, err := ms.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := ms.store.Model().Delete(ctx, name); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrModelNotFound(name)
		}
		return err
	}

	_, err = store.Commit(ctx)
	return err
}

func (ms *ModelService) DeleteVersion(ctx context.Context, name, version string) error {
	if err := ms.store.Model().DeleteVersion(ctx, name, version); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrModelVersionNotFound(name, version)
		}
		return err
	}
	return nil
}
