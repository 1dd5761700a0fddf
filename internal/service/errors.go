package service

import (
	"fmt"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id string, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrModelNotFound(name string) *ErrResourceNotFound {
	return NewErrResourceNotFound(name, "model")
}

func NewErrModelVersionNotFound(name, version string) *ErrResourceNotFound {
	return NewErrResourceNotFound(fmt.Sprintf("%s@%s", name, version), "model version")
}

func NewErrImportJobNotFound(id string) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "import job")
}

func NewErrHubRepositoryNotFound(repo string) *ErrResourceNotFound {
	return NewErrResourceNotFound(repo, "hub repository")
}

type ErrModelNameConflict struct {
	error
}

func NewErrModelNameConflict(name string) *ErrModelNameConflict {
	return &ErrModelNameConflict{fmt.Errorf("a model named %s already exists", name)}
}

type ErrModelVersionConflict struct {
	error
}

func NewErrModelVersionConflict(name, version string) *ErrModelVersionConflict {
	return &ErrModelVersionConflict{fmt.Errorf("model %s already has version %s", name, version)}
}

type ErrInvalidRequest struct {
	error
}

func NewErrInvalidRequest(err error) *ErrInvalidRequest {
	return &ErrInvalidRequest{fmt.Errorf("bad request: %w", err)}
}

type ErrServiceUnavailable struct {
	error
}

func NewErrServiceUnavailable(reason string) *ErrServiceUnavailable {
	return &ErrServiceUnavailable{fmt.Errorf("service unavailable: %s", reason)}
}
