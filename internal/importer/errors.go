package importer

import (
	"errors"
	"fmt"

	api "github.com/kubev2v/model-server/api/v1alpha1"
)

var (
	ErrImporterNotRunning = errors.New("importer is not running")
	ErrDuplicateJob       = errors.New("import job already exists")
)

type ErrJobNotFound struct {
	error
}

func NewErrJobNotFound(id api.ImportJobID) *ErrJobNotFound {
	return &ErrJobNotFound{fmt.Errorf("import job %s not found", id)}
}

type ErrInvalidLocator struct {
	error
}

func NewErrInvalidLocator(err error) *ErrInvalidLocator {
	return &ErrInvalidLocator{fmt.Errorf("invalid locator: %w", err)}
}

func (e *ErrInvalidLocator) Unwrap() error {
	return errors.Unwrap(e.error)
}

type ErrInvalidTransition struct {
	error
}

func NewErrInvalidTransition(id api.ImportJobID, from, to api.ImportJobState) *ErrInvalidTransition {
	return &ErrInvalidTransition{fmt.Errorf("import job %s: invalid transition %s -> %s", id, from, to)}
}
