package validator

import (
	"errors"
)

type ErrValidation struct {
	error
}

func NewErrValidation(message string) *ErrValidation {
	return &ErrValidation{errors.New(message)}
}
