package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// Validator is a wrapper around the actual validator
// It sets up the validator and extract the rule error message from the underlying error
type Validator struct {
	validator *validator.Validate
	rules     []ValidationRule
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &Validator{validator: v}
}

func (v *Validator) Register(rules ...ValidationRule) *Validator {
	for _, validationRule := range rules {
		validationRule.Rule(v.validator)
	}
	v.rules = append(v.rules, rules...)
	return v
}

// Struct validates s and flattens field errors into a single readable error.
func (v *Validator) Struct(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return NewErrValidation(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "hubrepo":
		return fmt.Sprintf("%s %q must have the form <owner>/<name>", field, fe.Value())
	case "relpath":
		return fmt.Sprintf("%s %q must be a relative path inside the repository", field, fe.Value())
	case "abspath":
		return fmt.Sprintf("%s %q must be an absolute path", field, fe.Value())
	case "modelname":
		return fmt.Sprintf("%s %q contains illegal characters", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed on rule %q", field, fe.Tag())
	}
}
