package validator

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	hubRepoRegex   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*/[A-Za-z0-9][A-Za-z0-9._-]*$`)
	modelNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9+_.-]*$`)
)

func hubRepoValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return hubRepoRegex.MatchString(val)
}

// relPathValidator accepts slash separated paths that stay inside their root.
func relPathValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if val == "" || strings.HasPrefix(val, "/") || strings.Contains(val, "\\") {
		return false
	}
	cleaned := path.Clean(val)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return !strings.HasSuffix(val, "/")
}

func absPathValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return filepath.IsAbs(val) && filepath.Base(val) != string(filepath.Separator)
}

func modelNameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return modelNameRegex.MatchString(val)
}
