package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewLocatorValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("hubrepo", hubRepoValidator),
		},
		{
			Rule: registerFn("relpath", relPathValidator),
		},
		{
			Rule: registerFn("abspath", absPathValidator),
		},
	}
}

func NewModelValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("modelname", modelNameValidator),
		},
	}
}
