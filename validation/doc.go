// Package validation provides input validation for beankit.
//
// Struct tag validation (go-playground/validator) checks configuration
// structs; the programmatic Validator collects field errors for definitions
// built in code. Both report failures as *errors.AppError with code
// INVALID_INPUT and a "fields" detail.
//
//	type Config struct {
//	    Invalidation string `mapstructure:"invalidation" validate:"oneof=direct transitive"`
//	}
//	err := validation.Validate(cfg)
package validation
