// Package errors provides the structured error type used across beankit.
//
// Every failure of the bean registry is an *AppError carrying a
// machine-readable code (INVALID_NAME, NOT_FOUND, INCOMPATIBLE_TYPE,
// SCOPE_VIOLATION, ...), a deterministic message that names the bean and the
// offending type descriptors, and structured details for logging.
//
//	if errors.HasCode(err, errors.ErrCodeIncompatibleType) {
//	    ...
//	}
package errors
