package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Bean registry errors
const (
	// ErrCodeInvalidName indicates a bean name without a local part.
	ErrCodeInvalidName ErrorCode = "INVALID_NAME"
	// ErrCodeNotFound indicates an operation on an unregistered bean.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeIncompatibleType indicates two type descriptors that are not assignable.
	ErrCodeIncompatibleType ErrorCode = "INCOMPATIBLE_TYPE"
	// ErrCodeScopeViolation indicates a bean resolved against a scope it may not use.
	ErrCodeScopeViolation ErrorCode = "SCOPE_VIOLATION"
	// ErrCodeCyclicDependency indicates a factory that re-entered its own construction.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"
	// ErrCodeConstructionFailed indicates a factory that returned an error.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// ErrCodeInternal indicates an unexpected failure.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// Factories may fail transiently; everything else is a programming error.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeConstructionFailed: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
