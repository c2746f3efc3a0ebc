package form

import (
	"net/http"

	"github.com/Abraxas-365/hirekit/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("FORM")

// Error codes
var (
	CodeNotFound         = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Application form not found")
	CodeAlreadyExists    = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "An application form already exists for this job")
	CodeValidationFailed = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Invalid application form input")
	CodeInvalidExpiry    = ErrRegistry.Register("INVALID_EXPIRY", errx.TypeValidation, http.StatusBadRequest, "expires_at must be an RFC 3339 timestamp")
	CodeVersionConflict  = ErrRegistry.Register("VERSION_CONFLICT", errx.TypeConflict, http.StatusConflict, "Application form was modified concurrently, refetch and retry")
)

// Helper functions
func ErrNotFound() *errx.Error {
	return ErrRegistry.New(CodeNotFound)
}

func ErrAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeAlreadyExists)
}

func ErrValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeValidationFailed)
}

func ErrInvalidExpiry() *errx.Error {
	return ErrRegistry.New(CodeInvalidExpiry)
}

func ErrVersionConflict() *errx.Error {
	return ErrRegistry.New(CodeVersionConflict)
}
