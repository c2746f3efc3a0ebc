package pipeline

import (
	"net/http"

	"github.com/Abraxas-365/hirekit/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("PIPELINE")

// Error codes
var (
	CodeNotFound                = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Hiring process not found")
	CodeValidationFailed        = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Invalid hiring process input")
	CodeUnknownStage            = ErrRegistry.Register("UNKNOWN_STAGE", errx.TypeValidation, http.StatusBadRequest, "Stage is not declared on this process")
	CodeInvalidStatusTransition = ErrRegistry.Register("INVALID_STATUS_TRANSITION", errx.TypeBusiness, http.StatusUnprocessableEntity, "Status transition not allowed")
	CodeInvalidStageTransition  = ErrRegistry.Register("INVALID_STAGE_TRANSITION", errx.TypeBusiness, http.StatusUnprocessableEntity, "Stage transition not allowed")
	CodeVersionConflict         = ErrRegistry.Register("VERSION_CONFLICT", errx.TypeConflict, http.StatusConflict, "Hiring process was modified concurrently, refetch and retry")
)

// Helper functions
func ErrNotFound() *errx.Error {
	return ErrRegistry.New(CodeNotFound)
}

func ErrValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeValidationFailed)
}

func ErrUnknownStage() *errx.Error {
	return ErrRegistry.New(CodeUnknownStage)
}

func ErrInvalidStatusTransition() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatusTransition)
}

func ErrInvalidStageTransition() *errx.Error {
	return ErrRegistry.New(CodeInvalidStageTransition)
}

func ErrVersionConflict() *errx.Error {
	return ErrRegistry.New(CodeVersionConflict)
}
