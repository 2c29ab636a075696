package renderjob

import (
	"net/http"

	"github.com/Abraxas-365/hojavida/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RENDER_JOB")

// Error codes
var (
	CodeJobNotFound           = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Render job not found")
	CodeApplicantNotFound     = ErrRegistry.Register("APPLICANT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Applicant not found")
	CodeInvalidIdentification = ErrRegistry.Register("INVALID_IDENTIFICATION", errx.TypeValidation, http.StatusBadRequest, "Invalid identification")
	CodeJobCreationFailed     = ErrRegistry.Register("CREATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Render job could not be created")
	CodeQueueEnqueueFailed    = ErrRegistry.Register("ENQUEUE_FAILED", errx.TypeExternal, http.StatusServiceUnavailable, "Render job could not be queued")
	CodeJobUpdateFailed       = ErrRegistry.Register("UPDATE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Render job could not be updated")
	CodeJobRetryFailed        = ErrRegistry.Register("RETRY_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Render job could not be rescheduled")
	CodeJobAttemptsExhausted  = ErrRegistry.Register("ATTEMPTS_EXHAUSTED", errx.TypeExternal, http.StatusBadGateway, "Render job failed after every attempt")
)

func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

func ErrApplicantNotFound() *errx.Error {
	return ErrRegistry.New(CodeApplicantNotFound)
}

func ErrInvalidIdentification() *errx.Error {
	return ErrRegistry.New(CodeInvalidIdentification)
}

func ErrJobCreationFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeJobCreationFailed, cause)
}

func ErrQueueEnqueueFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeQueueEnqueueFailed, cause)
}

func ErrJobUpdateFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeJobUpdateFailed, cause)
}

func ErrJobRetryFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeJobRetryFailed, cause)
}

func ErrJobAttemptsExhausted(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeJobAttemptsExhausted, cause)
}
