package applicant

import (
	"net/http"

	"github.com/Abraxas-365/hojavida/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("APPLICANT")

// Error codes
var (
	CodeApplicantNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Applicant not found")
	CodeInvalidRequest         = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
	CodeValidationFailed       = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Request validation failed")
	CodeIdentificationRequired = ErrRegistry.Register("IDENTIFICATION_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Identification is required")
	CodeInvalidIdentification  = ErrRegistry.Register("INVALID_IDENTIFICATION", errx.TypeValidation, http.StatusBadRequest, "Invalid identification format")
	CodePhotoRequired          = ErrRegistry.Register("PHOTO_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Photo file is required")
	CodePhotoTooLarge          = ErrRegistry.Register("PHOTO_TOO_LARGE", errx.TypeValidation, http.StatusRequestEntityTooLarge, "Photo exceeds the size limit")
	CodeInvalidPhoto           = ErrRegistry.Register("INVALID_PHOTO", errx.TypeValidation, http.StatusUnsupportedMediaType, "Photo is not a supported image")
	CodePhotoUploadFailed      = ErrRegistry.Register("PHOTO_UPLOAD_FAILED", errx.TypeExternal, http.StatusBadGateway, "Photo could not be stored")
	CodeSaveFailed             = ErrRegistry.Register("SAVE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Applicant could not be saved")
	CodeLookupFailed           = ErrRegistry.Register("LOOKUP_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Applicant could not be loaded")
	CodeDocumentFailed         = ErrRegistry.Register("DOCUMENT_FAILED", errx.TypeExternal, http.StatusBadGateway, "Résumé could not be generated")
)

// Helper functions
func ErrApplicantNotFound() *errx.Error {
	return ErrRegistry.New(CodeApplicantNotFound)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeValidationFailed)
}

func ErrIdentificationRequired() *errx.Error {
	return ErrRegistry.New(CodeIdentificationRequired)
}

func ErrInvalidIdentification() *errx.Error {
	return ErrRegistry.New(CodeInvalidIdentification)
}

func ErrPhotoRequired() *errx.Error {
	return ErrRegistry.New(CodePhotoRequired)
}

func ErrPhotoTooLarge() *errx.Error {
	return ErrRegistry.New(CodePhotoTooLarge)
}

func ErrInvalidPhoto() *errx.Error {
	return ErrRegistry.New(CodeInvalidPhoto)
}

func ErrPhotoUploadFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodePhotoUploadFailed, cause)
}

func ErrSaveFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeSaveFailed, cause)
}

func ErrLookupFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeLookupFailed, cause)
}

func ErrDocumentFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeDocumentFailed, cause)
}
