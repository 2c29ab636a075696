package catalog

import (
	"net/http"

	"github.com/Abraxas-365/hojavida/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("CATALOG")

// Error codes
var (
	CodeUnknownKind        = ErrRegistry.Register("UNKNOWN_KIND", errx.TypeNotFound, http.StatusNotFound, "Unknown catalog")
	CodeDepartmentRequired = ErrRegistry.Register("DEPARTMENT_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Falta el parámetro 'departamento'")
	CodeLoadFailed         = ErrRegistry.Register("LOAD_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Catalog could not be loaded")
)

func ErrUnknownKind() *errx.Error {
	return ErrRegistry.New(CodeUnknownKind)
}

func ErrDepartmentRequired() *errx.Error {
	return ErrRegistry.New(CodeDepartmentRequired)
}

func ErrLoadFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeLoadFailed, cause)
}
