package document

import (
	"net/http"

	"github.com/Abraxas-365/hojavida/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("DOCUMENT")

var (
	CodeValidation    = ErrRegistry.Register("VALIDATION", errx.TypeValidation, http.StatusBadRequest, "Missing required input")
	CodeTemplateRead  = ErrRegistry.Register("TEMPLATE_READ", errx.TypeInternal, http.StatusInternalServerError, "Template could not be loaded")
	CodeEmptyDocument = ErrRegistry.Register("EMPTY_DOCUMENT", errx.TypeInternal, http.StatusInternalServerError, "Rendered document is empty")
	CodeEmptyInput    = ErrRegistry.Register("EMPTY_INPUT", errx.TypeValidation, http.StatusBadRequest, "Nothing to rasterize")
	CodeRenderTimeout = ErrRegistry.Register("RENDER_TIMEOUT", errx.TypeExternal, http.StatusGatewayTimeout, "Rendering timed out")
	CodeRenderFailed  = ErrRegistry.Register("RENDER_FAILED", errx.TypeExternal, http.StatusBadGateway, "Rendering engine failed")
	CodeUploadFailed  = ErrRegistry.Register("UPLOAD_FAILED", errx.TypeExternal, http.StatusBadGateway, "Upload to object store failed")
)

func ErrValidation() *errx.Error {
	return ErrRegistry.New(CodeValidation)
}

func ErrTemplateRead(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeTemplateRead, cause)
}

func ErrEmptyDocument() *errx.Error {
	return ErrRegistry.New(CodeEmptyDocument)
}

func ErrEmptyInput() *errx.Error {
	return ErrRegistry.New(CodeEmptyInput)
}

func ErrRenderTimeout(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeRenderTimeout, cause)
}

func ErrRenderFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeRenderFailed, cause)
}

func ErrUploadFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeUploadFailed, cause)
}

// IsTransient reports whether err is a rasterization fault worth another attempt
func IsTransient(err error) bool {
	return errx.IsCode(err, CodeRenderTimeout) || errx.IsCode(err, CodeRenderFailed)
}
