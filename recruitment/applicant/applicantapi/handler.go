package applicantapi

import (
	"io"

	"github.com/Abraxas-365/hojavida/recruitment/applicant"
	"github.com/Abraxas-365/hojavida/recruitment/applicant/applicantsrv"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for applicant intake
type Handlers struct {
	service *applicantsrv.Service
}

// NewHandlers creates a new applicant handlers instance
func NewHandlers(service *applicantsrv.Service) *Handlers {
	return &Handlers{
		service: service,
	}
}

// Register stores the full intake form and renders the résumé
// POST /api/hv/registrar
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req applicant.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return applicant.ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	resp, err := h.service.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// GetByIdentification returns the applicant and related blocks
// GET /api/aspirante?identificacion=123
func (h *Handlers) GetByIdentification(c *fiber.Ctx) error {
	resp, err := h.service.GetByIdentification(c.UserContext(), c.Query("identificacion"))
	if err != nil {
		return err
	}

	if !resp.Exists {
		return c.JSON(fiber.Map{"existe": false})
	}
	return c.JSON(resp)
}

// UploadPhoto stores a profile photo
// POST /api/hv/upload-photo (multipart: identificacion, photo)
func (h *Handlers) UploadPhoto(c *fiber.Ctx) error {
	identification := c.FormValue("identificacion")
	if identification == "" {
		return applicant.ErrIdentificationRequired()
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return applicant.ErrPhotoRequired().WithDetail("field", "photo")
	}
	if file.Size > applicant.MaxPhotoBytes {
		return applicant.ErrPhotoTooLarge().
			WithDetail("size_bytes", file.Size).
			WithDetail("max_bytes", applicant.MaxPhotoBytes)
	}

	f, err := file.Open()
	if err != nil {
		return applicant.ErrInvalidRequest().WithDetail("reason", err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, applicant.MaxPhotoBytes+1))
	if err != nil {
		return applicant.ErrInvalidRequest().WithDetail("reason", err.Error())
	}

	resp, err := h.service.UploadPhoto(c.UserContext(), applicant.UploadPhotoRequest{
		Identification: identification,
		FileName:       file.Filename,
		ContentType:    file.Header.Get("Content-Type"),
		Data:           data,
	})
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// RegisterRoutes registers all applicant routes. intake is applied to the
// write endpoints (rate limiting).
func RegisterRoutes(app *fiber.App, handlers *Handlers, intake ...fiber.Handler) {
	api := app.Group("/api")

	api.Post("/hv/registrar", chain(intake, handlers.Register)...)
	api.Post("/hv/upload-photo", chain(intake, handlers.UploadPhoto)...)
	api.Get("/aspirante", handlers.GetByIdentification)
}

func chain(middleware []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(middleware)+1)
	return append(append(out, middleware...), h)
}
