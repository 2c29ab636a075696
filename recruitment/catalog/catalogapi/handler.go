package catalogapi

import (
	"github.com/Abraxas-365/hojavida/recruitment/catalog"
	"github.com/Abraxas-365/hojavida/recruitment/catalog/catalogsrv"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	service *catalogsrv.Service
}

func NewHandlers(service *catalogsrv.Service) *Handlers {
	return &Handlers{service: service}
}

// List serves one catalog
// GET /api/config/:kind (tipo-identificacion, departamentos, ciudades?departamento=, eps, pension)
func (h *Handlers) List(c *fiber.Ctx) error {
	entries, err := h.service.List(c.UserContext(), catalog.Kind(c.Params("kind")), c.Query("departamento"))
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	app.Get("/api/config/:kind", handlers.List)
}
