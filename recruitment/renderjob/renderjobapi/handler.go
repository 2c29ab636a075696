package renderjobapi

import (
	"github.com/Abraxas-365/hojavida/recruitment/renderjob/renderjobsrv"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	service *renderjobsrv.Service
}

func NewHandlers(service *renderjobsrv.Service) *Handlers {
	return &Handlers{service: service}
}

// Regenerate queues a new résumé render for an applicant
// POST /api/hv/:identificacion/pdf
func (h *Handlers) Regenerate(c *fiber.Ctx) error {
	resp, err := h.service.Enqueue(c.UserContext(), c.Params("identificacion"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetStatus returns the state of a render job
// GET /api/hv/jobs/:id
func (h *Handlers) GetStatus(c *fiber.Ctx) error {
	resp, err := h.service.GetStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// QueueStats reports the render queue depth
// GET /api/hv/jobs/stats
func (h *Handlers) QueueStats(c *fiber.Ctx) error {
	stats, err := h.service.QueueStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func RegisterRoutes(app *fiber.App, handlers *Handlers, intake ...fiber.Handler) {
	hv := app.Group("/api/hv")

	hv.Get("/jobs/stats", handlers.QueueStats)
	hv.Get("/jobs/:id", handlers.GetStatus)

	regenerate := append(append([]fiber.Handler{}, intake...), handlers.Regenerate)
	hv.Post("/:identificacion/pdf", regenerate...)
}
