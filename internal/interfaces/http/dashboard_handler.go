package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/taskflow-api/internal/application/analytics"
)

// DashboardHandler maneja el resumen del tablero.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen del tablero
// @Description  Proyectos activos, tareas completadas y pendientes, avance por
// @Description  proyecto y los tres proyectos actualizados más recientemente.
// @Description  Se recalcula en cada petición.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=dto.DashboardResponse}
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return fail(c, err)
	}
	summary, err := h.uc.GetSummary(c.UserContext(), actor)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, summary, "")
}
