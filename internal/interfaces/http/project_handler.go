package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taskflow-api/internal/application/analytics"
	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/application/usecase"
)

// ProjectHandler maneja CRUD de proyectos, su avance y su reporte PDF (protegido).
type ProjectHandler struct {
	uc        *usecase.ProjectUseCase
	dashboard *analytics.DashboardUseCase
	report    *analytics.ReportUseCase
}

// NewProjectHandler construye el handler. dashboard y report pueden ser nil;
// en ese caso /stats y /report responden 404.
func NewProjectHandler(uc *usecase.ProjectUseCase, dashboard *analytics.DashboardUseCase, report *analytics.ReportUseCase) *ProjectHandler {
	return &ProjectHandler{uc: uc, dashboard: dashboard, report: report}
}

// Create godoc
// @Summary      Crear proyecto
// @Tags         projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProjectRequest  true  "Datos del proyecto"
// @Success      201   {object}  dto.Envelope{data=dto.ProjectResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.CreateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), actor, in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, out, "proyecto creado")
}

// List godoc
// @Summary      Listar proyectos
// @Tags         projects
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "active | archived"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.Envelope{data=[]dto.ProjectResponse}
// @Router       /api/projects [get]
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return fail(c, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.List(c.UserContext(), actor, c.Query("status"), page)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out, "")
}

// GetByID godoc
// @Summary      Obtener proyecto por ID
// @Tags         projects
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.Envelope{data=dto.ProjectResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out, "")
}

// Update godoc
// @Summary      Actualizar proyecto (nombre, descripción, estado)
// @Tags         projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del proyecto"
// @Param        body  body  dto.UpdateProjectRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.Envelope{data=dto.ProjectResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [patch]
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return fail(c, err)
	}
	var in dto.UpdateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out, "proyecto actualizado")
}

// Delete godoc
// @Summary      Eliminar proyecto y sus tareas
// @Tags         projects
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.Envelope
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return fail(c, err)
	}
	id := c.Params("id")
	if err := h.uc.Delete(c.UserContext(), actor, id); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"id": id}, "proyecto eliminado")
}

// Stats godoc
// @Summary      Avance del proyecto
// @Tags         projects
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.Envelope{data=stats.ProjectStats}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/stats [get]
func (h *ProjectHandler) Stats(c *fiber.Ctx) error {
	if h.dashboard == nil {
		return fiber.ErrNotFound
	}
	actor, err := mustActor(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.dashboard.ProjectStats(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, out, "")
}

// Report godoc
// @Summary      Reporte PDF del proyecto
// @Tags         projects
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/report [get]
func (h *ProjectHandler) Report(c *fiber.Ctx) error {
	if h.report == nil {
		return fiber.ErrNotFound
	}
	actor, err := mustActor(c)
	if err != nil {
		return fail(c, err)
	}
	pdf, filename, err := h.report.ProjectReport(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(pdf)
}
