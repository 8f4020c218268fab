package http_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/internal/domain/stats"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escenario acme de punta a punta
// ──────────────────────────────────────────────────────────────────────────────

func TestAcme_ProyectoTareasYBorradoEnCascada(t *testing.T) {
	s := newTestServer(t)
	adminTok, reg := s.registerTenant(t, "Acme", "acme", "u1@acme.io")
	memberTok, member := s.addMember(t, adminTok, "acme", "u2@acme.io")
	assert.Equal(t, entity.RoleMember, member.Role)
	assert.Equal(t, reg.Tenant.ID, member.TenantID)

	// U2 crea el proyecto "Launch"
	var p dto.ProjectResponse
	s.data(t, http.MethodPost, "/api/projects", memberTok, dto.CreateProjectRequest{Name: "Launch"}, fiber.StatusCreated, &p)
	assert.Equal(t, entity.ProjectStatusActive, p.Status)
	assert.Equal(t, member.ID, p.CreatorID)

	var tasks [3]dto.TaskResponse
	for i, title := range []string{"copy", "landing", "prensa"} {
		s.data(t, http.MethodPost, "/api/tasks", memberTok, dto.CreateTaskRequest{ProjectID: p.ID, Title: title}, fiber.StatusCreated, &tasks[i])
		assert.Equal(t, entity.TaskStatusTodo, tasks[i].Status)
	}

	// U1 marca una tarea como done: queda atribuida a U1
	var done dto.TaskResponse
	s.data(t, http.MethodPatch, "/api/tasks/"+tasks[0].ID, adminTok, dto.UpdateTaskStatusRequest{Status: entity.TaskStatusDone}, fiber.StatusOK, &done)
	assert.Equal(t, entity.TaskStatusDone, done.Status)
	assert.Equal(t, reg.Admin.ID, done.UpdatedBy)
	assert.Equal(t, member.ID, done.CreatedBy)

	var ps stats.ProjectStats
	s.data(t, http.MethodGet, "/api/projects/"+p.ID+"/stats", memberTok, nil, fiber.StatusOK, &ps)
	assert.Equal(t, 3, ps.TotalTasks)
	assert.Equal(t, 1, ps.DoneTasks)
	assert.Equal(t, 33, ps.CompletionPercentage)

	// U2 borra el proyecto: las tareas desaparecen y el proyecto da 404
	s.data(t, http.MethodDelete, "/api/projects/"+p.ID, memberTok, nil, fiber.StatusOK, nil)

	var left []dto.TaskResponse
	s.data(t, http.MethodGet, "/api/tasks?projectId="+p.ID, memberTok, nil, fiber.StatusOK, &left)
	assert.Empty(t, left)

	e := s.failure(t, http.MethodGet, "/api/projects/"+p.ID, memberTok, nil, fiber.StatusNotFound)
	assert.Equal(t, string(domain.KindNotFound), e.Kind)

	// borrar de nuevo es NotFound
	s.failure(t, http.MethodDelete, "/api/projects/"+p.ID, memberTok, nil, fiber.StatusNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento de tenant
// ──────────────────────────────────────────────────────────────────────────────

func TestTenant_RecursosDeOtroTenantSonNotFound(t *testing.T) {
	s := newTestServer(t)
	acmeTok, _ := s.registerTenant(t, "Acme", "acme", "admin@acme.io")
	globexTok, _ := s.registerTenant(t, "Globex", "globex", "admin@globex.io")

	var p dto.ProjectResponse
	s.data(t, http.MethodPost, "/api/projects", acmeTok, dto.CreateProjectRequest{Name: "Secreto"}, fiber.StatusCreated, &p)
	var task dto.TaskResponse
	s.data(t, http.MethodPost, "/api/tasks", acmeTok, dto.CreateTaskRequest{ProjectID: p.ID, Title: "t"}, fiber.StatusCreated, &task)

	s.failure(t, http.MethodGet, "/api/projects/"+p.ID, globexTok, nil, fiber.StatusNotFound)
	s.failure(t, http.MethodPatch, "/api/projects/"+p.ID, globexTok, dto.UpdateProjectRequest{Name: ptr("x")}, fiber.StatusNotFound)
	s.failure(t, http.MethodDelete, "/api/projects/"+p.ID, globexTok, nil, fiber.StatusNotFound)
	s.failure(t, http.MethodPatch, "/api/tasks/"+task.ID, globexTok, dto.UpdateTaskStatusRequest{Status: entity.TaskStatusDone}, fiber.StatusNotFound)
	s.failure(t, http.MethodPost, "/api/tasks", globexTok, dto.CreateTaskRequest{ProjectID: p.ID, Title: "intruso"}, fiber.StatusNotFound)

	var globexProjects []dto.ProjectResponse
	s.data(t, http.MethodGet, "/api/projects", globexTok, nil, fiber.StatusOK, &globexProjects)
	assert.Empty(t, globexProjects)

	var globexTasks []dto.TaskResponse
	s.data(t, http.MethodGet, "/api/tasks?projectId="+p.ID, globexTok, nil, fiber.StatusOK, &globexTasks)
	assert.Empty(t, globexTasks)

	// el proyecto de acme sigue intacto
	var still dto.ProjectResponse
	s.data(t, http.MethodGet, "/api/projects/"+p.ID, acmeTok, nil, fiber.StatusOK, &still)
	assert.Equal(t, "Secreto", still.Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// Autorización
// ──────────────────────────────────────────────────────────────────────────────

func TestUsuarios_AdminNoPuedeBorrarseASiMismo(t *testing.T) {
	s := newTestServer(t)
	adminTok, reg := s.registerTenant(t, "Acme", "acme", "admin@acme.io")

	e := s.failure(t, http.MethodDelete, "/api/users/"+reg.Admin.ID, adminTok, nil, fiber.StatusForbidden)
	assert.Equal(t, string(domain.KindForbidden), e.Kind)

	var me dto.UserResponse
	s.data(t, http.MethodGet, "/api/auth/me", adminTok, nil, fiber.StatusOK, &me)
	assert.Equal(t, reg.Admin.ID, me.ID)
}

func TestUsuarios_MiembroNoCreaUsuariosNiCambiaSuRol(t *testing.T) {
	s := newTestServer(t)
	adminTok, _ := s.registerTenant(t, "Acme", "acme", "admin@acme.io")
	memberTok, member := s.addMember(t, adminTok, "acme", "bob@acme.io")

	s.failure(t, http.MethodPost, "/api/users", memberTok, dto.CreateUserRequest{
		FullName: "Eve", Email: "eve@acme.io", Password: "supersecret",
	}, fiber.StatusForbidden)
	s.failure(t, http.MethodPatch, "/api/users/"+member.ID, memberTok, dto.UpdateUserRequest{Role: ptr(entity.RoleTenantAdmin)}, fiber.StatusForbidden)

	var renamed dto.UserResponse
	s.data(t, http.MethodPatch, "/api/users/"+member.ID, memberTok, dto.UpdateUserRequest{FullName: ptr("Bob B.")}, fiber.StatusOK, &renamed)
	assert.Equal(t, "Bob B.", renamed.FullName)
	assert.Equal(t, entity.RoleMember, renamed.Role)
}

func TestUsuarios_EmailDuplicadoEs409(t *testing.T) {
	s := newTestServer(t)
	adminTok, _ := s.registerTenant(t, "Acme", "acme", "admin@acme.io")
	s.addMember(t, adminTok, "acme", "bob@acme.io")

	e := s.failure(t, http.MethodPost, "/api/users", adminTok, dto.CreateUserRequest{
		FullName: "Bob 2", Email: "BOB@acme.io", Password: "supersecret",
	}, fiber.StatusConflict)
	assert.Equal(t, domain.CodeEmailExists, e.Code)
	assert.Equal(t, string(domain.KindValidation), e.Kind)
}

func TestProyectos_SoloCreadorOAdminBorra(t *testing.T) {
	s := newTestServer(t)
	adminTok, _ := s.registerTenant(t, "Acme", "acme", "admin@acme.io")
	bobTok, _ := s.addMember(t, adminTok, "acme", "bob@acme.io")
	carolTok, _ := s.addMember(t, adminTok, "acme", "carol@acme.io")

	var p dto.ProjectResponse
	s.data(t, http.MethodPost, "/api/projects", bobTok, dto.CreateProjectRequest{Name: "De Bob"}, fiber.StatusCreated, &p)
	var task dto.TaskResponse
	s.data(t, http.MethodPost, "/api/tasks", carolTok, dto.CreateTaskRequest{ProjectID: p.ID, Title: "de carol"}, fiber.StatusCreated, &task)

	// carol creó la tarea pero el permiso de borrado se hereda del proyecto
	s.failure(t, http.MethodDelete, "/api/tasks/"+task.ID, carolTok, nil, fiber.StatusForbidden)
	s.failure(t, http.MethodDelete, "/api/projects/"+p.ID, carolTok, nil, fiber.StatusForbidden)

	s.data(t, http.MethodDelete, "/api/tasks/"+task.ID, bobTok, nil, fiber.StatusOK, nil)
	s.data(t, http.MethodDelete, "/api/projects/"+p.ID, adminTok, nil, fiber.StatusOK, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_SinTokenEs401(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/projects", "/api/tasks", "/api/users", "/api/dashboard", "/api/auth/me"} {
		e := s.failure(t, http.MethodGet, path, "", nil, fiber.StatusUnauthorized)
		assert.Equal(t, string(domain.KindUnauthenticated), e.Kind, path)
	}
	e := s.failure(t, http.MethodGet, "/api/projects", "no-es-un-jwt", nil, fiber.StatusUnauthorized)
	assert.Equal(t, domain.CodeInvalidToken, e.Code)
}

func TestAuth_LogoutRevocaElToken(t *testing.T) {
	s := newTestServer(t)
	tok, _ := s.registerTenant(t, "Acme", "acme", "admin@acme.io")

	s.data(t, http.MethodGet, "/api/auth/me", tok, nil, fiber.StatusOK, nil)
	s.data(t, http.MethodPost, "/api/auth/logout", tok, nil, fiber.StatusOK, nil)

	e := s.failure(t, http.MethodGet, "/api/auth/me", tok, nil, fiber.StatusUnauthorized)
	assert.Equal(t, domain.CodeSessionExpired, e.Code)
}

func TestAuth_CredencialesInvalidas(t *testing.T) {
	s := newTestServer(t)
	s.registerTenant(t, "Acme", "acme", "admin@acme.io")

	e := s.failure(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		TenantSubdomain: "acme", Email: "admin@acme.io", Password: "incorrecta",
	}, fiber.StatusUnauthorized)
	assert.Equal(t, domain.CodeInvalidCredentials, e.Code)

	s.failure(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@acme.io"}, fiber.StatusBadRequest)
}

func TestAuth_SubdominioOcupadoEs409(t *testing.T) {
	s := newTestServer(t)
	s.registerTenant(t, "Acme", "acme", "admin@acme.io")

	e := s.failure(t, http.MethodPost, "/api/auth/register-tenant", "", dto.RegisterTenantRequest{
		TenantName: "Otra", Subdomain: "acme", AdminFullName: "X",
		AdminEmail: "x@otra.io", AdminPassword: "supersecret",
	}, fiber.StatusConflict)
	assert.Equal(t, domain.CodeSubdomainTaken, e.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación, dashboard, reporte
// ──────────────────────────────────────────────────────────────────────────────

func TestValidacion_EntradasInvalidasSon400(t *testing.T) {
	s := newTestServer(t)
	tok, _ := s.registerTenant(t, "Acme", "acme", "admin@acme.io")

	e := s.failure(t, http.MethodPost, "/api/projects", tok, dto.CreateProjectRequest{Name: "  "}, fiber.StatusBadRequest)
	assert.Equal(t, string(domain.KindValidation), e.Kind)

	var p dto.ProjectResponse
	s.data(t, http.MethodPost, "/api/projects", tok, dto.CreateProjectRequest{Name: "P"}, fiber.StatusCreated, &p)
	s.failure(t, http.MethodPatch, "/api/projects/"+p.ID, tok, dto.UpdateProjectRequest{Status: ptr("deleted")}, fiber.StatusBadRequest)
	s.failure(t, http.MethodPost, "/api/tasks", tok, dto.CreateTaskRequest{ProjectID: p.ID, Title: "t", Status: "blocked"}, fiber.StatusBadRequest)
	s.failure(t, http.MethodGet, "/api/projects?status=deleted", tok, nil, fiber.StatusBadRequest)

	status, raw := s.do(t, http.MethodPost, "/api/projects", tok, []byte(`{"name":`))
	assert.Equal(t, fiber.StatusBadRequest, status, string(raw))
}

func TestDashboard_ResumenYProyectosRecientes(t *testing.T) {
	s := newTestServer(t)
	tok, _ := s.registerTenant(t, "Acme", "acme", "admin@acme.io")

	ids := make([]string, 0, 4)
	for _, name := range []string{"A", "B", "C", "D"} {
		var p dto.ProjectResponse
		s.data(t, http.MethodPost, "/api/projects", tok, dto.CreateProjectRequest{Name: name}, fiber.StatusCreated, &p)
		ids = append(ids, p.ID)
	}
	var task dto.TaskResponse
	s.data(t, http.MethodPost, "/api/tasks", tok, dto.CreateTaskRequest{ProjectID: ids[0], Title: "t1", Status: entity.TaskStatusDone}, fiber.StatusCreated, &task)
	s.data(t, http.MethodPost, "/api/tasks", tok, dto.CreateTaskRequest{ProjectID: ids[0], Title: "t2"}, fiber.StatusCreated, &task)
	s.data(t, http.MethodPatch, "/api/projects/"+ids[3], tok, dto.UpdateProjectRequest{Status: ptr(entity.ProjectStatusArchived)}, fiber.StatusOK, nil)

	var out dto.DashboardResponse
	s.data(t, http.MethodGet, "/api/dashboard", tok, nil, fiber.StatusOK, &out)
	assert.Equal(t, 3, out.Stats.ActiveProjectCount)
	assert.Equal(t, 1, out.Stats.CompletedTaskCount)
	assert.Equal(t, 1, out.Stats.PendingTaskCount)
	assert.Len(t, out.Stats.Projects, 4)
	require.Len(t, out.RecentProjects, 3)
	assert.Equal(t, ids[3], out.RecentProjects[0].ID, "el último actualizado va primero")
}

func TestReporte_DevuelvePDF(t *testing.T) {
	s := newTestServer(t)
	tok, _ := s.registerTenant(t, "Acme", "acme", "admin@acme.io")
	var p dto.ProjectResponse
	s.data(t, http.MethodPost, "/api/projects", tok, dto.CreateProjectRequest{Name: "Launch"}, fiber.StatusCreated, &p)

	status, body := s.do(t, http.MethodGet, "/api/projects/"+p.ID+"/report", tok, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))

	s.failure(t, http.MethodGet, "/api/projects/no-existe/report", tok, nil, fiber.StatusNotFound)
}

func TestInfra_HealthYMetricas(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"status":"ok"`)

	s.failure(t, http.MethodGet, "/api/projects", "", nil, fiber.StatusUnauthorized)

	status, body = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "taskflow_test_http_requests_total")
	assert.Contains(t, string(body), `taskflow_test_auth_failures_total{kind="unauthenticated"}`)
}

func TestInfra_RutaInexistenteUsaSobreDeError(t *testing.T) {
	s := newTestServer(t)
	e := s.failure(t, http.MethodGet, "/no-existe", "", nil, fiber.StatusNotFound)
	assert.Equal(t, string(domain.KindNotFound), e.Kind)
}
