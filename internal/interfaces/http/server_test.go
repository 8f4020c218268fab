package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taskflow-api/internal/application/analytics"
	"github.com/jhoicas/taskflow-api/internal/application/auth"
	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/application/usecase"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/memory"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/pdf"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/session"
	apphttp "github.com/jhoicas/taskflow-api/internal/interfaces/http"
)

// testServer app Fiber completa sobre el store en memoria.
type testServer struct {
	app     *fiber.App
	store   *memory.Store
	metrics *apphttp.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	metrics := apphttp.NewMetrics("taskflow_test")

	authUC := auth.NewAuthUseCase(repos, store, session.NewMemoryStore(),
		auth.JWTConfig{Secret: "http-test-secret", ExpMinutes: 60, Issuer: "taskflow-test"}, nil)

	app := apphttp.NewApp(apphttp.AppConfig{Name: "taskflow-test"}, apphttp.RouterDeps{
		AuthUC:      authUC,
		ProjectUC:   usecase.NewProjectUseCase(repos, store, nil),
		TaskUC:      usecase.NewTaskUseCase(repos, store, nil),
		UserUC:      usecase.NewUserUseCase(repos, store, nil),
		DashboardUC: analytics.NewDashboardUseCase(repos),
		ReportUC:    analytics.NewReportUseCase(repos, pdf.NewMarotoReportGenerator("")),
		Metrics:     metrics,
	})
	return &testServer{app: app, store: store, metrics: metrics}
}

// envelope sobre de respuesta con data diferido.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do lanza la petición y devuelve el código y el cuerpo.
func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// data decodifica el campo data de una respuesta exitosa en out.
func (s *testServer) data(t *testing.T, method, path, token string, body any, wantStatus int, out any) {
	t.Helper()
	status, raw := s.do(t, method, path, token, body)
	require.Equal(t, wantStatus, status, "respuesta: %s", raw)
	if out == nil {
		return
	}
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// failure decodifica un sobre de error.
func (s *testServer) failure(t *testing.T, method, path, token string, body any, wantStatus int) dto.ErrorResponse {
	t.Helper()
	status, raw := s.do(t, method, path, token, body)
	require.Equal(t, wantStatus, status, "respuesta: %s", raw)
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// registerTenant alta de organización y login de su admin; devuelve el token.
func (s *testServer) registerTenant(t *testing.T, name, subdomain, email string) (string, dto.RegisterTenantResponse) {
	t.Helper()
	var reg dto.RegisterTenantResponse
	s.data(t, http.MethodPost, "/api/auth/register-tenant", "", dto.RegisterTenantRequest{
		TenantName:    name,
		Subdomain:     subdomain,
		AdminFullName: "Admin " + name,
		AdminEmail:    email,
		AdminPassword: "supersecret",
	}, fiber.StatusCreated, &reg)
	return s.login(t, subdomain, email, "supersecret"), reg
}

func (s *testServer) login(t *testing.T, subdomain, email, password string) string {
	t.Helper()
	var out dto.LoginResponse
	s.data(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		TenantSubdomain: subdomain, Email: email, Password: password,
	}, fiber.StatusOK, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

// addMember crea un miembro con el token de admin y devuelve su token.
func (s *testServer) addMember(t *testing.T, adminToken, subdomain, email string) (string, dto.UserResponse) {
	t.Helper()
	var u dto.UserResponse
	s.data(t, http.MethodPost, "/api/users", adminToken, dto.CreateUserRequest{
		FullName: "Miembro " + email, Email: email, Password: "supersecret",
	}, fiber.StatusCreated, &u)
	return s.login(t, subdomain, email, "supersecret"), u
}

func ptr[T any](v T) *T { return &v }
