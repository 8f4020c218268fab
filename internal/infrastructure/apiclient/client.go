// Package apiclient es el cliente HTTP tipado de la API de taskflow. Traduce
// el sobre de error {kind, code, message} de vuelta a domain.Error para que el
// controlador optimista decida rollback, reintento o expiración de sesión.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/stats"
)

// maxBody límite de lectura de una respuesta JSON.
const maxBody = 4 << 20

// Client cliente de la API. Es seguro para uso concurrente.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option configura el cliente.
type Option func(*Client)

// WithHTTPClient reemplaza el *http.Client (tests, transportes propios).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken fija el token Bearer inicial.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New construye el cliente. baseURL apunta al prefijo /api
// (ej. "http://localhost:8080/api"). timeout acota cada petición.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken reemplaza el token Bearer (tras login o logout).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token devuelve el token actual.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ── Auth ──────────────────────────────────────────────────────────────────────

// Login autentica y guarda el token devuelto.
func (c *Client) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// RegisterTenant da de alta una organización con su administrador.
func (c *Client) RegisterTenant(ctx context.Context, in dto.RegisterTenantRequest) (*dto.RegisterTenantResponse, error) {
	var out dto.RegisterTenantResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register-tenant", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revoca la sesión en el servidor y olvida el token local.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

// Me devuelve el usuario autenticado.
func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Projects ──────────────────────────────────────────────────────────────────

func (c *Client) CreateProject(ctx context.Context, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	var out dto.ProjectResponse
	if err := c.do(ctx, http.MethodPost, "/projects", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects lista proyectos; status vacío no filtra.
func (c *Client) ListProjects(ctx context.Context, status string, page dto.PageRequest) ([]dto.ProjectResponse, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if page.Limit > 0 {
		q.Set("limit", strconv.Itoa(page.Limit))
	}
	if page.Offset > 0 {
		q.Set("offset", strconv.Itoa(page.Offset))
	}
	var out []dto.ProjectResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/projects", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	var out dto.ProjectResponse
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, in dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	var out dto.ProjectResponse
	if err := c.do(ctx, http.MethodPatch, "/projects/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ProjectStats(ctx context.Context, id string) (*stats.ProjectStats, error) {
	var out stats.ProjectStats
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id)+"/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Tasks ─────────────────────────────────────────────────────────────────────

func (c *Client) CreateTask(ctx context.Context, in dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	var out dto.TaskResponse
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTasks lista tareas; projectID vacío devuelve todas las del tenant.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]dto.TaskResponse, error) {
	q := url.Values{}
	if projectID != "" {
		q.Set("projectId", projectID)
	}
	var out []dto.TaskResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/tasks", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*dto.TaskResponse, error) {
	var out dto.TaskResponse
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id, status string) (*dto.TaskResponse, error) {
	var out dto.TaskResponse
	in := dto.UpdateTaskStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (c *Client) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodPost, "/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, page dto.PageRequest) ([]dto.UserResponse, error) {
	q := url.Values{}
	if page.Limit > 0 {
		q.Set("limit", strconv.Itoa(page.Limit))
	}
	if page.Offset > 0 {
		q.Set("offset", strconv.Itoa(page.Offset))
	}
	var out []dto.UserResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/users", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

func (c *Client) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var out dto.DashboardResponse
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do envía la petición y decodifica data en out (si out != nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("apiclient: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("apiclient: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return domain.Transient("READ_FAILED", "respuesta incompleta del servidor", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("apiclient: deserializar respuesta: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("apiclient: deserializar data: %w", err)
	}
	return nil
}

// transportError clasifica un fallo de red: timeout o red caída son
// Transient; una cancelación explícita del llamador se devuelve tal cual.
func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.Transient(domain.CodeTimeout, "el servidor no respondió a tiempo", err)
	}
	return domain.Transient("NETWORK", "no se pudo contactar al servidor", err)
}

// decodeError traduce una respuesta no-2xx a domain.Error. Los 5xx son
// siempre Transient (reintentables por el usuario).
func decodeError(status int, raw []byte) error {
	var e dto.ErrorResponse
	_ = json.Unmarshal(raw, &e)

	kind := domain.Kind(e.Kind)
	if e.Kind == "" {
		kind = kindForStatus(status)
	}
	if status >= 500 {
		kind = domain.KindTransient
	}
	code := e.Code
	if code == "" {
		code = "HTTP_" + strconv.Itoa(status)
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &domain.Error{Kind: kind, Code: code, Message: msg}
}

func kindForStatus(status int) domain.Kind {
	switch status {
	case http.StatusUnauthorized:
		return domain.KindUnauthenticated
	case http.StatusForbidden:
		return domain.KindForbidden
	case http.StatusNotFound:
		return domain.KindNotFound
	case http.StatusConflict:
		return domain.KindConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.KindValidation
	}
	return domain.KindInternal
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
