package entity

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/taskflow-api/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Límites de longitud de campos de texto.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 2000
	MaxTitleLength       = 500
	MinPasswordLength    = 8
)

var subdomainRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,61}[a-z0-9])$`)

var lower = cases.Lower(language.Und)

// NormalizeEmail recorta, normaliza a NFC y pasa a minúsculas.
func NormalizeEmail(email string) string {
	return lower.String(norm.NFC.String(strings.TrimSpace(email)))
}

// NormalizeSubdomain aplica la misma normalización que NormalizeEmail.
func NormalizeSubdomain(s string) string {
	return lower.String(norm.NFC.String(strings.TrimSpace(s)))
}

// ValidateTenant verifica nombre y subdominio (ya normalizado).
func ValidateTenant(t *Tenant) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return domain.Validation("VALIDATION", "el nombre de la organización es requerido")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return domain.Validation("VALIDATION", "el nombre de la organización es demasiado largo")
	}
	if !subdomainRe.MatchString(t.Subdomain) {
		return domain.Validation("INVALID_SUBDOMAIN", "subdominio inválido: 3-63 caracteres, minúsculas, dígitos y guiones")
	}
	return nil
}

// ValidateUser verifica los campos de un usuario antes de persistir.
func ValidateUser(u *User) error {
	if u.TenantID == "" {
		return domain.Validation("VALIDATION", "tenant_id es requerido")
	}
	if strings.TrimSpace(u.FullName) == "" {
		return domain.Validation("VALIDATION", "el nombre completo es requerido")
	}
	if utf8.RuneCountInString(u.FullName) > MaxNameLength {
		return domain.Validation("VALIDATION", "el nombre completo es demasiado largo")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil || strings.ContainsAny(u.Email, " <>") {
		return domain.Validation("INVALID_EMAIL", "email inválido")
	}
	if !ValidRole(u.Role) {
		return domain.Validation("INVALID_ROLE", "rol inválido: member o tenant_admin")
	}
	return nil
}

// ValidatePassword verifica la longitud mínima de la contraseña en texto plano.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return domain.Validation("WEAK_PASSWORD", "la contraseña debe tener al menos 8 caracteres")
	}
	return nil
}

// ValidateProject verifica nombre, descripción y estado.
func ValidateProject(p *Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.Validation("VALIDATION", "el nombre del proyecto es requerido")
	}
	if utf8.RuneCountInString(p.Name) > MaxNameLength {
		return domain.Validation("VALIDATION", "el nombre del proyecto es demasiado largo")
	}
	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		return domain.Validation("VALIDATION", "la descripción es demasiado larga")
	}
	if !ValidProjectStatus(p.Status) {
		return domain.Validation("INVALID_STATUS", "estado de proyecto inválido: active o archived")
	}
	return nil
}

// ValidateTask verifica título y estado.
func ValidateTask(t *Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return domain.Validation("VALIDATION", "el título de la tarea es requerido")
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return domain.Validation("VALIDATION", "el título de la tarea es demasiado largo")
	}
	if !ValidTaskStatus(t.Status) {
		return domain.Validation("INVALID_STATUS", "estado de tarea inválido: todo, in_progress o done")
	}
	return nil
}

// ValidateTaskInProject verifica que la tarea y su proyecto compartan tenant.
func ValidateTaskInProject(t *Task, p *Project) error {
	if t.ProjectID != p.ID || t.TenantID != p.TenantID {
		return domain.Validation("TENANT_MISMATCH", "la tarea no pertenece al tenant del proyecto")
	}
	return nil
}
