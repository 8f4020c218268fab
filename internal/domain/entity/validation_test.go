package entity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@acme.io", entity.NormalizeEmail("  Ana@ACME.io "))
}

func TestValidateTenant_Subdominio(t *testing.T) {
	cases := []struct {
		sub string
		ok  bool
	}{
		{"acme", true},
		{"acme-corp", true},
		{"a1b", true},
		{"ab", false},
		{"-acme", false},
		{"acme-", false},
		{"acme_corp", false},
		{"ACME", false},
		{"acme.corp", false},
		{strings.Repeat("a", 64), false},
	}
	for _, tc := range cases {
		err := entity.ValidateTenant(&entity.Tenant{Name: "Acme", Subdomain: tc.sub})
		if tc.ok {
			assert.NoError(t, err, tc.sub)
		} else {
			assert.ErrorIs(t, err, domain.ErrValidation, tc.sub)
		}
	}
	assert.Equal(t, "acme", entity.NormalizeSubdomain(" ACME "))
}

func TestValidateProject(t *testing.T) {
	p := &entity.Project{Name: "Launch", Status: entity.ProjectStatusActive}
	assert.NoError(t, entity.ValidateProject(p))

	p.Name = "   "
	assert.ErrorIs(t, entity.ValidateProject(p), domain.ErrValidation)

	p.Name = "Launch"
	p.Status = "deleted"
	assert.ErrorIs(t, entity.ValidateProject(p), domain.ErrValidation)
}

func TestValidateTask(t *testing.T) {
	task := &entity.Task{Title: "Write copy", Status: entity.TaskStatusTodo}
	assert.NoError(t, entity.ValidateTask(task))

	task.Title = ""
	err := entity.ValidateTask(task)
	assert.ErrorIs(t, err, domain.ErrValidation)

	task.Title = "ok"
	task.Status = "blocked"
	assert.ErrorIs(t, entity.ValidateTask(task), domain.ErrValidation)
}

func TestValidateUser(t *testing.T) {
	u := &entity.User{TenantID: "t1", FullName: "Ana", Email: "ana@acme.io", Role: entity.RoleMember}
	assert.NoError(t, entity.ValidateUser(u))

	bad := *u
	bad.Email = "no-es-email"
	assert.ErrorIs(t, entity.ValidateUser(&bad), domain.ErrValidation)

	bad = *u
	bad.Role = "owner"
	assert.ErrorIs(t, entity.ValidateUser(&bad), domain.ErrValidation)

	assert.ErrorIs(t, entity.ValidatePassword("corta"), domain.ErrValidation)
	assert.NoError(t, entity.ValidatePassword("suficiente"))
}

func TestValidateTaskInProject(t *testing.T) {
	p := &entity.Project{ID: "p1", TenantID: "t1"}
	assert.NoError(t, entity.ValidateTaskInProject(&entity.Task{ProjectID: "p1", TenantID: "t1"}, p))
	assert.ErrorIs(t, entity.ValidateTaskInProject(&entity.Task{ProjectID: "p1", TenantID: "t2"}, p), domain.ErrValidation)
}
