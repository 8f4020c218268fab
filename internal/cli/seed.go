package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/domain/entity"
	"github.com/jhoicas/taskflow-api/pkg/config"
)

// Fixture archivo YAML de datos de ejemplo.
type Fixture struct {
	Tenants []TenantFixture `yaml:"tenants"`
}

// TenantFixture organización con su administrador, miembros y proyectos.
type TenantFixture struct {
	Name      string           `yaml:"name"`
	Subdomain string           `yaml:"subdomain"`
	Admin     UserFixture      `yaml:"admin"`
	Members   []UserFixture    `yaml:"members,omitempty"`
	Projects  []ProjectFixture `yaml:"projects,omitempty"`
}

// UserFixture usuario del tenant.
type UserFixture struct {
	FullName string `yaml:"fullName"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role,omitempty"`
}

// ProjectFixture proyecto con sus tareas. Owner es el email del creador;
// vacío = el administrador.
type ProjectFixture struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Status      string        `yaml:"status,omitempty"`
	Owner       string        `yaml:"owner,omitempty"`
	Tasks       []TaskFixture `yaml:"tasks,omitempty"`
}

// TaskFixture tarea de un proyecto.
type TaskFixture struct {
	Title  string `yaml:"title"`
	Status string `yaml:"status,omitempty"`
}

// SeedSummary conteo de lo creado.
type SeedSummary struct {
	Tenants  int
	Users    int
	Projects int
	Tasks    int
}

func (s SeedSummary) String() string {
	return fmt.Sprintf("tenants: %d\nusers: %d\nprojects: %d\ntasks: %d\n", s.Tenants, s.Users, s.Projects, s.Tasks)
}

// ParseFixture decodifica el YAML rechazando campos desconocidos y owners
// que no son usuarios del tenant.
func ParseFixture(raw []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	if len(f.Tenants) == 0 {
		return nil, fmt.Errorf("fixture: sin tenants")
	}
	for _, t := range f.Tenants {
		emails := map[string]bool{strings.ToLower(t.Admin.Email): true}
		for _, m := range t.Members {
			emails[strings.ToLower(m.Email)] = true
		}
		for _, p := range t.Projects {
			if p.Owner != "" && !emails[strings.ToLower(p.Owner)] {
				return nil, fmt.Errorf("fixture: tenant %s: owner %q del proyecto %q no es usuario del tenant", t.Subdomain, p.Owner, p.Name)
			}
		}
	}
	return &f, nil
}

// NewSeedCommand carga un fixture YAML a través de los casos de uso, con las
// mismas validaciones y reglas de autorización que la API.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Cargar datos de ejemplo desde un fixture YAML",
		Long: `Carga tenants, usuarios, proyectos y tareas desde un fixture YAML.

Con --dry-run el fixture se aplica sobre un almacenamiento en memoria
descartable: sirve para validarlo sin tocar la base de datos.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], dryRun, cmd)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "aplicar sobre memoria y descartar")
	return cmd
}

func runSeed(rootOpts *RootOptions, path string, dryRun bool, cmd *cobra.Command) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("leer fixture: %w", err)
	}
	fixture, err := ParseFixture(raw)
	if err != nil {
		return err
	}

	e, err := rootOpts.env(cmd)
	if err != nil {
		return err
	}
	if dryRun {
		e.cfg.Storage.Driver = config.StorageMemory
	}
	b, err := rootOpts.deps.Open(cmd.Context(), e.cfg, false, e.log)
	if err != nil {
		return err
	}
	defer b.Close()

	summary, err := seed(cmd.Context(), newUseCases(e, b), fixture)
	if err != nil {
		return err
	}
	e.log.Info().
		Int("tenants", summary.Tenants).
		Int("users", summary.Users).
		Int("projects", summary.Projects).
		Int("tasks", summary.Tasks).
		Bool("dry_run", dryRun).
		Msg("fixture cargado")
	fmt.Fprint(cmd.OutOrStdout(), summary.String())
	return nil
}

func seed(ctx context.Context, uc useCases, f *Fixture) (SeedSummary, error) {
	var sum SeedSummary
	for _, t := range f.Tenants {
		reg, err := uc.auth.RegisterTenant(ctx, dto.RegisterTenantRequest{
			TenantName:    t.Name,
			Subdomain:     t.Subdomain,
			AdminFullName: t.Admin.FullName,
			AdminEmail:    t.Admin.Email,
			AdminPassword: t.Admin.Password,
		})
		if err != nil {
			return sum, fmt.Errorf("tenant %s: %w", t.Subdomain, err)
		}
		sum.Tenants++
		sum.Users++

		admin := entity.Actor{UserID: reg.Admin.ID, TenantID: reg.Tenant.ID, Role: reg.Admin.Role}
		actors := map[string]entity.Actor{strings.ToLower(t.Admin.Email): admin}

		for _, m := range t.Members {
			u, err := uc.users.Create(ctx, admin, dto.CreateUserRequest{
				FullName: m.FullName, Email: m.Email, Password: m.Password, Role: m.Role,
			})
			if err != nil {
				return sum, fmt.Errorf("tenant %s: usuario %s: %w", t.Subdomain, m.Email, err)
			}
			actors[strings.ToLower(m.Email)] = entity.Actor{UserID: u.ID, TenantID: u.TenantID, Role: u.Role}
			sum.Users++
		}

		for _, p := range t.Projects {
			owner := admin
			if p.Owner != "" {
				owner = actors[strings.ToLower(p.Owner)]
			}
			project, err := uc.projects.Create(ctx, owner, dto.CreateProjectRequest{
				Name: p.Name, Description: p.Description, Status: p.Status,
			})
			if err != nil {
				return sum, fmt.Errorf("tenant %s: proyecto %q: %w", t.Subdomain, p.Name, err)
			}
			sum.Projects++

			for _, task := range p.Tasks {
				if _, err := uc.tasks.Create(ctx, owner, dto.CreateTaskRequest{
					ProjectID: project.ID, Title: task.Title, Status: task.Status,
				}); err != nil {
					return sum, fmt.Errorf("tenant %s: tarea %q: %w", t.Subdomain, task.Title, err)
				}
				sum.Tasks++
			}
		}
	}
	return sum, nil
}
