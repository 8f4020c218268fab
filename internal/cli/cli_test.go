package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
	"github.com/jhoicas/taskflow-api/internal/domain"
	"github.com/jhoicas/taskflow-api/internal/infrastructure/storage"
	"github.com/jhoicas/taskflow-api/pkg/config"
	"github.com/jhoicas/taskflow-api/pkg/logger"
)

// memoryDeps devuelve opciones que comparten un único backend en memoria
// entre todas las ejecuciones del test.
func memoryDeps(t *testing.T) Options {
	t.Helper()
	cfg := func() *config.Config {
		return &config.Config{
			JWT:     config.JWTConfig{Secret: "cli-test", Expiration: 60, Issuer: "taskflow-test"},
			Storage: config.StorageConfig{Driver: config.StorageMemory},
		}
	}
	shared, err := storage.Open(context.Background(), cfg(), false, nil)
	require.NoError(t, err)
	t.Cleanup(shared.Close)

	return Options{
		LoadConfig: func() (*config.Config, error) { return cfg(), nil },
		Open: func(_ context.Context, c *config.Config, _ bool, _ *logger.Logger) (*storage.Backend, error) {
			if c.Storage.Driver != config.StorageMemory {
				t.Fatalf("driver inesperado %q", c.Storage.Driver)
			}
			return shared, nil
		},
	}
}

func execute(t *testing.T, deps Options, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(deps)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Subcomandos(t *testing.T) {
	cmd := NewRootCommand(Options{})
	assert.Equal(t, "taskctl", cmd.Use)
	for _, name := range []string{"migrate", "seed", "token"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	storageFlag := cmd.PersistentFlags().Lookup("storage")
	require.NotNil(t, storageFlag)
	assert.Equal(t, "", storageFlag.DefValue)
}

func TestSeed_Golden(t *testing.T) {
	out, err := execute(t, memoryDeps(t), "seed", "testdata/acme.yaml")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "seed_acme", []byte(out))
}

func TestSeed_DosVecesChocaConElSubdominio(t *testing.T) {
	deps := memoryDeps(t)
	_, err := execute(t, deps, "seed", "testdata/acme.yaml")
	require.NoError(t, err)

	_, err = execute(t, deps, "seed", "testdata/acme.yaml")
	require.Error(t, err)
	assert.Equal(t, domain.CodeSubdomainTaken, domain.CodeOf(err))
}

func TestSeed_ArchivoInexistente(t *testing.T) {
	_, err := execute(t, memoryDeps(t), "seed", "testdata/no-existe.yaml")
	assert.ErrorContains(t, err, "leer fixture")
}

func TestToken_TrasSeed(t *testing.T) {
	deps := memoryDeps(t)
	_, err := execute(t, deps, "seed", "testdata/acme.yaml")
	require.NoError(t, err)

	out, err := execute(t, deps, "token", "--tenant", "acme", "--email", "u2@acme.io", "--password", "supersecret", "--json")
	require.NoError(t, err)

	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal([]byte(out), &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "u2@acme.io", login.User.Email)
	assert.Equal(t, "member", login.User.Role)
}

func TestToken_PasswordDesdeEntorno(t *testing.T) {
	deps := memoryDeps(t)
	_, err := execute(t, deps, "seed", "testdata/acme.yaml")
	require.NoError(t, err)

	t.Setenv("TASKCTL_PASSWORD", "supersecret")
	out, err := execute(t, deps, "token", "--tenant", "globex", "--email", "hank@globex.io")
	require.NoError(t, err)
	assert.NotEmpty(t, bytes.TrimSpace([]byte(out)))
}

func TestToken_CredencialesInvalidas(t *testing.T) {
	deps := memoryDeps(t)
	_, err := execute(t, deps, "seed", "testdata/acme.yaml")
	require.NoError(t, err)

	_, err = execute(t, deps, "token", "--tenant", "acme", "--email", "u1@acme.io", "--password", "incorrecta")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestToken_EmailObligatorio(t *testing.T) {
	_, err := execute(t, memoryDeps(t), "token", "--tenant", "acme")
	assert.ErrorContains(t, err, "email")
}

func TestMigrate_RequierePostgres(t *testing.T) {
	_, err := execute(t, memoryDeps(t), "migrate")
	assert.ErrorContains(t, err, "postgres")
}

func TestMigrate_Lista(t *testing.T) {
	out, err := execute(t, Options{}, "migrate", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "0001_init.up.sql")
}

func TestStorageFlag_Invalido(t *testing.T) {
	_, err := execute(t, memoryDeps(t), "--storage", "sqlite", "seed", "testdata/acme.yaml")
	assert.ErrorContains(t, err, "sqlite")
}

func TestParseFixture(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"sin tenants", "tenants: []\n", "sin tenants"},
		{"campo desconocido", "tenants:\n  - name: A\n    color: rojo\n", "color"},
		{"owner ajeno", "tenants:\n  - name: A\n    subdomain: a\n    admin: {email: a@a.io}\n    projects:\n      - name: P\n        owner: x@b.io\n", "x@b.io"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixture([]byte(tt.raw))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	f, err := ParseFixture([]byte("tenants:\n  - name: A\n    subdomain: a\n    admin: {email: A@a.io}\n    projects:\n      - name: P\n        owner: a@A.io\n"))
	require.NoError(t, err)
	assert.Len(t, f.Tenants, 1)
}
