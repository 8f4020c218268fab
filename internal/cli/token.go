package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/taskflow-api/internal/application/dto"
)

// TokenOptions flags de token.
type TokenOptions struct {
	Tenant   string
	Email    string
	Password string
	JSON     bool
}

// NewTokenCommand inicia sesión con las credenciales dadas e imprime el token.
// La contraseña puede venir de TASKCTL_PASSWORD para no dejarla en el historial.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emitir un token de acceso",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "subdominio del tenant")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email del usuario")
	cmd.Flags().StringVar(&opts.Password, "password", "", "contraseña (o TASKCTL_PASSWORD)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "salida JSON con token, expiración y usuario")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runToken(rootOpts *RootOptions, opts *TokenOptions, cmd *cobra.Command) error {
	password := opts.Password
	if password == "" {
		password = os.Getenv("TASKCTL_PASSWORD")
	}

	e, err := rootOpts.env(cmd)
	if err != nil {
		return err
	}
	b, err := rootOpts.deps.Open(cmd.Context(), e.cfg, false, e.log)
	if err != nil {
		return err
	}
	defer b.Close()

	out, err := newUseCases(e, b).auth.Login(cmd.Context(), dto.LoginRequest{
		TenantSubdomain: opts.Tenant,
		Email:           opts.Email,
		Password:        password,
	})
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Token)
	return nil
}
