package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pumpkinbots/partbot/internal/application/auth"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/pkg/config"
)

// TokenOptions flags del comando token.
type TokenOptions struct {
	Subject string
	Role    string
	Minutes int
}

// NewTokenCommand construye el comando token: emite un JWT de servicio (p. ej. para el bot).
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{}
	cmd := &cobra.Command{
		Use:           "token",
		Short:         "Emitir un token JWT de servicio",
		Long:          "Firma un token con JWT_SECRET para clientes sin contraseña, como el bot de chat.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			uc := auth.NewAuthUseCase(nil, auth.JWTConfig{
				Secret:     cfg.JWT.Secret,
				ExpMinutes: cfg.JWT.Expiration,
				Issuer:     cfg.JWT.Issuer,
			})
			tok, err := uc.IssueToken(opts.Subject, opts.Role, opts.Minutes)
			if err != nil {
				return err
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Print(map[string]string{"token": tok, "subject": opts.Subject, "role": opts.Role}, func(w io.Writer) {
				fmt.Fprintln(w, tok)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Subject, "subject", "discord-bot", "subject (username) del token")
	cmd.Flags().StringVar(&opts.Role, "role", entity.RoleBot, "rol: bot, mentor o student")
	cmd.Flags().IntVar(&opts.Minutes, "minutes", 0, "vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
	return cmd
}
