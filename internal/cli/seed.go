package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pumpkinbots/partbot/internal/application/auth"
	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/infrastructure/store"
	"github.com/pumpkinbots/partbot/internal/infrastructure/tables"
	"github.com/pumpkinbots/partbot/pkg/config"
)

// SeedFile formato del archivo YAML de usuarios.
//
//	users:
//	  - username: coach
//	    password: cambiar-esto
//	    role: mentor
type SeedFile struct {
	Users []dto.RegisterRequest `yaml:"users"`
}

// SeedResult resumen del alta de usuarios.
type SeedResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// NewSeedCommand construye el comando seed.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <users.yaml>",
		Short: "Crear cuentas a partir de un archivo YAML",
		Long: `Crea las cuentas listadas en el archivo YAML en el almacén configurado
(STORE_DRIVER). Las cuentas que ya existen se omiten.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), rootOpts, args[0], cmd)
		},
	}
}

func runSeed(ctx context.Context, opts *RootOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()

	s, closer, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	if err := tables.Provision(ctx, s); err != nil {
		return err
	}
	formatter.VerboseLog("almacén %s listo", cfg.Store.Driver)

	log := zerolog.Nop()
	if opts.Verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: formatter.ErrWriter})
	}
	uc := auth.NewAuthUseCase(tables.NewUserRepository(s), auth.JWTConfig{})
	res, err := SeedUsers(ctx, uc, f, log)
	if err != nil {
		return err
	}
	return formatter.Print(res, func(w io.Writer) {
		fmt.Fprintf(w, "creados: %d, omitidos: %d\n", len(res.Created), len(res.Skipped))
		for _, u := range res.Created {
			fmt.Fprintf(w, "  + %s\n", u)
		}
		for _, u := range res.Skipped {
			fmt.Fprintf(w, "  = %s (ya existe)\n", u)
		}
	})
}

// SeedUsers lee el YAML de r y registra cada cuenta. Un username repetido se omite;
// cualquier otro error detiene el proceso.
func SeedUsers(ctx context.Context, uc *auth.AuthUseCase, r io.Reader, log zerolog.Logger) (*SeedResult, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("leer YAML: %w", err)
	}
	res := &SeedResult{Created: []string{}, Skipped: []string{}}
	for i, in := range file.Users {
		user, err := uc.RegisterUser(ctx, in)
		if errors.Is(err, domain.ErrConflict) {
			log.Debug().Str("username", in.Username).Msg("user exists, skipped")
			res.Skipped = append(res.Skipped, in.Username)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("usuario #%d (%s): %w", i+1, in.Username, err)
		}
		res.Created = append(res.Created, user.Username)
	}
	return res, nil
}
