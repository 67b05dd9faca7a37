// Package cli implementa partbotctl: tareas de administración fuera del servidor HTTP
// (alta de usuarios, tokens de servicio y consulta de estado contra el intake).
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions flags globales de todos los comandos.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats formatos de salida permitidos.
var ValidFormats = []string{"text", "json"}

// NewRootCommand construye el comando raíz de partbotctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "partbotctl",
		Short: "Administración de partbot",
		Long:  "Herramienta de administración de partbot: usuarios, tokens de servicio y consultas al intake.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("formato inválido %q: debe ser uno de %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "salida detallada")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (json|text)")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}
