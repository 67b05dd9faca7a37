package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pumpkinbots/partbot/internal/application/dto"
)

// StatusOptions flags del comando status.
type StatusOptions struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// NewStatusCommand construye el comando status: consulta orderStatus en el intake.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{}
	cmd := &cobra.Command{
		Use:   "status <REQ-id|ORD-id>",
		Short: "Consultar el estado de un request u orden",
		Long: `Llama a POST /api/intake con action=orderStatus y muestra el resultado.
Acepta respuestas en la forma estructurada y en la básica.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := FetchStatus(ctx, http.DefaultClient, opts, args[0])
			if err != nil {
				return err
			}
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Print(res, func(w io.Writer) { printStatus(w, res) })
		},
	}
	cmd.Flags().StringVar(&opts.URL, "url", envOr("PARTBOT_URL", "http://localhost:8080"), "URL base del servidor")
	cmd.Flags().StringVar(&opts.Token, "token", os.Getenv("PARTBOT_TOKEN"), "token Bearer (por defecto $PARTBOT_TOKEN)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "timeout de la llamada")
	return cmd
}

// FetchStatus consulta orderStatus para un id de request (REQ-) u orden (ORD-).
// Un sobre con status=error se devuelve como *dto.EnvelopeError.
func FetchStatus(ctx context.Context, client *http.Client, opts *StatusOptions, id string) (*dto.OrderStatusResult, error) {
	id = strings.TrimSpace(id)
	payload := dto.IntakeRequest{Action: dto.ActionOrderStatus}
	if strings.HasPrefix(strings.ToUpper(id), "ORD-") {
		payload.OrderID = id
	} else {
		payload.RequestID = id
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(opts.URL, "/")+"/api/intake", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llamar intake: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("leer respuesta: %w", err)
	}

	env, err := dto.DecodeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("HTTP %d: %w", resp.StatusCode, err)
	}
	if env.Status == dto.StatusError {
		if env.Error == nil {
			env.Error = &dto.EnvelopeError{Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
		}
		return nil, env.Error
	}
	var out dto.OrderStatusResult
	if err := env.DecodeData(&out); err != nil {
		return nil, fmt.Errorf("decodificar datos: %w", err)
	}
	return &out, nil
}

func printStatus(w io.Writer, res *dto.OrderStatusResult) {
	if r := res.Request; r != nil {
		fmt.Fprintf(w, "%s  %s  (%s, qty %d)\n", r.ID, r.RequestStatus, nonEmpty(r.PartName, r.SKU), r.Qty)
	}
	orders := res.Orders
	if res.Order != nil {
		orders = append(orders, *res.Order)
	}
	for _, o := range orders {
		fmt.Fprintf(w, "  %s  %s  %s", o.OrderID, o.Status, nonEmpty(o.Vendor, "-"))
		if o.Tracking != "" {
			fmt.Fprintf(w, "  tracking %s", o.Tracking)
		}
		fmt.Fprintln(w)
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
