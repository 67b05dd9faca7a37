// Package pdf genera la orden de compra imprimible de una Order.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Equipo + Proveedor  │  N° Orden + Fecha + Estado   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ENVÍO: Método / Tracking / ETA                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Pieza | SKU | P.Unit | Subtotal               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + QR con el id de la orden                            │
//	│  REQUESTS: id / solicitante / subsistema / prioridad         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/pumpkinbots/partbot/internal/application/orders"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 230, Green: 110, Blue: 20}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ orders.PurchaseOrderRenderer = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa orders.PurchaseOrderRenderer usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// RenderPurchaseOrder genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) RenderPurchaseOrder(_ context.Context, doc orders.PurchaseOrderDocument) ([]byte, error) {
	if doc.Order == nil {
		return nil, fmt.Errorf("pdf: orden nula")
	}
	team := nonEmpty(doc.Team, "FRC Team")

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Purchase Order "+doc.Order.ID, true).
		WithAuthor(team, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc.Order, team))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(shippingRow(doc.Order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(lineItemRow(doc.Order))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(doc.Order))

	if len(doc.Requests) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(requestsRows(doc.Requests)...)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: equipo + proveedor (izq) y N° de orden + fecha + estado (der).
func headerRow(order *entity.Order, team string) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(team, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Vendor: "+nonEmpty(order.Vendor, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PURCHASE ORDER", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(order.ID, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Date: "+formatDate(order.OrderDate), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Status: "+nonEmpty(string(order.Status), "-"), props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
		),
	)
}

// shippingRow: método de envío, tracking y ETA.
func shippingRow(order *entity.Order) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("SHIPPING", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Method: %s   |   Tracking: %s   |   ETA: %s",
				nonEmpty(order.ShippingMethod, entity.ShippingStandard),
				nonEmpty(order.Tracking, "-"),
				formatDate(order.ETA),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qty", 1, align.Center),
		h("Part", 5, align.Left),
		h("SKU", 2, align.Left),
		h("Unit Price", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

// lineItemRow: la orden tiene una sola línea (pieza × cantidad).
func lineItemRow(order *entity.Order) core.Row {
	return row.New(7).Add(
		col.New(1).Add(text.New(
			strconv.Itoa(order.Quantity),
			props.Text{Size: 8, Align: align.Center, Top: 1},
		)),
		col.New(5).Add(text.New(
			nonEmpty(order.PartName, "-"),
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(2).Add(text.New(
			nonEmpty(order.SKU, "-"),
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(2).Add(text.New(
			formatMoney(order.UnitPrice),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
		col.New(2).Add(text.New(
			formatMoney(order.TotalCost),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
	)
}

// totalRow: QR con el id de la orden (para escanear al recibir) y total a la derecha.
func totalRow(order *entity.Order) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(order.ID, props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(5),
		col.New(2).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 4, Right: 2,
		})),
		col.New(2).Add(text.New(formatMoney(order.TotalCost), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 4, Right: 1,
		})),
	)
}

// requestsRows: un renglón por request agrupado en la orden.
func requestsRows(requests []*entity.Request) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("REQUESTS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, r := range requests {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(r.ID, props.Text{Size: 7.5, Top: 0.5, Left: 1})),
			col.New(4).Add(text.New(nonEmpty(r.Requester, "-"), props.Text{Size: 7.5, Top: 0.5})),
			col.New(3).Add(text.New(nonEmpty(r.Subsystem, "-"), props.Text{Size: 7.5, Top: 0.5, Color: colorGray})),
			col.New(2).Add(text.New(nonEmpty(r.Priority, "-"), props.Text{Size: 7.5, Top: 0.5, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney "$1,234.50"; "-" si no hay valor.
func formatMoney(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	s := d.StringFixed(2)
	neg := false
	if s[0] == '-' {
		neg, s = true, s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	out := "$" + string(buf) + frac
	if neg {
		out = "-" + out
	}
	return out
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
