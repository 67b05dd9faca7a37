// Package orders genera la orden de compra imprimible (PDF) a partir de una Order y los
// Requests que agrupa.
package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
)

// PurchaseOrderDocument datos ya resueltos que necesita el generador.
type PurchaseOrderDocument struct {
	Team     string
	Order    *entity.Order
	Requests []*entity.Request
}

// PurchaseOrderRenderer genera los bytes del PDF (DIP; la implementación vive en infraestructura).
type PurchaseOrderRenderer interface {
	RenderPurchaseOrder(ctx context.Context, doc PurchaseOrderDocument) ([]byte, error)
}

// PDFUseCase genera la orden de compra de una Order existente.
type PDFUseCase struct {
	orders   repository.OrderRepository
	requests repository.RequestRepository
	renderer PurchaseOrderRenderer
	team     string
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	orders repository.OrderRepository,
	requests repository.RequestRepository,
	renderer PurchaseOrderRenderer,
	team string,
) *PDFUseCase {
	return &PDFUseCase{orders: orders, requests: requests, renderer: renderer, team: team}
}

// DownloadPurchaseOrder carga la orden y sus requests vinculados y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si la orden no existe.
//   - *domain.ValidationError   si el id está vacío.
//
// Un request listado en la orden que ya no existe en la tabla se omite.
func (uc *PDFUseCase) DownloadPurchaseOrder(ctx context.Context, orderID string) ([]byte, string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, "", domain.NewValidationError("orderId", "requerido")
	}

	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("orders: obtener orden: %w", err)
	}
	if order == nil {
		return nil, "", domain.ErrNotFound
	}

	linked := make([]*entity.Request, 0, len(order.IncludedRequestIDs))
	for _, id := range order.IncludedRequestIDs {
		req, err := uc.requests.GetByID(ctx, id)
		if err != nil {
			return nil, "", fmt.Errorf("orders: obtener request %s: %w", id, err)
		}
		if req != nil {
			linked = append(linked, req)
		}
	}

	pdf, err := uc.renderer.RenderPurchaseOrder(ctx, PurchaseOrderDocument{
		Team:     uc.team,
		Order:    order,
		Requests: linked,
	})
	if err != nil {
		return nil, "", fmt.Errorf("orders: generar pdf: %w", err)
	}
	return pdf, Filename(order), nil
}

// Filename nombre sugerido para la descarga: "purchase-order-ORD-XXXX.pdf".
func Filename(order *entity.Order) string {
	return "purchase-order-" + order.ID + ".pdf"
}
