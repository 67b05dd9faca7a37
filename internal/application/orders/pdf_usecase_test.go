package orders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpkinbots/partbot/internal/application/orders"
	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/infrastructure/memory"
	"github.com/pumpkinbots/partbot/internal/infrastructure/tables"
)

// fakeRenderer captura el documento recibido.
type fakeRenderer struct {
	got orders.PurchaseOrderDocument
	err error
}

func (f *fakeRenderer) RenderPurchaseOrder(_ context.Context, doc orders.PurchaseOrderDocument) ([]byte, error) {
	f.got = doc
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.3"), nil
}

func newUseCase(t *testing.T, renderer orders.PurchaseOrderRenderer) *orders.PDFUseCase {
	t.Helper()
	ctx := context.Background()
	store := memory.NewTableStore()
	require.NoError(t, tables.Provision(ctx, store))
	requests := tables.NewRequestRepository(store)
	orderRepo := tables.NewOrderRepository(store)

	require.NoError(t, requests.Create(ctx, &entity.Request{ID: "REQ-1", PartName: "Bearing", Quantity: 4, Status: entity.StatusApproved}))
	require.NoError(t, orderRepo.Create(ctx, &entity.Order{
		ID:                 "ORD-1",
		IncludedRequestIDs: []string{"REQ-1", "REQ-GONE"},
		Vendor:             "WCP",
		Quantity:           4,
		Status:             entity.OrderAwaitingPurchase,
	}))
	return orders.NewPDFUseCase(orderRepo, requests, renderer, "Team 1234")
}

// ─────────────────────────────────────────────────────────────────────────────

func TestDownloadPurchaseOrder_OK(t *testing.T) {
	renderer := &fakeRenderer{}
	uc := newUseCase(t, renderer)

	pdf, name, err := uc.DownloadPurchaseOrder(context.Background(), "ORD-1")
	require.NoError(t, err)

	assert.Equal(t, "purchase-order-ORD-1.pdf", name)
	assert.Equal(t, []byte("%PDF-1.3"), pdf)
	assert.Equal(t, "Team 1234", renderer.got.Team)
	assert.Equal(t, "WCP", renderer.got.Order.Vendor)
	require.Len(t, renderer.got.Requests, 1, "los requests inexistentes se omiten")
	assert.Equal(t, "Bearing", renderer.got.Requests[0].PartName)
}

func TestDownloadPurchaseOrder_Errores(t *testing.T) {
	t.Run("id vacío", func(t *testing.T) {
		_, _, err := newUseCase(t, &fakeRenderer{}).DownloadPurchaseOrder(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
	t.Run("orden inexistente", func(t *testing.T) {
		_, _, err := newUseCase(t, &fakeRenderer{}).DownloadPurchaseOrder(context.Background(), "ORD-404")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
	t.Run("fallo del generador", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, err := newUseCase(t, &fakeRenderer{err: boom}).DownloadPurchaseOrder(context.Background(), "ORD-1")
		assert.ErrorIs(t, err, boom)
	})
}
