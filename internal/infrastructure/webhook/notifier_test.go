package webhook_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpkinbots/partbot/internal/application/ports"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/infrastructure/webhook"
)

var fixedTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func approvedNotification() entity.Notification {
	return entity.Notification{
		Kind:  entity.NotifyApproved,
		Title: "Request Approved: REQ-1A2B3C4D",
		Fields: []entity.NotificationField{
			{Name: "Part", Value: "Gearbox", Inline: true},
			{Name: "Quantity", Value: "2", Inline: true},
			{Name: "Order", Value: "ORD-9F8E7D6C"},
		},
		Timestamp: fixedTime,
		Color:     3066993,
	}
}

func TestNotifier_PayloadGolden(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := webhook.NewNotifier(srv.URL, "", time.Second)
	require.NoError(t, n.Send(context.Background(), ports.ChannelProcurement, approvedNotification()))

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "approved", captured)
}

func TestEncode_ValorVacio(t *testing.T) {
	body, err := webhook.Encode(entity.Notification{
		Kind:  entity.NotifyDenied,
		Title: "Request Denied: REQ-00000001",
		Fields: []entity.NotificationField{
			{Name: "Reason", Value: "Over budget"},
			{Name: "Requester", Value: "  ", Inline: true},
		},
		Timestamp: fixedTime.In(time.FixedZone("PST", -8*3600)),
		Color:     15158332,
	})
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "denied", body)
}

func TestNotifier_RequesterUsaCanalDeCompras(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := webhook.NewNotifier(srv.URL, "", time.Second)
	require.NoError(t, n.Send(context.Background(), ports.ChannelRequester, approvedNotification()))
	assert.Equal(t, 1, hits)
}

func TestNotifier_Errores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := webhook.NewNotifier(srv.URL, "", time.Second).Send(context.Background(), ports.ChannelProcurement, approvedNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")

	err = webhook.NewNotifier("", "", time.Second).Send(context.Background(), ports.ChannelProcurement, approvedNotification())
	assert.ErrorIs(t, err, webhook.ErrNotConfigured)
}
