package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planillas/internal/config"
	"planillas/internal/metrics"
	"planillas/internal/model"
	"planillas/internal/planilla"
)

type capture struct {
	body map[string]any
}

func newServer(t *testing.T, status int, reply string, got *capture) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		if got != nil {
			assert.NoError(t, json.Unmarshal(raw, &got.body))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(urls config.WebhookConfig) *Client {
	urls.Timeout = 2 * time.Second
	return NewClient(urls, metrics.New(prometheus.NewRegistry()), nil)
}

var registeredAt = time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)

func ticket() planilla.RegisterTicket {
	return planilla.RegisterTicket{
		Draft: planilla.Draft{
			ObservationCode: planilla.ObservationInvoicePayment,
			InvoiceNumber:   "FE100",
			TaxID:           "900123456",
			PayeeName:       "Acme SAS",
			AmountToPay:     1500000,
		},
		BatchNumber: "2024",
		At:          registeredAt,
	}
}

func TestRegisterInvoiceSuccess(t *testing.T) {
	var got capture
	srv := newServer(t, http.StatusOK, `{"status":"success","message":"Factura registrada"}`, &got)
	c := newTestClient(config.WebhookConfig{RegisterInvoiceURL: srv.URL})

	msg, err := c.RegisterInvoice(context.Background(), ticket())
	require.NoError(t, err)
	assert.Equal(t, "Factura registrada", msg)

	assert.Equal(t, map[string]any{
		"numeroPlanilla": "2024",
		"observaciones":  "PAGO FACTURA",
		"noFactura":      "FE100",
		"nit":            "900123456",
		"nombre":         "Acme SAS",
		"valorPagar":     "1.500.000",
		"fechaRegistro":  "2025-03-01T14:30:00.000Z",
	}, got.body)
}

func TestRegisterInvoiceFailStatusIsRejection(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"status":"fail","message":"La factura FE100 ya existe"}`, nil)
	c := newTestClient(config.WebhookConfig{RegisterInvoiceURL: srv.URL})

	_, err := c.RegisterInvoice(context.Background(), ticket())
	require.ErrorIs(t, err, planilla.ErrCollaboratorRejected)

	var cerr *planilla.CollaboratorError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "La factura FE100 ya existe", cerr.Message)
}

func TestRegisterInvoiceTransportFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		reply  string
	}{
		{name: "server error", status: http.StatusInternalServerError, reply: `{}`},
		{name: "not json", status: http.StatusOK, reply: `<html>`},
		{name: "unknown status", status: http.StatusOK, reply: `{"status":"maybe"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.status, tc.reply, nil)
			c := newTestClient(config.WebhookConfig{RegisterInvoiceURL: srv.URL})

			_, err := c.RegisterInvoice(context.Background(), ticket())
			assert.ErrorIs(t, err, planilla.ErrCollaboratorUnavailable)
		})
	}
}

func TestUnconfiguredURLIsUnavailable(t *testing.T) {
	c := newTestClient(config.WebhookConfig{})

	_, err := c.RegisterInvoice(context.Background(), ticket())
	assert.ErrorIs(t, err, planilla.ErrCollaboratorUnavailable)
	assert.ErrorIs(t, err, errNotConfigured)

	assert.NoError(t, c.NotifyInvoiceRemoved(context.Background(), "1", planilla.Invoice{}, registeredAt))
	assert.NoError(t, c.AuditLogin(context.Background(), &model.User{}, registeredAt))
}

func TestLookupCompany(t *testing.T) {
	var got capture
	srv := newServer(t, http.StatusOK, `[{"Nombre Completo":"Constructora XYZ"}]`, &got)
	c := newTestClient(config.WebhookConfig{LookupCompanyURL: srv.URL})

	name, err := c.LookupCompany(context.Background(), "900123456")
	require.NoError(t, err)
	assert.Equal(t, "Constructora XYZ", name)
	assert.Equal(t, map[string]any{"nit": "900123456"}, got.body)
}

func TestLookupCompanyNotFound(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"message":"sin resultados"}`, nil)
	c := newTestClient(config.WebhookConfig{LookupCompanyURL: srv.URL})

	_, err := c.LookupCompany(context.Background(), "900123456")
	assert.ErrorIs(t, err, planilla.ErrCompanyNotFound)
}

func TestExtractCompanyName(t *testing.T) {
	cases := []struct {
		reply string
		want  string
		ok    bool
	}{
		{reply: `{"nombre":"A"}`, want: "A", ok: true},
		{reply: `{"nombre_empresa":"B"}`, want: "B", ok: true},
		{reply: `{"data":{"nombre":"C"}}`, want: "C", ok: true},
		{reply: `{"data":{"nombre_empresa":"D"}}`, want: "D", ok: true},
		{reply: `[{"nombre_empresa":"E"}]`, want: "E", ok: true},
		{reply: `[{"Nombre":"F"}]`, want: "F", ok: true},
		{reply: `{"Nombre":"G"}`, want: "G", ok: true},
		{reply: `{"Nombre Completo":"H"}`, want: "H", ok: true},
		{reply: `{"nombre":"  ","Nombre":"I"}`, want: "I", ok: true},
		{reply: `{"nombre":42}`, ok: false},
		{reply: `[]`, ok: false},
		{reply: `""`, ok: false},
		{reply: `not json`, ok: false},
	}
	for _, tc := range cases {
		name, ok := extractCompanyName([]byte(tc.reply))
		assert.Equal(t, tc.ok, ok, tc.reply)
		assert.Equal(t, tc.want, name, tc.reply)
	}
}

func TestSubmitBatchRoutesByKind(t *testing.T) {
	var provisional, final capture
	provSrv := newServer(t, http.StatusOK, `{}`, &provisional)
	finalSrv := newServer(t, http.StatusOK, `{}`, &final)
	c := newTestClient(config.WebhookConfig{ProvisionalURL: provSrv.URL, FinalURL: finalSrv.URL})

	sub := planilla.Submission{
		BatchNumber: "77",
		Invoices: []planilla.Invoice{
			{InvoiceNumber: "A1", PayeeName: "Acme", AmountToPay: 100000},
			{InvoiceNumber: "A2", PayeeName: "Beta", AmountToPay: 2500},
		},
		Total: decimal.NewFromInt(102500),
		Count: 2,
		Final: true,
		At:    registeredAt,
	}
	require.NoError(t, c.SubmitBatch(context.Background(), sub))

	assert.Nil(t, provisional.body)
	require.NotNil(t, final.body)
	assert.Equal(t, "77", final.body["numeroPlanilla"])
	assert.Equal(t, float64(102500), final.body["total"])
	assert.Equal(t, float64(2), final.body["totalFacturas"])
	assert.Equal(t, []any{
		map[string]any{"noFactura": "A1", "nombre": "Acme", "valorPagar": "100.000"},
		map[string]any{"noFactura": "A2", "nombre": "Beta", "valorPagar": "2.500"},
	}, final.body["facturas"])
}

func TestNotifyInvoiceRemovedAndAudit(t *testing.T) {
	var removed, audit capture
	removeSrv := newServer(t, http.StatusOK, `{}`, &removed)
	auditSrv := newServer(t, http.StatusOK, `{}`, &audit)
	c := newTestClient(config.WebhookConfig{RemoveInvoiceURL: removeSrv.URL, LoginAuditURL: auditSrv.URL})

	inv := planilla.Invoice{InvoiceNumber: "A1", PayeeName: "Acme", AmountToPay: 1500}
	require.NoError(t, c.NotifyInvoiceRemoved(context.Background(), "77", inv, registeredAt))
	assert.Equal(t, "1.500", removed.body["valorPagar"])
	assert.Equal(t, "77", removed.body["numeroPlanilla"])
	assert.Equal(t, "2025-03-01T14:30:00.000Z", removed.body["fechaEliminacion"])

	user := &model.User{Email: "ana@example.com", Name: "Ana", Role: "visor"}
	require.NoError(t, c.AuditLogin(context.Background(), user, registeredAt))
	assert.Equal(t, "login", audit.body["accion"])
	assert.Equal(t, "visor", audit.body["rol"])
}
