package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planillas/internal/planilla"
	"planillas/internal/service"
)

func form(number, payee string) planilla.InvoiceForm {
	return planilla.InvoiceForm{
		ObservationCode: planilla.ObservationInvoicePayment,
		InvoiceNumber:   number,
		TaxID:           "900123456",
		PayeeName:       payee,
		AmountToPay:     "1.500.000",
	}
}

func TestPlanillaRequiresEditorOrAdmin(t *testing.T) {
	s := newTestServer(t)
	viewer := s.seed(t, "visor@example.com", "viewer")

	w, env := s.do(t, http.MethodGet, "/api/planilla", viewer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", env.Code)

	w, _ = s.do(t, http.MethodGet, "/api/planilla", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlanillaFullFlow(t *testing.T) {
	s := newTestServer(t)
	tok := s.seed(t, "ana@example.com", "editor")

	w, env := s.do(t, http.MethodPut, "/api/planilla/batch-number", tok, service.BatchNumberRequest{BatchNumber: "PL-2024-07"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "202407", decode[service.Snapshot](t, env.Data).BatchNumber)

	w, env = s.do(t, http.MethodPost, "/api/planilla/invoices", tok, form("A100", "Acme"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[service.RegisterResult](t, env.Data)
	assert.Equal(t, "202407", reg.FormDefaults.BatchNumber)
	assert.Empty(t, reg.FormDefaults.InvoiceNumber)
	assert.Equal(t, 1, reg.Session.Count)
	assert.Equal(t, "1.500.000", reg.Invoice.DisplayAmount)

	w, env = s.do(t, http.MethodPost, "/api/planilla/invoices", tok, form("a100", "ACME"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_invoice", env.Code)

	w, env = s.do(t, http.MethodPost, "/api/planilla/submit/provisional", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sub := decode[service.SubmissionResult](t, env.Data)
	assert.Equal(t, planilla.StateProvisionallySubmitted, sub.Session.State)
	assert.False(t, sub.Receipt.Final)

	w, env = s.do(t, http.MethodPost, "/api/planilla/submit/final", tok, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "confirmation_required", env.Code)

	w, env = s.do(t, http.MethodPost, "/api/planilla/submit/final/confirm", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[service.Snapshot](t, env.Data).ConfirmationPending)

	w, env = s.do(t, http.MethodPost, "/api/planilla/submit/final", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	final := decode[service.SubmissionResult](t, env.Data)
	assert.True(t, final.Receipt.Final)
	assert.Equal(t, 1, final.Receipt.Count)
	assert.Equal(t, planilla.StateEditing, final.Session.State)
	assert.Empty(t, final.Session.BatchNumber)
	assert.Zero(t, final.Session.Count)
}

func TestRegisterInvoiceValidationDetails(t *testing.T) {
	s := newTestServer(t)
	tok := s.seed(t, "ana@example.com", "editor")

	bad := form("A1", "Acme")
	bad.TaxID = "12345678"
	bad.AmountToPay = ""
	w, env := s.do(t, http.MethodPost, "/api/planilla/invoices", tok, bad)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation_failed", env.Code)
	assert.Contains(t, env.Details, string(planilla.FieldTaxID))
	assert.Contains(t, env.Details, string(planilla.FieldAmountToPay))
}

func TestRegisterInvoiceWorkflowUnavailable(t *testing.T) {
	s := newTestServer(t)
	tok := s.seed(t, "ana@example.com", "admin")
	s.workflow.registerErr = planilla.Unavailable("register_invoice", assert.AnError)

	w, env := s.do(t, http.MethodPost, "/api/planilla/invoices", tok, form("A1", "Acme"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "collaborator_unavailable", env.Code)
}

func TestRegisterInvoiceWorkflowRejected(t *testing.T) {
	s := newTestServer(t)
	tok := s.seed(t, "ana@example.com", "editor")
	s.workflow.registerErr = planilla.Rejected("register_invoice", "La factura A1 ya existe")

	w, env := s.do(t, http.MethodPost, "/api/planilla/invoices", tok, form("A1", "Acme"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "collaborator_rejected", env.Code)
	assert.Equal(t, "La factura A1 ya existe", env.Error)
}

func TestProvisionalWithoutBatchNumber(t *testing.T) {
	s := newTestServer(t)
	tok := s.seed(t, "ana@example.com", "editor")

	w, env := s.do(t, http.MethodPost, "/api/planilla/submit/provisional", tok, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "missing_batch_number", env.Code)
}

func TestRemoveInvoice(t *testing.T) {
	s := newTestServer(t)
	tok := s.seed(t, "ana@example.com", "editor")

	_, env := s.do(t, http.MethodPost, "/api/planilla/invoices", tok, form("A1", "Acme"))
	reg := decode[service.RegisterResult](t, env.Data)

	w, env := s.do(t, http.MethodDelete, "/api/planilla/invoices/"+reg.Invoice.ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[service.Snapshot](t, env.Data).Count)

	w, env = s.do(t, http.MethodDelete, "/api/planilla/invoices/"+reg.Invoice.ID, tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "invoice_not_found", env.Code)
}

func TestLookupCompany(t *testing.T) {
	s := newTestServer(t)
	tok := s.seed(t, "ana@example.com", "editor")
	s.workflow.company = "Constructora Andina SAS"

	w, env := s.do(t, http.MethodGet, "/api/planilla/company?tax_id=900.123.456", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[service.CompanyResult](t, env.Data)
	assert.Equal(t, "900123456", res.TaxID)
	assert.Equal(t, "Constructora Andina SAS", res.Name)

	w, env = s.do(t, http.MethodGet, "/api/planilla/company", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Ingrese un NIT para buscar", env.Details[string(planilla.FieldTaxID)])

	s.workflow.lookupErr = planilla.ErrCompanyNotFound
	w, env = s.do(t, http.MethodGet, "/api/planilla/company?tax_id=900123456", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "company_not_found", env.Code)
}

func TestFormatField(t *testing.T) {
	s := newTestServer(t)
	tok := s.seed(t, "ana@example.com", "editor")

	w, env := s.do(t, http.MethodPost, "/api/planilla/format", tok, service.FormatRequest{
		Field: planilla.FieldAmountToPay, Value: "1500000", Cursor: 7,
	})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[service.FormatResponse](t, env.Data)
	assert.Equal(t, "1.500.000", res.Value)
	assert.Equal(t, 9, res.Cursor)

	w, env = s.do(t, http.MethodPost, "/api/planilla/format", tok, service.FormatRequest{Field: "color", Value: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_field", env.Code)
}

func TestObservationsAndDismissAlert(t *testing.T) {
	s := newTestServer(t)
	tok := s.seed(t, "ana@example.com", "editor")

	w, env := s.do(t, http.MethodGet, "/api/planilla/observations", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, planilla.ObservationOptions(), decode[[]string](t, env.Data))

	_, env = s.do(t, http.MethodPost, "/api/planilla/invoices", tok, form("A1", "Acme"))
	reg := decode[service.RegisterResult](t, env.Data)
	require.NotNil(t, reg.Session.Alert)

	path := "/api/planilla/alert/" + uintString(reg.Session.Alert.ID)
	_, env = s.do(t, http.MethodDelete, path, tok, nil)
	assert.Equal(t, map[string]bool{"dismissed": true}, decode[map[string]bool](t, env.Data))
	_, env = s.do(t, http.MethodDelete, path, tok, nil)
	assert.Equal(t, map[string]bool{"dismissed": false}, decode[map[string]bool](t, env.Data))

	w, _ = s.do(t, http.MethodDelete, "/api/planilla/alert/abc", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
