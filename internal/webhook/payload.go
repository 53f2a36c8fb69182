package webhook

import (
	"encoding/json"
	"strings"
	"time"

	"planillas/internal/model"
	"planillas/internal/planilla"
)

// Wire bodies keep the Spanish keys the n8n flows were built against.

type registerInvoiceBody struct {
	BatchNumber     string `json:"numeroPlanilla"`
	ObservationCode string `json:"observaciones"`
	InvoiceNumber   string `json:"noFactura"`
	TaxID           string `json:"nit"`
	PayeeName       string `json:"nombre"`
	AmountToPay     string `json:"valorPagar"`
	RegisteredAt    string `json:"fechaRegistro"`
}

type registerInvoiceReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	replyStatusSuccess = "success"
	replyStatusFail    = "fail"
)

type lookupCompanyBody struct {
	TaxID string `json:"nit"`
}

type removeInvoiceBody struct {
	InvoiceNumber string `json:"noFactura"`
	PayeeName     string `json:"nombre"`
	AmountToPay   string `json:"valorPagar"`
	BatchNumber   string `json:"numeroPlanilla"`
	RemovedAt     string `json:"fechaEliminacion"`
}

type batchInvoice struct {
	InvoiceNumber string `json:"noFactura"`
	PayeeName     string `json:"nombre"`
	AmountToPay   string `json:"valorPagar"`
}

type submitBatchBody struct {
	BatchNumber  string         `json:"numeroPlanilla"`
	Invoices     []batchInvoice `json:"facturas"`
	Total        json.Number    `json:"total"`
	InvoiceCount int            `json:"totalFacturas"`
	SentAt       string         `json:"fechaEnvio"`
}

type loginAuditBody struct {
	Action string `json:"accion"`
	Email  string `json:"email"`
	Name   string `json:"nombre"`
	Role   string `json:"rol"`
	At     string `json:"fecha"`
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func newRegisterInvoiceBody(t planilla.RegisterTicket) registerInvoiceBody {
	return registerInvoiceBody{
		BatchNumber:     t.BatchNumber,
		ObservationCode: t.Draft.ObservationCode,
		InvoiceNumber:   t.Draft.InvoiceNumber,
		TaxID:           t.Draft.TaxID,
		PayeeName:       t.Draft.PayeeName,
		AmountToPay:     planilla.FormatAmount(t.Draft.AmountToPay),
		RegisteredAt:    timestamp(t.At),
	}
}

func newRemoveInvoiceBody(batchNumber string, inv planilla.Invoice, at time.Time) removeInvoiceBody {
	return removeInvoiceBody{
		InvoiceNumber: inv.InvoiceNumber,
		PayeeName:     inv.PayeeName,
		AmountToPay:   inv.DisplayAmount(),
		BatchNumber:   batchNumber,
		RemovedAt:     timestamp(at),
	}
}

func newSubmitBatchBody(sub planilla.Submission) submitBatchBody {
	invoices := make([]batchInvoice, 0, len(sub.Invoices))
	for _, inv := range sub.Invoices {
		invoices = append(invoices, batchInvoice{
			InvoiceNumber: inv.InvoiceNumber,
			PayeeName:     inv.PayeeName,
			AmountToPay:   inv.DisplayAmount(),
		})
	}
	return submitBatchBody{
		BatchNumber:  sub.BatchNumber,
		Invoices:     invoices,
		Total:        json.Number(sub.Total.Truncate(0).String()),
		InvoiceCount: sub.Count,
		SentAt:       timestamp(sub.At),
	}
}

func newLoginAuditBody(user *model.User, at time.Time) loginAuditBody {
	return loginAuditBody{
		Action: "login",
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		At:     timestamp(at),
	}
}

// companyNameKeys are probed in order on object replies.
var companyNameKeys = []string{"nombre", "nombre_empresa"}

// arrayNameKeys are probed on the first element of an array reply.
var arrayNameKeys = []string{"nombre", "nombre_empresa", "Nombre Completo", "Nombre"}

// extractCompanyName reads the company name out of the reply shapes the lookup flow has used over time:
// {nombre}, {nombre_empresa}, {data:{nombre|nombre_empresa}}, [{...}], {Nombre}, {"Nombre Completo"}.
func extractCompanyName(raw []byte) (string, bool) {
	var list []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", false
		}
		return firstString(list[0], arrayNameKeys)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	if name, ok := firstString(obj, companyNameKeys); ok {
		return name, true
	}
	if nested, ok := obj["data"]; ok {
		var data map[string]json.RawMessage
		if err := json.Unmarshal(nested, &data); err == nil {
			if name, ok := firstString(data, companyNameKeys); ok {
				return name, true
			}
		}
	}
	return firstString(obj, []string{"Nombre", "Nombre Completo"})
}

func firstString(obj map[string]json.RawMessage, keys []string) (string, bool) {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}
