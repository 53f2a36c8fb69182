package planilla

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is one invoice registered against the current batch. Values are never mutated after creation.
type Invoice struct {
	ID              string    `json:"id"`
	InvoiceNumber   string    `json:"invoice_number"`
	PayeeName       string    `json:"payee_name"`
	AmountToPay     int64     `json:"amount_to_pay"`
	ObservationCode string    `json:"observation_code"`
	TaxID           string    `json:"tax_id"`
	RegisteredAt    time.Time `json:"registered_at"`
}

// DisplayAmount is AmountToPay with es-CO thousands separators.
func (i Invoice) DisplayAmount() string {
	return FormatAmount(i.AmountToPay)
}

type invoiceKey struct {
	number string
	payee  string
}

func keyOf(number, payee string) invoiceKey {
	return invoiceKey{
		number: strings.ToLower(strings.TrimSpace(number)),
		payee:  strings.ToLower(strings.TrimSpace(payee)),
	}
}

// Ledger is the ordered set of invoices of one batch.
// (invoice number, payee) pairs are unique, compared case-insensitively.
type Ledger struct {
	invoices []Invoice
}

// Add appends inv unless an invoice with the same number and payee is already present.
func (l *Ledger) Add(inv Invoice) error {
	if l.Contains(inv.InvoiceNumber, inv.PayeeName) {
		return &InvoiceError{Kind: ErrDuplicateInvoice, InvoiceNumber: inv.InvoiceNumber, PayeeName: inv.PayeeName}
	}
	l.invoices = append(l.invoices, inv)
	return nil
}

// Contains reports whether an invoice with this number and payee exists.
func (l *Ledger) Contains(invoiceNumber, payeeName string) bool {
	want := keyOf(invoiceNumber, payeeName)
	for _, inv := range l.invoices {
		if keyOf(inv.InvoiceNumber, inv.PayeeName) == want {
			return true
		}
	}
	return false
}

// Get returns the invoice with the given id.
func (l *Ledger) Get(id string) (Invoice, bool) {
	for _, inv := range l.invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return Invoice{}, false
}

// Remove deletes the invoice with the given id and returns it.
func (l *Ledger) Remove(id string) (Invoice, error) {
	for i, inv := range l.invoices {
		if inv.ID == id {
			l.invoices = append(l.invoices[:i:i], l.invoices[i+1:]...)
			return inv, nil
		}
	}
	return Invoice{}, &InvoiceError{Kind: ErrInvoiceNotFound, ID: id}
}

// Total sums AmountToPay over the current invoices. It is recomputed on every call.
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, inv := range l.invoices {
		total = total.Add(decimal.NewFromInt(inv.AmountToPay))
	}
	return total
}

func (l *Ledger) Count() int {
	return len(l.invoices)
}

// Invoices returns a copy of the invoices in insertion order.
func (l *Ledger) Invoices() []Invoice {
	out := make([]Invoice, len(l.invoices))
	copy(out, l.invoices)
	return out
}

func (l *Ledger) Reset() {
	l.invoices = nil
}
