package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"planillas/internal/planilla"
)

const (
	ResultOK          = "ok"
	ResultRejected    = "rejected"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

// Metrics captures workflow webhook and batch submission signals.
type Metrics struct {
	webhookCalls *prometheus.CounterVec
	submissions  *prometheus.CounterVec
	invoices     *prometheus.CounterVec
	logins       *prometheus.CounterVec
}

// New registers the collectors on registerer (the default registry when nil).
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		webhookCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planillas_webhook_calls_total",
			Help: "Workflow webhook calls by operation and result.",
		}, []string{"operation", "result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planillas_batch_submissions_total",
			Help: "Batch submissions by kind (provisional, final) and result.",
		}, []string{"kind", "result"}),
		invoices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planillas_invoice_events_total",
			Help: "Invoices registered or removed in batch sessions.",
		}, []string{"event"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planillas_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
	}
	registerer.MustRegister(m.webhookCalls, m.submissions, m.invoices, m.logins)
	return m
}

// ObserveWebhook counts one webhook call.
func (m *Metrics) ObserveWebhook(operation string, err error) {
	if m == nil {
		return
	}
	m.webhookCalls.WithLabelValues(operation, Classify(err)).Inc()
}

func (m *Metrics) ObserveSubmission(final bool, err error) {
	if m == nil {
		return
	}
	kind := "provisional"
	if final {
		kind = "final"
	}
	m.submissions.WithLabelValues(kind, Classify(err)).Inc()
}

func (m *Metrics) InvoiceRegistered() {
	if m == nil {
		return
	}
	m.invoices.WithLabelValues("registered").Inc()
}

func (m *Metrics) InvoiceRemoved() {
	if m == nil {
		return
	}
	m.invoices.WithLabelValues("removed").Inc()
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// Classify maps an error to a low-cardinality result label.
func Classify(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, planilla.ErrCollaboratorRejected):
		return ResultRejected
	case errors.Is(err, planilla.ErrCollaboratorUnavailable):
		return ResultUnavailable
	default:
		return ResultError
	}
}
