package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"planillas/internal/planilla"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "ok", err: nil, want: ResultOK},
		{name: "rejected", err: planilla.Rejected("register_invoice", "dup"), want: ResultRejected},
		{name: "unavailable", err: planilla.Unavailable("submit_batch", errors.New("timeout")), want: ResultUnavailable},
		{name: "other", err: errors.New("boom"), want: ResultError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveWebhook("register_invoice", nil)
	m.ObserveWebhook("register_invoice", nil)
	m.ObserveSubmission(true, planilla.Unavailable("submit_batch", errors.New("down")))
	m.InvoiceRemoved()
	m.ObserveLogin("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.webhookCalls.WithLabelValues("register_invoice", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("final", ResultUnavailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invoices.WithLabelValues("removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveWebhook("x", nil)
		m.ObserveSubmission(false, nil)
		m.InvoiceRegistered()
		m.ObserveLogin("ok")
	})
}
