package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"planillas/internal/config"
	"planillas/internal/metrics"
	"planillas/internal/model"
	"planillas/internal/planilla"
)

const (
	OpRegisterInvoice = "register_invoice"
	OpLookupCompany   = "lookup_company"
	OpRemoveInvoice   = "remove_invoice"
	OpProvisional     = "submit_provisional"
	OpFinal           = "submit_final"
	OpLoginAudit      = "login_audit"

	maxReplyBytes = 1 << 20
)

var errNotConfigured = errors.New("webhook url not configured")

// Client talks to the workflow automation service over JSON webhooks.
type Client struct {
	urls       config.WebhookConfig
	httpClient *http.Client
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewClient(cfg config.WebhookConfig, m *metrics.Metrics, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		urls:       cfg,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
		log:        log.Named("webhook"),
	}
}

// RegisterInvoice asks the workflow to record the invoice. A "fail" status comes back as a
// rejection carrying the workflow's message; the returned string is the success message, if any.
func (c *Client) RegisterInvoice(ctx context.Context, t planilla.RegisterTicket) (string, error) {
	var reply registerInvoiceReply
	raw, err := c.post(ctx, OpRegisterInvoice, c.urls.RegisterInvoiceURL, newRegisterInvoiceBody(t))
	if err == nil {
		if jerr := json.Unmarshal(raw, &reply); jerr != nil {
			err = planilla.Unavailable(OpRegisterInvoice, fmt.Errorf("decode reply: %w", jerr))
		}
	}
	if err == nil {
		switch strings.ToLower(strings.TrimSpace(reply.Status)) {
		case replyStatusSuccess:
		case replyStatusFail:
			msg := reply.Message
			if msg == "" {
				msg = fmt.Sprintf("La factura %s ya existe", t.Draft.InvoiceNumber)
			}
			err = planilla.Rejected(OpRegisterInvoice, msg)
		default:
			err = planilla.Unavailable(OpRegisterInvoice, fmt.Errorf("unexpected status %q", reply.Status))
		}
	}
	c.metrics.ObserveWebhook(OpRegisterInvoice, err)
	if err != nil {
		return "", err
	}
	return reply.Message, nil
}

// LookupCompany resolves a tax id to the registered company name.
func (c *Client) LookupCompany(ctx context.Context, taxID string) (string, error) {
	raw, err := c.post(ctx, OpLookupCompany, c.urls.LookupCompanyURL, lookupCompanyBody{TaxID: taxID})
	var name string
	if err == nil {
		var ok bool
		if name, ok = extractCompanyName(raw); !ok {
			c.log.Info("company not found in lookup reply", zap.String("tax_id", taxID), zap.Int("bytes", len(raw)))
			err = planilla.ErrCompanyNotFound
		}
	}
	c.metrics.ObserveWebhook(OpLookupCompany, err)
	return name, err
}

// NotifyInvoiceRemoved tells the workflow an invoice left the batch. An unset URL is a no-op.
func (c *Client) NotifyInvoiceRemoved(ctx context.Context, batchNumber string, inv planilla.Invoice, at time.Time) error {
	if c.urls.RemoveInvoiceURL == "" {
		return nil
	}
	_, err := c.post(ctx, OpRemoveInvoice, c.urls.RemoveInvoiceURL, newRemoveInvoiceBody(batchNumber, inv, at))
	c.metrics.ObserveWebhook(OpRemoveInvoice, err)
	return err
}

// SubmitBatch sends the batch to the provisional or final endpoint.
func (c *Client) SubmitBatch(ctx context.Context, sub planilla.Submission) error {
	op, url := OpProvisional, c.urls.ProvisionalURL
	if sub.Final {
		op, url = OpFinal, c.urls.FinalURL
	}
	_, err := c.post(ctx, op, url, newSubmitBatchBody(sub))
	c.metrics.ObserveWebhook(op, err)
	return err
}

// AuditLogin records a successful login. An unset URL is a no-op.
func (c *Client) AuditLogin(ctx context.Context, user *model.User, at time.Time) error {
	if c.urls.LoginAuditURL == "" {
		return nil
	}
	_, err := c.post(ctx, OpLoginAudit, c.urls.LoginAuditURL, newLoginAuditBody(user, at))
	c.metrics.ObserveWebhook(OpLoginAudit, err)
	return err
}

// post sends body as JSON and returns the reply body of a 2xx response.
// Every failure is a CollaboratorError of kind unavailable.
func (c *Client) post(ctx context.Context, op, url string, body any) ([]byte, error) {
	if url == "" {
		return nil, planilla.Unavailable(op, errNotConfigured)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, planilla.Unavailable(op, fmt.Errorf("encode body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, planilla.Unavailable(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("webhook call failed", zap.String("operation", op), zap.Error(err))
		return nil, planilla.Unavailable(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, planilla.Unavailable(op, fmt.Errorf("read reply: %w", err))
	}

	c.log.Debug("webhook call",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Warn("webhook returned non-2xx", zap.String("operation", op), zap.Int("status", resp.StatusCode))
		return nil, planilla.Unavailable(op, fmt.Errorf("webhook returned %s", resp.Status))
	}
	return raw, nil
}
