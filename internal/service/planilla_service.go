package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"planillas/internal/clock"
	"planillas/internal/metrics"
	"planillas/internal/planilla"
)

// User-facing alert messages.
const (
	msgInvoiceRegistered     = "Factura registrada exitosamente"
	msgRegisterFailed        = "Error al registrar la factura. Intente nuevamente."
	msgInvoiceRemoved        = "Factura eliminada exitosamente"
	msgRemoveNotifyFailed    = "Factura eliminada localmente, pero hubo un error al notificar al servidor"
	msgLookupFailed          = "Error al conectar con el servidor. Intente nuevamente."
	msgMissingBatchNumber    = "Debe ingresar un número de planilla antes de enviar"
	msgEmptyLedger           = "Debe registrar al menos una factura antes de enviar la planilla"
	msgProvisionalSent       = "Planilla provisional enviada exitosamente"
	msgProvisionalFailed     = "Error al enviar la planilla provisional. Intente nuevamente."
	msgFinalSent             = "Planilla enviada exitosamente. No se aceptarán cambios."
	msgFinalFailed           = "Error al enviar la planilla final. Intente nuevamente."
	msgTaxIDRequiredToSearch = "Ingrese un NIT para buscar"
)

// Event types published to the user's websocket clients.
const (
	EventSessionUpdated = "session.updated"
	EventAlertShown     = "alert.shown"
	EventAlertDismissed = "alert.dismissed"
)

var ErrUnknownField = errors.New("unknown form field")

// WorkflowClient is the workflow automation service the batch is registered with.
type WorkflowClient interface {
	RegisterInvoice(ctx context.Context, t planilla.RegisterTicket) (string, error)
	LookupCompany(ctx context.Context, taxID string) (string, error)
	NotifyInvoiceRemoved(ctx context.Context, batchNumber string, inv planilla.Invoice, at time.Time) error
	SubmitBatch(ctx context.Context, sub planilla.Submission) error
}

// Event is a server push message for one user.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventPublisher delivers events to the connected clients of a user.
type EventPublisher interface {
	PublishToUser(userID string, event Event)
}

// DTOs

type FormatRequest struct {
	Field  planilla.Field `json:"field" binding:"required"`
	Value  string         `json:"value"`
	Cursor int            `json:"cursor"`
}

type FormatResponse struct {
	Field  planilla.Field `json:"field"`
	Value  string         `json:"value"`
	Cursor int            `json:"cursor"`
}

type BatchNumberRequest struct {
	BatchNumber string `json:"batch_number"`
}

type InvoiceView struct {
	planilla.Invoice
	DisplayAmount string `json:"display_amount"`
}

type BusyFlags struct {
	Searching          bool `json:"searching"`
	Submitting         bool `json:"submitting"`
	SendingProvisional bool `json:"sending_provisional"`
	SendingFinal       bool `json:"sending_final"`
}

// Snapshot is the read model of a batch session.
type Snapshot struct {
	State               planilla.State  `json:"state"`
	BatchNumber         string          `json:"batch_number"`
	Invoices            []InvoiceView   `json:"invoices"`
	Total               decimal.Decimal `json:"total"`
	DisplayTotal        string          `json:"display_total"`
	Count               int             `json:"invoice_count"`
	Busy                BusyFlags       `json:"busy"`
	ConfirmationPending bool            `json:"confirmation_pending"`
	Alert               *planilla.Alert `json:"alert,omitempty"`
}

type RegisterResult struct {
	Invoice InvoiceView `json:"invoice"`
	// FormDefaults is the cleared form; the batch number is kept.
	FormDefaults FormDefaults `json:"form_defaults"`
	Session      Snapshot     `json:"session"`
}

type FormDefaults struct {
	BatchNumber string `json:"batch_number"`
	planilla.InvoiceForm
}

type CompanyResult struct {
	TaxID string `json:"tax_id"`
	Name  string `json:"name"`
}

type SubmissionResult struct {
	Receipt planilla.Receipt `json:"receipt"`
	Session Snapshot         `json:"session"`
}

// PlanillaService drives the batch registration session of each user.
type PlanillaService interface {
	Snapshot(userID string) Snapshot
	Observations() []string
	Format(req FormatRequest) (FormatResponse, error)
	SetBatchNumber(userID, raw string) (Snapshot, error)
	RegisterInvoice(ctx context.Context, userID string, form planilla.InvoiceForm) (*RegisterResult, error)
	RemoveInvoice(ctx context.Context, userID, invoiceID string) (Snapshot, error)
	LookupCompany(ctx context.Context, userID, taxID string) (*CompanyResult, error)
	SubmitProvisional(ctx context.Context, userID string) (*SubmissionResult, error)
	RequestFinalConfirmation(userID string) (Snapshot, error)
	CancelFinalConfirmation(userID string) Snapshot
	SubmitFinal(ctx context.Context, userID string) (*SubmissionResult, error)
	DismissAlert(userID string, alertID uint64) bool
	Discard(userID string)
	// Wait blocks until pending remove notifications finish or ctx is done.
	Wait(ctx context.Context) error
}

// userSession pairs a session with its alert channel. mu serializes every session mutation;
// collaborator calls run with mu released.
type userSession struct {
	mu      sync.Mutex
	session *planilla.Session
	alerts  *planilla.AlertChannel
}

type planillaService struct {
	workflow  WorkflowClient
	publisher EventPublisher
	clock     clock.Clock
	metrics   *metrics.Metrics
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*userSession

	// background tracks fire-and-forget remove notifications.
	background sync.WaitGroup
}

type PlanillaServiceParams struct {
	Workflow  WorkflowClient
	Publisher EventPublisher
	Clock     clock.Clock
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

// NewPlanillaService returns a new instance of PlanillaService
func NewPlanillaService(p PlanillaServiceParams) PlanillaService {
	if p.Clock == nil {
		p.Clock = clock.Real()
	}
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	return &planillaService{
		workflow:  p.Workflow,
		publisher: p.Publisher,
		clock:     p.Clock,
		metrics:   p.Metrics,
		log:       p.Log.Named("planilla"),
		sessions:  make(map[string]*userSession),
	}
}

func (s *planillaService) entry(userID string) *userSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[userID]; ok {
		return e
	}
	e := &userSession{session: planilla.NewSession(s.clock)}
	e.alerts = planilla.NewAlertChannel(s.clock, func(a planilla.Alert, visible bool) {
		typ := EventAlertShown
		if !visible {
			typ = EventAlertDismissed
		}
		s.publish(userID, Event{Type: typ, Data: a})
	})
	s.sessions[userID] = e
	return e
}

func (s *planillaService) publish(userID string, ev Event) {
	if s.publisher != nil {
		s.publisher.PublishToUser(userID, ev)
	}
}

// snapshotLocked must be called with e.mu held.
func (e *userSession) snapshotLocked() Snapshot {
	sess := e.session
	invoices := sess.Invoices()
	views := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, newInvoiceView(inv))
	}
	total := sess.Total()
	snap := Snapshot{
		State:        sess.State(),
		BatchNumber:  sess.BatchNumber(),
		Invoices:     views,
		Total:        total,
		DisplayTotal: planilla.FormatTotal(total),
		Count:        sess.Count(),
		Busy: BusyFlags{
			Searching:          sess.Busy(planilla.OpSearch),
			Submitting:         sess.Busy(planilla.OpRegister),
			SendingProvisional: sess.Busy(planilla.OpProvisional),
			SendingFinal:       sess.Busy(planilla.OpFinal),
		},
		ConfirmationPending: sess.ConfirmationPending(),
	}
	if a, ok := e.alerts.Current(); ok {
		snap.Alert = &a
	}
	return snap
}

func newInvoiceView(inv planilla.Invoice) InvoiceView {
	return InvoiceView{Invoice: inv, DisplayAmount: inv.DisplayAmount()}
}

// update runs fn under the session lock and publishes the resulting snapshot.
func (s *planillaService) update(userID string, e *userSession, fn func(sess *planilla.Session) error) (Snapshot, error) {
	e.mu.Lock()
	err := fn(e.session)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if err == nil {
		s.publish(userID, Event{Type: EventSessionUpdated, Data: snap})
	}
	return snap, err
}

func (s *planillaService) Snapshot(userID string) Snapshot {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (s *planillaService) Observations() []string {
	return planilla.ObservationOptions()
}

func (s *planillaService) Format(req FormatRequest) (FormatResponse, error) {
	if !req.Field.Valid() {
		return FormatResponse{}, fmt.Errorf("%w: %q", ErrUnknownField, req.Field)
	}
	value, cursor := planilla.Format(req.Field, req.Value, req.Cursor)
	return FormatResponse{Field: req.Field, Value: value, Cursor: cursor}, nil
}

func (s *planillaService) SetBatchNumber(userID, raw string) (Snapshot, error) {
	return s.update(userID, s.entry(userID), func(sess *planilla.Session) error {
		_, err := sess.SetBatchNumber(raw)
		return err
	})
}

func (s *planillaService) RegisterInvoice(ctx context.Context, userID string, form planilla.InvoiceForm) (*RegisterResult, error) {
	draft, err := planilla.ValidateInvoiceForm(form)
	if err != nil {
		return nil, err
	}

	e := s.entry(userID)
	var ticket planilla.RegisterTicket
	if _, err := s.update(userID, e, func(sess *planilla.Session) error {
		var berr error
		ticket, berr = sess.BeginRegister(draft)
		return berr
	}); err != nil {
		if errors.Is(err, planilla.ErrDuplicateInvoice) {
			e.alerts.ShowError(fmt.Sprintf("Ya existe una factura registrada con el número %s para %s", draft.InvoiceNumber, draft.PayeeName))
		}
		return nil, err
	}

	// The call outlives the request: a client that goes away does not cancel the registration.
	message, callErr := s.workflow.RegisterInvoice(context.WithoutCancel(ctx), ticket)

	var inv planilla.Invoice
	snap, err := s.update(userID, e, func(sess *planilla.Session) error {
		var cerr error
		inv, cerr = sess.CompleteRegister(ticket, callErr)
		return cerr
	})
	if err != nil {
		s.alertCollaboratorFailure(e, err, msgRegisterFailed)
		return nil, err
	}

	s.metrics.InvoiceRegistered()
	if message == "" {
		message = msgInvoiceRegistered
	}
	alert := e.alerts.ShowSuccess(message)
	snap.Alert = &alert

	return &RegisterResult{
		Invoice:      newInvoiceView(inv),
		FormDefaults: FormDefaults{BatchNumber: snap.BatchNumber},
		Session:      snap,
	}, nil
}

// RemoveInvoice drops the invoice locally, then notifies the workflow in the background.
func (s *planillaService) RemoveInvoice(ctx context.Context, userID, invoiceID string) (Snapshot, error) {
	e := s.entry(userID)
	var (
		removed     planilla.Invoice
		batchNumber string
	)
	snap, err := s.update(userID, e, func(sess *planilla.Session) error {
		batchNumber = sess.BatchNumber()
		var rerr error
		removed, rerr = sess.RemoveInvoice(invoiceID)
		return rerr
	})
	if err != nil {
		if errors.Is(err, planilla.ErrInvoiceNotFound) {
			// the client only offers ids it was given
			s.log.Error("remove of unknown invoice", zap.String("user_id", userID), zap.String("invoice_id", invoiceID))
		}
		return snap, err
	}

	s.metrics.InvoiceRemoved()
	alert := e.alerts.ShowSuccess(msgInvoiceRemoved)
	snap.Alert = &alert

	notifyCtx := context.WithoutCancel(ctx)
	at := s.clock.Now()
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.workflow.NotifyInvoiceRemoved(notifyCtx, batchNumber, removed, at); err != nil {
			s.log.Warn("invoice removed locally but the workflow was not notified",
				zap.String("user_id", userID),
				zap.String("invoice_number", removed.InvoiceNumber),
				zap.Error(err),
			)
			e.alerts.ShowError(msgRemoveNotifyFailed)
		}
	}()

	return snap, nil
}

func (s *planillaService) LookupCompany(ctx context.Context, userID, rawTaxID string) (*CompanyResult, error) {
	taxID, err := validateLookupTaxID(rawTaxID)
	if err != nil {
		return nil, err
	}

	e := s.entry(userID)
	var generation uint64
	if _, err := s.update(userID, e, func(sess *planilla.Session) error {
		var berr error
		generation, berr = sess.BeginSearch()
		return berr
	}); err != nil {
		return nil, err
	}

	name, callErr := s.workflow.LookupCompany(context.WithoutCancel(ctx), taxID)

	_, _ = s.update(userID, e, func(sess *planilla.Session) error {
		sess.EndSearch(generation)
		return nil
	})

	if callErr != nil {
		if errors.Is(callErr, planilla.ErrCompanyNotFound) {
			e.alerts.ShowError(fmt.Sprintf("El NIT %s no existe en la base de datos", taxID))
		} else {
			e.alerts.ShowError(msgLookupFailed)
		}
		return nil, callErr
	}
	return &CompanyResult{TaxID: taxID, Name: name}, nil
}

func validateLookupTaxID(raw string) (string, error) {
	if planilla.DigitsOnly(raw) == "" {
		return "", planilla.ValidationErrors{{
			Field: planilla.FieldTaxID,
			Kind:  planilla.ErrRequiredField,
			Msg:   msgTaxIDRequiredToSearch,
		}}
	}
	taxID, err := planilla.ValidateTaxID(raw)
	if err != nil {
		var fe *planilla.FieldError
		if errors.As(err, &fe) {
			return "", planilla.ValidationErrors{fe}
		}
		return "", err
	}
	return taxID, nil
}

func (s *planillaService) SubmitProvisional(ctx context.Context, userID string) (*SubmissionResult, error) {
	return s.submit(ctx, userID, false)
}

func (s *planillaService) RequestFinalConfirmation(userID string) (Snapshot, error) {
	e := s.entry(userID)
	snap, err := s.update(userID, e, func(sess *planilla.Session) error {
		return sess.RequestFinalConfirmation()
	})
	if err != nil {
		s.alertPrecondition(e, err)
	}
	return snap, err
}

func (s *planillaService) CancelFinalConfirmation(userID string) Snapshot {
	snap, _ := s.update(userID, s.entry(userID), func(sess *planilla.Session) error {
		sess.CancelFinalConfirmation()
		return nil
	})
	return snap
}

func (s *planillaService) SubmitFinal(ctx context.Context, userID string) (*SubmissionResult, error) {
	return s.submit(ctx, userID, true)
}

func (s *planillaService) submit(ctx context.Context, userID string, final bool) (*SubmissionResult, error) {
	e := s.entry(userID)
	var sub planilla.Submission
	if _, err := s.update(userID, e, func(sess *planilla.Session) error {
		var berr error
		sub, berr = sess.BeginSubmission(final)
		return berr
	}); err != nil {
		s.alertPrecondition(e, err)
		return nil, err
	}

	callErr := s.workflow.SubmitBatch(context.WithoutCancel(ctx), sub)
	s.metrics.ObserveSubmission(final, callErr)

	var receipt planilla.Receipt
	snap, err := s.update(userID, e, func(sess *planilla.Session) error {
		var cerr error
		receipt, cerr = sess.CompleteSubmission(sub, callErr)
		return cerr
	})

	okMsg, failMsg := msgProvisionalSent, msgProvisionalFailed
	if final {
		okMsg, failMsg = msgFinalSent, msgFinalFailed
	}
	if err != nil {
		s.alertCollaboratorFailure(e, err, failMsg)
		return nil, err
	}

	s.log.Info("batch submitted",
		zap.String("user_id", userID),
		zap.String("batch_number", receipt.BatchNumber),
		zap.Bool("final", final),
		zap.Int("invoice_count", receipt.Count),
		zap.String("total", receipt.Total.String()),
	)
	alert := e.alerts.ShowSuccess(okMsg)
	snap.Alert = &alert
	return &SubmissionResult{Receipt: receipt, Session: snap}, nil
}

func (s *planillaService) DismissAlert(userID string, alertID uint64) bool {
	return s.entry(userID).alerts.Dismiss(alertID)
}

// Discard tears the user's session down; completions still in flight are dropped.
func (s *planillaService) Discard(userID string) {
	s.mu.Lock()
	e, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.session.Close()
	e.mu.Unlock()
	e.alerts.Close()
}

// alertPrecondition surfaces the submission preconditions the user can fix.
func (s *planillaService) alertPrecondition(e *userSession, err error) {
	switch {
	case errors.Is(err, planilla.ErrMissingBatchNumber):
		e.alerts.ShowError(msgMissingBatchNumber)
	case errors.Is(err, planilla.ErrEmptyLedger):
		e.alerts.ShowError(msgEmptyLedger)
	}
}

// alertCollaboratorFailure shows the collaborator's own message on rejection and fallback otherwise.
// Stale completions belong to a session the user no longer sees and raise nothing.
func (s *planillaService) alertCollaboratorFailure(e *userSession, err error, fallback string) {
	if errors.Is(err, planilla.ErrStaleSession) {
		return
	}
	var cerr *planilla.CollaboratorError
	if errors.As(err, &cerr) && errors.Is(err, planilla.ErrCollaboratorRejected) && cerr.Message != "" {
		e.alerts.ShowError(cerr.Message)
		return
	}
	e.alerts.ShowError(fallback)
}

func (s *planillaService) Wait(ctx context.Context) error {
	return waitBackground(ctx, &s.background)
}
