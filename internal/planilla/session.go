package planilla

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"planillas/internal/clock"
)

// State is the lifecycle state of a batch session.
type State string

const (
	StateEditing                State = "editing"
	StateProvisionallySubmitted State = "provisionally_submitted"
	StateFinallySubmitted       State = "finally_submitted"
)

// Operation names a collaborator-backed action guarded by its own busy flag.
type Operation string

const (
	OpSearch      Operation = "searching"
	OpRegister    Operation = "submitting"
	OpProvisional Operation = "sending_provisional"
	OpFinal       Operation = "sending_final"
)

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateEditing, StateProvisionallySubmitted:
		return to == StateEditing || to == StateProvisionallySubmitted || to == StateFinallySubmitted
	default:
		return false
	}
}

// Session is the batch registration session of one user.
//
// It is not safe for concurrent use; the owner serializes access. Operations that call a
// collaborator are split in Begin/Complete halves so the owner can release its lock during
// the call. Every Complete checks the generation captured by Begin and refuses to touch a
// session that was reset or closed in the meantime.
type Session struct {
	clock          clock.Clock
	batchNumber    string
	state          State
	ledger         Ledger
	busy           map[Operation]bool
	confirmPending bool
	generation     uint64
	revision       uint64
	closed         bool
}

func NewSession(clk clock.Clock) *Session {
	if clk == nil {
		clk = clock.Real()
	}
	return &Session{
		clock: clk,
		state: StateEditing,
		busy:  make(map[Operation]bool),
	}
}

func (s *Session) State() State              { return s.state }
func (s *Session) BatchNumber() string       { return s.batchNumber }
func (s *Session) Generation() uint64        { return s.generation }
func (s *Session) Total() decimal.Decimal    { return s.ledger.Total() }
func (s *Session) Count() int                { return s.ledger.Count() }
func (s *Session) Invoices() []Invoice       { return s.ledger.Invoices() }
func (s *Session) Busy(op Operation) bool    { return s.busy[op] }
func (s *Session) ConfirmationPending() bool { return s.confirmPending }

// SetBatchNumber stores the digits of raw as the batch number.
func (s *Session) SetBatchNumber(raw string) (string, error) {
	if err := s.checkEditable(); err != nil {
		return "", err
	}
	value := DigitsOnly(raw)
	if value != s.batchNumber {
		s.batchNumber = value
		s.touch()
	}
	return value, nil
}

// RegisterTicket captures an invoice registration between its Begin and Complete halves.
type RegisterTicket struct {
	Draft       Draft
	BatchNumber string
	At          time.Time
	generation  uint64
}

// BeginRegister rejects duplicates before any collaborator call and marks the register operation busy.
func (s *Session) BeginRegister(d Draft) (RegisterTicket, error) {
	if err := s.checkEditable(); err != nil {
		return RegisterTicket{}, err
	}
	if s.ledger.Contains(d.InvoiceNumber, d.PayeeName) {
		return RegisterTicket{}, &InvoiceError{Kind: ErrDuplicateInvoice, InvoiceNumber: d.InvoiceNumber, PayeeName: d.PayeeName}
	}
	if err := s.acquire(OpRegister); err != nil {
		return RegisterTicket{}, err
	}
	return RegisterTicket{
		Draft:       d,
		BatchNumber: s.batchNumber,
		At:          s.clock.Now(),
		generation:  s.generation,
	}, nil
}

// CompleteRegister adds the invoice when the collaborator accepted it (callErr == nil).
func (s *Session) CompleteRegister(t RegisterTicket, callErr error) (Invoice, error) {
	if err := s.checkGeneration(t.generation); err != nil {
		return Invoice{}, err
	}
	s.release(OpRegister)
	if callErr != nil {
		return Invoice{}, callErr
	}
	inv := Invoice{
		ID:              uuid.NewString(),
		InvoiceNumber:   t.Draft.InvoiceNumber,
		PayeeName:       t.Draft.PayeeName,
		AmountToPay:     t.Draft.AmountToPay,
		ObservationCode: t.Draft.ObservationCode,
		TaxID:           t.Draft.TaxID,
		RegisteredAt:    t.At,
	}
	if err := s.ledger.Add(inv); err != nil {
		return Invoice{}, err
	}
	s.touch()
	return inv, nil
}

// RemoveInvoice drops an invoice locally. Local removal is authoritative; notifying the
// collaborator is left to the caller and never rolls this back.
func (s *Session) RemoveInvoice(id string) (Invoice, error) {
	if err := s.checkEditable(); err != nil {
		return Invoice{}, err
	}
	inv, err := s.ledger.Remove(id)
	if err != nil {
		return Invoice{}, err
	}
	s.touch()
	return inv, nil
}

// BeginSearch marks a company lookup in flight.
func (s *Session) BeginSearch() (uint64, error) {
	if s.closed {
		return 0, ErrStaleSession
	}
	if err := s.acquire(OpSearch); err != nil {
		return 0, err
	}
	return s.generation, nil
}

func (s *Session) EndSearch(generation uint64) {
	if generation == s.generation && !s.closed {
		s.release(OpSearch)
	}
}

// Submission is the snapshot of the batch sent to the workflow service.
type Submission struct {
	BatchNumber string
	Invoices    []Invoice
	Total       decimal.Decimal
	Count       int
	Final       bool
	At          time.Time
	generation  uint64
	revision    uint64
}

// Receipt summarizes a successful submission.
type Receipt struct {
	BatchNumber string          `json:"batch_number"`
	Count       int             `json:"invoice_count"`
	Total       decimal.Decimal `json:"total"`
	Final       bool            `json:"final"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// RequestFinalConfirmation is the first step of the irreversible final submission.
func (s *Session) RequestFinalConfirmation() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.busy[OpFinal] || s.busy[OpRegister] {
		return ErrBusy
	}
	if err := s.checkSubmittable(); err != nil {
		return err
	}
	s.confirmPending = true
	return nil
}

func (s *Session) CancelFinalConfirmation() {
	s.confirmPending = false
}

// BeginSubmission validates the preconditions of a provisional or final submission and
// snapshots the batch. On error nothing changes and no collaborator call must be made.
func (s *Session) BeginSubmission(final bool) (Submission, error) {
	if err := s.checkOpen(); err != nil {
		return Submission{}, err
	}
	op := submissionOp(final)
	if s.busy[op] || (final && s.busy[OpRegister]) {
		return Submission{}, ErrBusy
	}
	if final && !s.confirmPending {
		return Submission{}, ErrConfirmationRequired
	}
	if err := s.checkSubmittable(); err != nil {
		return Submission{}, err
	}
	if final {
		s.confirmPending = false
	}
	s.busy[op] = true
	return Submission{
		BatchNumber: s.batchNumber,
		Invoices:    s.ledger.Invoices(),
		Total:       s.ledger.Total(),
		Count:       s.ledger.Count(),
		Final:       final,
		At:          s.clock.Now(),
		generation:  s.generation,
		revision:    s.revision,
	}, nil
}

// CompleteSubmission applies the collaborator outcome. A failed call leaves the session as it
// was before BeginSubmission. A provisional submission only marks the batch submitted when it
// was not changed during the call. A successful final submission discards the batch and starts
// a fresh editing session.
func (s *Session) CompleteSubmission(sub Submission, callErr error) (Receipt, error) {
	if err := s.checkGeneration(sub.generation); err != nil {
		return Receipt{}, err
	}
	s.release(submissionOp(sub.Final))
	if callErr != nil {
		return Receipt{}, callErr
	}

	to := StateProvisionallySubmitted
	if sub.Final {
		to = StateFinallySubmitted
	}
	if sub.Final || sub.revision == s.revision {
		if err := s.transition(to); err != nil {
			return Receipt{}, err
		}
	}

	receipt := Receipt{
		BatchNumber: sub.BatchNumber,
		Count:       sub.Count,
		Total:       sub.Total,
		Final:       sub.Final,
		SubmittedAt: sub.At,
	}
	if sub.Final {
		s.reset()
	}
	return receipt, nil
}

// Close tears the session down; in-flight completions will be refused.
func (s *Session) Close() {
	s.closed = true
	s.generation++
}

func (s *Session) reset() {
	s.batchNumber = ""
	s.ledger.Reset()
	s.state = StateEditing
	s.busy = make(map[Operation]bool)
	s.confirmPending = false
	s.generation++
}

func (s *Session) transition(to State) error {
	if !isAllowedTransition(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, to)
	}
	s.state = to
	return nil
}

// touch records a change and moves a provisionally submitted batch back to editing.
func (s *Session) touch() {
	s.revision++
	if s.state == StateProvisionallySubmitted {
		_ = s.transition(StateEditing)
	}
}

func (s *Session) checkOpen() error {
	if s.closed {
		return ErrStaleSession
	}
	if s.state == StateFinallySubmitted {
		return fmt.Errorf("%w: session is %s", ErrInvalidTransition, s.state)
	}
	return nil
}

// checkEditable also freezes the batch while its final submission is in flight.
func (s *Session) checkEditable() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.busy[OpFinal] {
		return ErrBusy
	}
	return nil
}

func (s *Session) checkSubmittable() error {
	if s.batchNumber == "" {
		return ErrMissingBatchNumber
	}
	if s.ledger.Count() == 0 {
		return ErrEmptyLedger
	}
	return nil
}

func (s *Session) checkGeneration(generation uint64) error {
	if s.closed || generation != s.generation {
		return ErrStaleSession
	}
	return nil
}

func (s *Session) acquire(op Operation) error {
	if s.busy[op] {
		return ErrBusy
	}
	s.busy[op] = true
	return nil
}

func (s *Session) release(op Operation) {
	delete(s.busy, op)
}

func submissionOp(final bool) Operation {
	if final {
		return OpFinal
	}
	return OpProvisional
}
