package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planillas/internal/planilla"
	"planillas/internal/service"
	"planillas/pkg/response"
)

const msgInvalidForm = "Revise los campos marcados del formulario"

// conflicts maps session errors the user can resolve to their response code.
var conflicts = []struct {
	err  error
	code string
}{
	{planilla.ErrDuplicateInvoice, "duplicate_invoice"},
	{planilla.ErrBusy, "busy"},
	{planilla.ErrConfirmationRequired, "confirmation_required"},
	{planilla.ErrMissingBatchNumber, "missing_batch_number"},
	{planilla.ErrEmptyLedger, "empty_ledger"},
	{planilla.ErrInvalidTransition, "invalid_state"},
	{planilla.ErrStaleSession, "stale_session"},
}

// writeError translates planilla and service errors into the response envelope.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var verrs planilla.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, response.Invalid(http.StatusUnprocessableEntity, msgInvalidForm, verrs.Messages()))
		return
	}
	var ferr *planilla.FieldError
	if errors.As(err, &ferr) {
		c.JSON(http.StatusUnprocessableEntity, response.Invalid(http.StatusUnprocessableEntity, msgInvalidForm, planilla.ValidationErrors{ferr}.Messages()))
		return
	}

	var cerr *planilla.CollaboratorError
	switch {
	case errors.As(err, &cerr) && errors.Is(err, planilla.ErrCollaboratorRejected):
		msg := cerr.Message
		if msg == "" {
			msg = err.Error()
		}
		c.JSON(http.StatusConflict, response.Coded(http.StatusConflict, "collaborator_rejected", msg))
		return
	case errors.Is(err, planilla.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, response.Coded(http.StatusNotFound, "company_not_found", err.Error()))
		return
	case errors.Is(err, planilla.ErrCollaboratorUnavailable):
		log.Warn("workflow service unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, response.Coded(http.StatusBadGateway, "collaborator_unavailable", err.Error()))
		return
	case errors.Is(err, planilla.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, response.Coded(http.StatusNotFound, "invoice_not_found", err.Error()))
		return
	case errors.Is(err, service.ErrUnknownField):
		c.JSON(http.StatusBadRequest, response.Coded(http.StatusBadRequest, "unknown_field", err.Error()))
		return
	}

	for _, m := range conflicts {
		if errors.Is(err, m.err) {
			c.JSON(http.StatusConflict, response.Coded(http.StatusConflict, m.code, err.Error()))
			return
		}
	}

	log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}
