package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planillas/internal/middleware"
	"planillas/internal/model"
	"planillas/internal/planilla"
	"planillas/internal/service"
	"planillas/pkg/response"
)

type PlanillaHandler struct {
	planillaService service.PlanillaService
	auth            *middleware.Authenticator
	log             *zap.Logger
}

func NewPlanillaHandler(planillaService service.PlanillaService, auth *middleware.Authenticator, log *zap.Logger) *PlanillaHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlanillaHandler{planillaService: planillaService, auth: auth, log: log.Named("planilla_handler")}
}

func (h *PlanillaHandler) RegisterRoutes(router *gin.RouterGroup) {
	p := router.Group("/api/planilla", h.auth.RequireRole(model.RoleAdmin, model.RoleEditor))
	{
		p.GET("", h.GetSession)
		p.GET("/observations", h.GetObservations)
		p.POST("/format", h.FormatField)
		p.PUT("/batch-number", h.SetBatchNumber)
		p.POST("/invoices", h.RegisterInvoice)
		p.DELETE("/invoices/:id", h.RemoveInvoice)
		p.GET("/company", h.LookupCompany)
		p.POST("/submit/provisional", h.SubmitProvisional)
		p.POST("/submit/final/confirm", h.RequestFinalConfirmation)
		p.DELETE("/submit/final/confirm", h.CancelFinalConfirmation)
		p.POST("/submit/final", h.SubmitFinal)
		p.DELETE("/alert/:id", h.DismissAlert)
	}
}

// GetSession returns the caller's batch session, creating an empty one on first use
// @Summary      Get batch session
// @Tags         planilla
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.Snapshot}
// @Failure      401  {object}  response.Response
// @Router       /api/planilla [get]
func (h *PlanillaHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.planillaService.Snapshot(middleware.UserID(c))))
}

// GetObservations lists the accepted observation codes
// @Summary      List observation options
// @Tags         planilla
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /api/planilla/observations [get]
func (h *PlanillaHandler) GetObservations(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.planillaService.Observations()))
}

// FormatField normalizes a form input as the user types
// @Summary      Format a form field
// @Description  Applies the live formatting rule of the field and returns the new value and cursor
// @Tags         planilla
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.FormatRequest  true  "Field value"
// @Success      200      {object}  response.Response{data=service.FormatResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/planilla/format [post]
func (h *PlanillaHandler) FormatField(c *gin.Context) {
	var req service.FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.planillaService.Format(req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// SetBatchNumber stores the batch number of the session
// @Summary      Set batch number
// @Tags         planilla
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BatchNumberRequest  true  "Batch number"
// @Success      200      {object}  response.Response{data=service.Snapshot}
// @Failure      409      {object}  response.Response
// @Router       /api/planilla/batch-number [put]
func (h *PlanillaHandler) SetBatchNumber(c *gin.Context) {
	var req service.BatchNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.planillaService.SetBatchNumber(middleware.UserID(c), req.BatchNumber)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, snap))
}

// RegisterInvoice validates the form and registers the invoice with the workflow service
// @Summary      Register invoice
// @Description  Validates every field, rejects duplicates, registers remotely and adds the invoice to the batch
// @Tags         planilla
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      planilla.InvoiceForm  true  "Invoice form"
// @Success      201      {object}  response.Response{data=service.RegisterResult}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /api/planilla/invoices [post]
func (h *PlanillaHandler) RegisterInvoice(c *gin.Context) {
	var form planilla.InvoiceForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.planillaService.RegisterInvoice(c.Request.Context(), middleware.UserID(c), form)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// RemoveInvoice drops an invoice from the batch
// @Summary      Remove invoice
// @Description  Removes locally and notifies the workflow service in the background
// @Tags         planilla
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.Snapshot}
// @Failure      404  {object}  response.Response
// @Router       /api/planilla/invoices/{id} [delete]
func (h *PlanillaHandler) RemoveInvoice(c *gin.Context) {
	snap, err := h.planillaService.RemoveInvoice(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, snap))
}

// LookupCompany resolves the company name of a tax id
// @Summary      Look up company
// @Tags         planilla
// @Security     BearerAuth
// @Produce      json
// @Param        tax_id  query     string  true  "Tax ID (NIT)"
// @Success      200     {object}  response.Response{data=service.CompanyResult}
// @Failure      404     {object}  response.Response
// @Failure      422     {object}  response.Response
// @Failure      502     {object}  response.Response
// @Router       /api/planilla/company [get]
func (h *PlanillaHandler) LookupCompany(c *gin.Context) {
	res, err := h.planillaService.LookupCompany(c.Request.Context(), middleware.UserID(c), c.Query("tax_id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// SubmitProvisional sends the batch for review; it stays editable
// @Summary      Submit provisional batch
// @Tags         planilla
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SubmissionResult}
// @Failure      409  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/planilla/submit/provisional [post]
func (h *PlanillaHandler) SubmitProvisional(c *gin.Context) {
	res, err := h.planillaService.SubmitProvisional(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// RequestFinalConfirmation arms the final submission
// @Summary      Request final confirmation
// @Tags         planilla
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.Snapshot}
// @Failure      409  {object}  response.Response
// @Router       /api/planilla/submit/final/confirm [post]
func (h *PlanillaHandler) RequestFinalConfirmation(c *gin.Context) {
	snap, err := h.planillaService.RequestFinalConfirmation(middleware.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, snap))
}

// CancelFinalConfirmation disarms the final submission
// @Summary      Cancel final confirmation
// @Tags         planilla
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.Snapshot}
// @Router       /api/planilla/submit/final/confirm [delete]
func (h *PlanillaHandler) CancelFinalConfirmation(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.planillaService.CancelFinalConfirmation(middleware.UserID(c))))
}

// SubmitFinal commits the batch; on success the session starts over empty
// @Summary      Submit final batch
// @Description  Irreversible. Requires a prior confirmation request.
// @Tags         planilla
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SubmissionResult}
// @Failure      409  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/planilla/submit/final [post]
func (h *PlanillaHandler) SubmitFinal(c *gin.Context) {
	res, err := h.planillaService.SubmitFinal(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// DismissAlert hides the visible alert if it is still the one with this id
// @Summary      Dismiss alert
// @Tags         planilla
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Alert ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /api/planilla/alert/{id} [delete]
func (h *PlanillaHandler) DismissAlert(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid alert ID"))
		return
	}
	dismissed := h.planillaService.DismissAlert(middleware.UserID(c), id)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"dismissed": dismissed}))
}
