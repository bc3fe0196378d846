package handler

import (
	"net/http"

	"pharmacare/internal/dto"
	"pharmacare/internal/service"

	"github.com/gin-gonic/gin"
)

type MedicationsHandler struct{ svc service.MedicationService }

func NewMedicationsHandler(svc service.MedicationService) *MedicationsHandler {
	return &MedicationsHandler{svc: svc}
}

// List godoc
// @Summary List the caller's medications
// @Tags medications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MedicationResponse
// @Router /api/medications [get]
func (h *MedicationsHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MedicationsHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Add a medication
// @Tags medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MedicationRequest true "Medication"
// @Success 201 {object} dto.MedicationResponse
// @Router /api/medications [post]
func (h *MedicationsHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.MedicationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MedicationsHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.MedicationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), p, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MedicationsHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Reminders ────────────────────────────────────────────────────────────────

type RemindersHandler struct{ svc service.ReminderService }

func NewRemindersHandler(svc service.ReminderService) *RemindersHandler {
	return &RemindersHandler{svc: svc}
}

// List godoc
// @Summary List the caller's reminders
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ReminderResponse
// @Router /reminders [get]
func (h *RemindersHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pending godoc
// @Summary Open reminders in a time range
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param start query string false "RFC 3339 start (default now)"
// @Param end   query string false "RFC 3339 end (default start+24h)"
// @Success 200 {array} dto.ReminderResponse
// @Router /reminders/pending [get]
func (h *RemindersHandler) Pending(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var r dto.PendingRange
	if !bindQuery(c, &r) {
		return
	}
	resp, err := h.svc.Pending(c.Request.Context(), p, r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RemindersHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Schedule a reminder for one of the caller's medications
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ReminderRequest true "Reminder"
// @Success 201 {object} dto.ReminderResponse
// @Failure 404 {object} apierror.APIError
// @Router /reminders [post]
func (h *RemindersHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.ReminderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RemindersHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ReminderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), p, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary Mark a reminder as taken
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reminder UUID"
// @Success 200 {object} dto.ReminderResponse
// @Router /reminders/{id}/complete [post]
func (h *RemindersHandler) Complete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Complete(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RemindersHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
