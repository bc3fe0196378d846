package handler

import (
	"net/http"

	"pharmacare/internal/dto"
	"pharmacare/internal/service"

	"github.com/gin-gonic/gin"
)

type DonationsHandler struct{ svc service.DonationService }

func NewDonationsHandler(svc service.DonationService) *DonationsHandler {
	return &DonationsHandler{svc: svc}
}

// List godoc
// @Summary List the caller's donations
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.DonationResponse
// @Router /donations [get]
func (h *DonationsHandler) List(c *gin.Context) {
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
// @Summary List the caller's pending donations
// @Tags donations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.DonationResponse
// @Router /donations/pending [get]
func (h *DonationsHandler) Pending(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	resp, err := h.svc.Pending(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DonationsHandler) Get(c *gin.Context) {
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
// @Summary Offer a donation
// @Description The donation always starts PENDING.
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.DonationRequest true "Donation"
// @Success 201 {object} dto.DonationResponse
// @Router /donations [post]
func (h *DonationsHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.DonationRequest
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

// Update godoc
// @Summary Edit a donation or move it out of PENDING
// @Tags donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Donation UUID"
// @Param body body dto.DonationRequest true "Donation"
// @Success 200 {object} dto.DonationResponse
// @Failure 400 {object} apierror.APIError
// @Router /donations/{id} [put]
func (h *DonationsHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.DonationRequest
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

// Delete godoc
// @Summary Withdraw a pending donation
// @Tags donations
// @Security BearerAuth
// @Param id path string true "Donation UUID"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /donations/{id} [delete]
func (h *DonationsHandler) Delete(c *gin.Context) {
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
