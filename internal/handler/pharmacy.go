package handler

import (
	"net/http"

	"pharmacare/internal/dto"
	"pharmacare/internal/service"

	"github.com/gin-gonic/gin"
)

type PharmacyHandler struct{ svc service.PharmacyService }

func NewPharmacyHandler(svc service.PharmacyService) *PharmacyHandler {
	return &PharmacyHandler{svc: svc}
}

// ListMine godoc
// @Summary Pharmacies the caller works at
// @Tags pharmacies
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PharmacyResponse
// @Router /api/pharmacies/mine [get]
func (h *PharmacyHandler) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListMine(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a pharmacy
// @Tags pharmacies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pharmacy UUID"
// @Success 200 {object} dto.PharmacyResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /api/pharmacies/{id} [get]
func (h *PharmacyHandler) Get(c *gin.Context) {
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

// ListStaff godoc
// @Summary List pharmacy staff
// @Tags pharmacies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pharmacy UUID"
// @Success 200 {array} dto.PharmacyStaffResponse
// @Failure 403 {object} apierror.APIError
// @Router /api/pharmacies/{id}/staff [get]
func (h *PharmacyHandler) ListStaff(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListStaff(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddStaff godoc
// @Summary Add an existing user as staff
// @Tags pharmacies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pharmacy UUID"
// @Param body body dto.AddStaffRequest true "User email and staff role"
// @Success 201 {object} dto.PharmacyStaffResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /api/pharmacies/{id}/staff [post]
func (h *PharmacyHandler) AddStaff(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.AddStaffRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddStaff(c.Request.Context(), p, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeactivateStaff godoc
// @Summary Deactivate a staff member
// @Tags pharmacies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pharmacy UUID"
// @Param staffId path string true "Staff UUID"
// @Success 200 {object} dto.PharmacyStaffResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/pharmacies/{id}/staff/{staffId}/deactivate [patch]
func (h *PharmacyHandler) DeactivateStaff(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	staffID, ok := uuidParam(c, "staffId")
	if !ok {
		return
	}
	resp, err := h.svc.DeactivateStaff(c.Request.Context(), p, id, staffID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
