package handler

import (
	"net/http"

	"pharmacare/internal/dto"
	"pharmacare/internal/service"

	"github.com/gin-gonic/gin"
)

type BillsHandler struct{ svc service.BillService }

func NewBillsHandler(svc service.BillService) *BillsHandler { return &BillsHandler{svc: svc} }

// Create godoc
// @Summary      Create a bill
// @Description  Locks the referenced inventory rows, decrements stock and stores the bill in one transaction. A receipt is emailed when customerEmail is set.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateBillRequest true "Bill"
// @Success      201  {object} dto.BillResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /api/bills [post]
func (h *BillsHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.CreateBillRequest
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

// Get godoc
// @Summary      Get a bill
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Bill UUID"
// @Success      200 {object} dto.BillResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/bills/{id} [get]
func (h *BillsHandler) Get(c *gin.Context) {
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

// List godoc
// @Summary      List bills of a pharmacy
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        pharmacyId query string true  "Pharmacy UUID"
// @Param        page       query int    false "Page (default 1)"
// @Param        limit      query int    false "Page size (default 20, max 200)"
// @Success      200 {object} dto.BillListResponse
// @Router       /api/bills [get]
func (h *BillsHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var filter dto.BillFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), p, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SalesSummary godoc
// @Summary      Paid sales in a period
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        pharmacyId query string true  "Pharmacy UUID"
// @Param        period     query string false "day, week, month or year (default day)"
// @Success      200 {object} dto.SalesSummary
// @Router       /api/analytics/sales/summary [get]
func (h *BillsHandler) SalesSummary(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pharmacyID, ok := uuidQuery(c, "pharmacyId")
	if !ok {
		return
	}
	resp, err := h.svc.SalesSummary(c.Request.Context(), p, pharmacyID, c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
