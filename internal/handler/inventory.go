package handler

import (
	"net/http"
	"strconv"

	"pharmacare/internal/dto"
	"pharmacare/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// List godoc
// @Summary List inventory items
// @Description The first non-empty filter wins: search, type, lowStock, expiring. Without filters active items are listed.
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param pharmacyId path string true "Pharmacy UUID"
// @Param search query string false "Name search"
// @Param type query string false "Medication type"
// @Param lowStock query bool false "Only items at or below minimum stock"
// @Param expiring query bool false "Only items expiring within 30 days"
// @Success 200 {array} dto.InventoryResponse
// @Router /api/inventories/{pharmacyId}/items [get]
func (h *InventoryHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pharmacyID, ok := uuidParam(c, "pharmacyId")
	if !ok {
		return
	}
	var filter dto.InventoryFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), p, pharmacyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get an inventory item
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param pharmacyId path string true "Pharmacy UUID"
// @Param id path string true "Inventory UUID"
// @Success 200 {object} dto.InventoryResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/inventories/{pharmacyId}/items/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pharmacyID, ok := uuidParam(c, "pharmacyId")
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), p, pharmacyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Add an inventory item
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pharmacyId path string true "Pharmacy UUID"
// @Param body body dto.InventoryRequest true "Item"
// @Success 201 {object} dto.InventoryResponse
// @Failure 403 {object} apierror.APIError
// @Router /api/inventories/{pharmacyId}/items [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pharmacyID, ok := uuidParam(c, "pharmacyId")
	if !ok {
		return
	}
	var req dto.InventoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), p, pharmacyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update godoc
// @Summary Update an inventory item
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pharmacyId path string true "Pharmacy UUID"
// @Param id path string true "Inventory UUID"
// @Param body body dto.InventoryRequest true "Item"
// @Success 200 {object} dto.InventoryResponse
// @Router /api/inventories/{pharmacyId}/items/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pharmacyID, ok := uuidParam(c, "pharmacyId")
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.InventoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), p, pharmacyID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Deactivate an inventory item
// @Tags inventory
// @Security BearerAuth
// @Param pharmacyId path string true "Pharmacy UUID"
// @Param id path string true "Inventory UUID"
// @Success 204
// @Router /api/inventories/{pharmacyId}/items/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pharmacyID, ok := uuidParam(c, "pharmacyId")
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p, pharmacyID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Movements godoc
// @Summary Stock movement history of an item
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param pharmacyId path string true "Pharmacy UUID"
// @Param id path string true "Inventory UUID"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} dto.StockMovementResponse
// @Router /api/inventories/{pharmacyId}/items/{id}/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pharmacyID, ok := uuidParam(c, "pharmacyId")
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	resp, err := h.svc.Movements(c.Request.Context(), p, pharmacyID, id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stats godoc
// @Summary Inventory counters
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param pharmacyId query string true "Pharmacy UUID"
// @Success 200 {object} dto.InventoryStats
// @Router /api/inventories/stats [get]
func (h *InventoryHandler) Stats(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pharmacyID, ok := uuidQuery(c, "pharmacyId")
	if !ok {
		return
	}
	resp, err := h.svc.Stats(c.Request.Context(), p, pharmacyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Overview godoc
// @Summary Stock overview chart data
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param pharmacyId query string true "Pharmacy UUID"
// @Success 200 {array} dto.OverviewEntry
// @Router /api/inventories/overview [get]
func (h *InventoryHandler) Overview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	pharmacyID, ok := uuidQuery(c, "pharmacyId")
	if !ok {
		return
	}
	resp, err := h.svc.Overview(c.Request.Context(), p, pharmacyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
