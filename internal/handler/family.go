package handler

import (
	"net/http"

	"pharmacare/internal/dto"
	"pharmacare/internal/service"

	"github.com/gin-gonic/gin"
)

type FamilyHandler struct{ svc service.FamilyService }

func NewFamilyHandler(svc service.FamilyService) *FamilyHandler { return &FamilyHandler{svc: svc} }

// List godoc
// @Summary List family members
// @Tags family
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.FamilyMemberResponse
// @Router /api/family [get]
func (h *FamilyHandler) List(c *gin.Context) {
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

func (h *FamilyHandler) Get(c *gin.Context) {
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
// @Summary Add a family member
// @Tags family
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FamilyMemberRequest true "Family member"
// @Success 201 {object} dto.FamilyMemberResponse
// @Router /api/family [post]
func (h *FamilyHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.FamilyMemberRequest
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

func (h *FamilyHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.FamilyMemberRequest
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

func (h *FamilyHandler) Delete(c *gin.Context) {
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
