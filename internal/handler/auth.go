package handler

import (
	"net/http"

	"pharmacare/internal/dto"
	"pharmacare/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Patient login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apierror.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Signup godoc
// @Summary Register a patient account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.SignupRequest true "Account"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} apierror.APIError
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PharmacySignup godoc
// @Summary Register a pharmacy with its admin account
// @Description Creates the admin user, the pharmacy and the ADMIN staff row in one transaction.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.PharmacySignupRequest true "Pharmacy and admin"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /auth/pharmacy/signup [post]
func (h *AuthHandler) PharmacySignup(c *gin.Context) {
	var req dto.PharmacySignupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.PharmacySignup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PharmacyLogin godoc
// @Summary Pharmacy staff login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apierror.APIError
// @Router /auth/pharmacy/login [post]
func (h *AuthHandler) PharmacyLogin(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.PharmacyLogin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Validate godoc
// @Summary Describe the token holder
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ValidateResponse
// @Failure 401 {object} apierror.APIError
// @Router /auth/validate [get]
func (h *AuthHandler) Validate(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	resp, err := h.svc.Validate(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apierror.APIError
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Revoke the current access token
// @Tags auth
// @Accept json
// @Security BearerAuth
// @Param body body dto.LogoutRequest false "Refresh token to revoke"
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.LogoutRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Logout(c.Request.Context(), p, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
