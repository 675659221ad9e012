package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}

	pair, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pair)
}

func (h *Handler) refresh(c *gin.Context) {
	var req RefreshRequest
	if !h.bind(c, &req) {
		return
	}

	pair, err := h.svc.Auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pair)
}

func (h *Handler) logout(c *gin.Context) {
	var req LogoutRequest
	if !h.bindOptional(c, &req) {
		return
	}

	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if err := h.svc.Auth.Logout(c.Request.Context(), claims, req.RefreshToken, middleware.CallerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	caller := middleware.CallerFrom(c)
	if err := h.svc.Auth.ChangePassword(c.Request.Context(), caller.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
