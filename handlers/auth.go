package handlers

import (
	"net/http"

	"campus-canteen-api/middleware"
	"campus-canteen-api/models"

	"github.com/gin-gonic/gin"
)

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type StaffLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
	Passkey  string `json:"passkey"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// PatronSignup registers a patron with an institutional email
func (h *Handler) PatronSignup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Auth.RegisterPatron(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, user)
}

// PatronLogin authenticates a patron and returns a token
func (h *Handler) PatronLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Auth.AuthenticatePatron(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

// StaffLogin admits staff and owners holding the shared passkey
func (h *Handler) StaffLogin(c *gin.Context) {
	var req StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Auth.AuthenticateOrProvisionStaff(c.Request.Context(),
		req.Email, req.Password, req.Passkey, models.Role(req.Role))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

// GetProfile returns the authenticated caller's identity
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Auth.GetUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: user.Public()})
}
