package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"orgaccount-backend/services/account"
	"orgaccount-backend/services/activation"
	"orgaccount-backend/services/token"
)

// AuthHandler serves registration, login and account activation.
type AuthHandler struct {
	accounts   Registrar
	tokens     *token.Service
	activation *activation.Service
}

func NewAuthHandler(accounts Registrar, tokens *token.Service, activation *activation.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, activation: activation}
}

// Register Request struct
type RegisterRequest struct {
	Email           string     `json:"email" binding:"required" example:"user@example.com"`
	Password        string     `json:"password" binding:"required" example:"securepassword123"`
	ConfirmPassword string     `json:"confirm_password" binding:"required" example:"securepassword123"`
	FirstName       string     `json:"first_name" binding:"required" example:"John"`
	LastName        string     `json:"last_name" binding:"required" example:"Doe"`
	Gender          string     `json:"gender" binding:"required" example:"M"`
	OrganizationID  *uuid.UUID `json:"organization_id"`
}

// Login Request struct
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// ResendActivation Request struct
type ResendActivationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /users/create_user
// @Summary Register a new account
// @Description Creates a pending account and emails an activation link
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{} "Created account"
// @Failure 400 {object} map[string]interface{} "Validation errors"
// @Failure 429 {object} map[string]string "Too many registration attempts"
// @Router /users/create_user [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), account.RegisterParams{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Gender:          req.Gender,
		OrganizationID:  req.OrganizationID,
	})
	if err != nil {
		writeAccountError(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializeUser(user))
}

// POST /users/login
// @Summary Log in
// @Description Validates credentials and returns the account's bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{} "Token and user id"
// @Failure 400 {object} map[string]string "Authentication failed"
// @Failure 429 {object} map[string]string "Too many login attempts"
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	key, user, err := h.tokens.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, token.ErrAuthenticationFailed) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": token.ErrAuthenticationFailed.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   key,
		"user_id": user.ID,
	})
}

// GET /activate/:id/:ticket
// @Summary Activate an account
// @Description Confirms the emailed activation link and marks the account active
// @Tags auth
// @Produce json
// @Param id path string true "User ID"
// @Param ticket path string true "Activation ticket"
// @Success 202 {object} map[string]interface{} "Activated account"
// @Failure 400 {object} map[string]string "Invalid or expired link"
// @Failure 404 {object} map[string]string "Unknown account"
// @Router /activate/{id}/{ticket} [get]
func (h *AuthHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	user, err := h.activation.Confirm(c.Request.Context(), id, c.Param("ticket"))
	if err != nil {
		switch {
		case errors.Is(err, activation.ErrUnknownAccount):
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		case errors.Is(err, activation.ErrInvalidTicket):
			c.JSON(http.StatusBadRequest, gin.H{"detail": activation.ErrInvalidTicket.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		}
		return
	}

	c.JSON(http.StatusAccepted, serializeUser(user))
}

// POST /users/resend_activation
// @Summary Resend the activation email
// @Description Re-issues the activation link for a pending account. Always returns 202 so addresses cannot be probed.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResendActivationRequest true "Account email"
// @Success 202 {object} map[string]string "Accepted"
// @Failure 400 {object} map[string]interface{} "Validation errors"
// @Failure 429 {object} map[string]string "Too many activation requests"
// @Router /users/resend_activation [post]
func (h *AuthHandler) ResendActivation(c *gin.Context) {
	var req ResendActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	if err := h.activation.Resend(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"detail": "If the account is pending activation, a new link has been sent."})
}
