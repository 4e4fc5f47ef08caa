package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"queuely/internal/auth"
	"queuely/internal/logger"
	"queuely/internal/models"
	"queuely/internal/queue"
	"queuely/internal/registry"
	"queuely/internal/response"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Location string `json:"location" binding:"max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthHandler serves service provider accounts
type AuthHandler struct {
	reg    *registry.Registry
	svc    *queue.Service
	issuer *auth.Issuer
	log    *logger.Logger
}

// NewAuthHandler creates the account handlers
func NewAuthHandler(reg *registry.Registry, svc *queue.Service, issuer *auth.Issuer, log *logger.Logger) *AuthHandler {
	return &AuthHandler{reg: reg, svc: svc, issuer: issuer, log: log.WithComponent("auth-handler")}
}

// Register godoc
// @Summary		Register a service provider
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			provider	body		RegisterRequest	true	"Account data"
// @Success		201	{object}	response.ProviderResponse
// @Failure		400	{object}	response.ErrorResponse	"VALIDATION_ERROR, EMAIL_EXISTS"
// @Failure		500	{object}	response.ErrorResponse	"PASSWORD_HASH_ERROR, DB_ERROR"
// @Router			/auth/provider/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "PASSWORD_HASH_ERROR",
			Message: "Could not hash password",
		})
		return
	}

	p := models.ServiceProvider{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Location:     req.Location,
	}
	if err := h.reg.CreateProvider(c.Request.Context(), &p); err != nil {
		if errors.Is(err, registry.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "EMAIL_EXISTS",
				Message: "A provider with this email already exists",
			})
			return
		}
		h.log.Error("create provider", "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Could not create provider",
		})
		return
	}

	c.JSON(http.StatusCreated, response.ProviderResponse{
		ID:       p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Location: p.Location,
	})
}

// Login godoc
// @Summary		Provider login
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			credentials	body		LoginRequest	true	"Credentials"
// @Success		200	{object}	response.TokenResponse
// @Failure		400	{object}	response.ErrorResponse	"VALIDATION_ERROR"
// @Failure		401	{object}	response.ErrorResponse	"INVALID_CREDENTIALS"
// @Failure		500	{object}	response.ErrorResponse	"TOKEN_GENERATION_ERROR"
// @Router			/auth/provider/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	p, err := h.reg.FindByEmail(c.Request.Context(), req.Email)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password))
	}
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:    "INVALID_CREDENTIALS",
			Message: "Wrong email or password",
		})
		return
	}

	h.issueTokens(c, p.OwnerID())
	if err := h.reg.TouchLogin(c.Request.Context(), p.OwnerID(), time.Now().UTC()); err != nil {
		h.log.Warn("record login", "owner", p.OwnerID(), "error", err)
	}
}

// Refresh godoc
// @Summary		Refresh tokens
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			token	body		RefreshTokenRequest	true	"Refresh token"
// @Success		200	{object}	response.TokenResponse
// @Failure		401	{object}	response.ErrorResponse	"INVALID_REFRESH_TOKEN, PROVIDER_NOT_FOUND"
// @Router			/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	providerID, err := h.issuer.ParseRefresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:    "INVALID_REFRESH_TOKEN",
			Message: "Invalid or expired refresh token",
		})
		return
	}
	if _, err := h.reg.GetOwner(c.Request.Context(), providerID); err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{
			Code:    "PROVIDER_NOT_FOUND",
			Message: "Service provider not found",
		})
		return
	}

	h.issueTokens(c, providerID)
}

// DeleteProvider godoc
// @Summary		Delete a provider account
// @Description	Deletes every queue of the provider, then the account itself
// @Tags			auth
// @Produce		json
// @Param			id	path		string	true	"Provider id"
// @Security		BearerAuth
// @Success		200	{object}	response.DeleteProviderResponse
// @Failure		403	{object}	response.ErrorResponse	"FORBIDDEN"
// @Failure		404	{object}	response.ErrorResponse	"PROVIDER_NOT_FOUND"
// @Router			/provider/delete/{id} [delete]
func (h *AuthHandler) DeleteProvider(c *gin.Context) {
	providerID := auth.ProviderID(c)
	if c.Param("id") != providerID {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "Providers can only delete their own account",
		})
		return
	}

	ctx := c.Request.Context()
	n, err := h.svc.DeleteProvider(ctx, providerID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.reg.DeleteProvider(ctx, providerID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, response.DeleteProviderResponse{Message: "provider deleted", DeletedQueues: n})
}

func (h *AuthHandler) issueTokens(c *gin.Context, providerID string) {
	pair, err := h.issuer.Issue(providerID)
	if err != nil {
		h.log.Error("issue tokens", "owner", providerID, "error", err)
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "TOKEN_GENERATION_ERROR",
			Message: "Could not generate tokens",
		})
		return
	}
	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
