// Package handler serves recorder client registration and the token endpoints.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gui-replay/backend/internal/client"
	"gui-replay/backend/internal/client/domain"
)

// Handler serves /auth and /v1/clients.
type Handler struct {
	svc *client.Service
}

func NewHandler(svc *client.Service) *Handler {
	return &Handler{svc: svc}
}

type tokenRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
}

// Token exchanges client credentials for a token pair. POST /auth/token.
func (h *Handler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id and client_secret are required"})
		return
	}
	pair, err := h.svc.Authenticate(c.Request.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token. POST /auth/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Hostname string `json:"hostname"`
}

type clientResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Hostname  string     `json:"hostname"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	// Secret is set only in the registration response.
	Secret string `json:"secret,omitempty"`
}

// Register creates a recorder client. POST /v1/clients. The secret appears
// once in the response and is never retrievable again.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	created, secret, err := h.svc.Register(c.Request.Context(), req.Name, req.Hostname)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register client"})
		return
	}
	resp := toClientResponse(created)
	resp.Secret = secret
	c.JSON(http.StatusCreated, resp)
}

// List returns all recorder clients. GET /v1/clients.
func (h *Handler) List(c *gin.Context) {
	clients, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list clients"})
		return
	}
	out := make([]clientResponse, len(clients))
	for i, cl := range clients {
		out[i] = toClientResponse(cl)
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

// Get returns one recorder client. GET /v1/clients/:id.
func (h *Handler) Get(c *gin.Context) {
	cl, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get client"})
		return
	}
	c.JSON(http.StatusOK, toClientResponse(cl))
}

// Revoke disables a recorder client. POST /v1/clients/:id/revoke.
func (h *Handler) Revoke(c *gin.Context) {
	err := h.svc.Revoke(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke client"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid client credentials"})
	case errors.Is(err, client.ErrClientRevoked):
		c.JSON(http.StatusForbidden, gin.H{"error": "client revoked"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
	}
}

func toClientResponse(cl *domain.Client) clientResponse {
	return clientResponse{
		ID:        cl.ID,
		Name:      cl.Name,
		Hostname:  cl.Hostname,
		RevokedAt: cl.RevokedAt,
		CreatedAt: cl.CreatedAt,
	}
}
