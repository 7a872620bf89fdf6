package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/apperrors"
	"github.com/motohub/motohub-cart-service/internal/cart"
	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/config"
	"github.com/motohub/motohub-cart-service/internal/request"
)

const sessionHeader = "X-Session-ID"

// Handlers holds all HTTP handlers for the cart service.
type Handlers struct {
	manager *cart.Manager
	builder *request.Builder
	catalog *catalog.Snapshot
	config  *config.Config
	logger  *zap.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	manager *cart.Manager,
	builder *request.Builder,
	cat *catalog.Snapshot,
	cfg *config.Config,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		manager: manager,
		builder: builder,
		catalog: cat,
		config:  cfg,
		logger:  logger.Named("handlers"),
	}
}

// sessionEngine resolves the caller's cart engine from the session header.
func (h *Handlers) sessionEngine(c *gin.Context) (*cart.Engine, string, bool) {
	sessionID := c.GetHeader(sessionHeader)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + sessionHeader + " header"})
		return nil, "", false
	}

	engine, err := h.manager.Engine(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to open cart session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return nil, "", false
	}
	return engine, sessionID, true
}

// bearerToken extracts the raw bearer token, empty when absent.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if errors.Is(err, apperrors.ErrSubmissionInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, apperrors.ErrNoEligibleProvider) {
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"hint":  "change the selected services or pick providers manually",
		})
		return
	}

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Reason,
			"field": validationErr.Field,
		})
		return
	}

	var submissionErr *apperrors.SubmissionError
	if errors.As(err, &submissionErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": submissionErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
