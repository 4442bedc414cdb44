package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nimsdash/authgate/internal/core/domain"
	"github.com/nimsdash/authgate/internal/logger"
	logicv1 "github.com/nimsdash/authgate/internal/logic/v1"
	"github.com/nimsdash/authgate/middleware"
)

// Handler groups HTTP handlers for the gateway API v1. The response bodies
// mirror the RPC shapes the dashboard front end already depends on, so field
// names must not change.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	auth *logicv1.AuthService
	logo *logicv1.LogoService
}

// NewHandler creates a Handler. logo may be nil when no banner asset is
// configured.
func NewHandler(auth *logicv1.AuthService, logo *logicv1.LogoService) *Handler {
	return &Handler{auth: auth, logo: logo}
}

// RegisterRoutes registers all gateway API v1 routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
	rg.GET("/auth/me", h.GetMe)
	rg.POST("/auth/logout", h.Logout)
	rg.POST("/actions/admin", h.AdminAction)
	rg.POST("/actions/super", h.SuperAction)
	rg.GET("/assets/logo", h.Logo)
}

// Login verifies credentials and opens a session. The response is always
// 200 with a structured body; the client branches on the ok field.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.login", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	// A malformed or empty body is the same as missing credentials; the
	// logic layer produces the fixed validation message either way.
	_ = c.ShouldBindJSON(&req)

	resp := h.auth.Authenticate(ctx, req)
	if resp.OK {
		log.Info().Str("user_id", resp.User.UserID).Msg("Login successful")
	} else {
		log.Warn().Str("reason", resp.Message).Msg("Login rejected")
	}

	c.JSON(http.StatusOK, resp)
}

// GetMe resolves the presented token to its session user, responding with
// the user view or a JSON null.
func (h *Handler) GetMe(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.me", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	user := h.auth.GetSessionUser(ctx, sessionToken(c))
	c.JSON(http.StatusOK, user)
}

// Logout closes the presented session. Idempotent: unknown tokens still
// report ok.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.logout", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	resp := h.auth.Logout(ctx, sessionToken(c))
	c.JSON(http.StatusOK, resp)
}

// AdminAction runs the admin-level example action.
func (h *Handler) AdminAction(c *gin.Context) {
	h.runAction(c, "http.action.admin", h.auth.AdminAction)
}

// SuperAction runs the superuser-only example action.
func (h *Handler) SuperAction(c *gin.Context) {
	h.runAction(c, "http.action.super", h.auth.SuperAction)
}

func (h *Handler) runAction(c *gin.Context, spanName string, action func(ctx context.Context, token string) (*domain.ActionResponse, error)) {
	ctx, span := middleware.StartSpan(c.Request.Context(), spanName, trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	resp, err := action(ctx, sessionToken(c))
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Action rejected")

		switch {
		case errors.Is(err, logicv1.ErrNotAuthenticated):
			c.JSON(http.StatusUnauthorized, domain.BasicResponse{Message: err.Error()})
		case errors.Is(err, logicv1.ErrForbidden):
			c.JSON(http.StatusForbidden, domain.BasicResponse{Message: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, domain.BasicResponse{Message: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logo serves the banner asset as a data URL.
func (h *Handler) Logo(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.logo", trace.WithAttributes(
		attribute.String("layer", "web"),
	))
	defer span.End()

	if h.logo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no banner asset configured"})
		return
	}

	dataURL, err := h.logo.GetLogoDataURL(ctx)
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("Logo fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "asset fetch failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dataUrl": dataURL})
}

// sessionToken pulls the session token from the Authorization header
// (Bearer scheme) or, failing that, the token query parameter.
func sessionToken(c *gin.Context) string {
	const bearerPrefix = "Bearer "
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return header[len(bearerPrefix):]
	}
	return c.Query("token")
}
