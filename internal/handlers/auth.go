package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plumecms/plume/internal/accounts"
	"github.com/plumecms/plume/internal/auth"
)

// AuthHandler serves login and the current-account endpoint.
type AuthHandler struct {
	service   *accounts.Service
	jwtSecret string
	expiresIn time.Duration
	logger    *slog.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(log *slog.Logger, service *accounts.Service, jwtSecret string, expiresIn time.Duration) *AuthHandler {
	return &AuthHandler{
		service:   service,
		jwtSecret: jwtSecret,
		expiresIn: expiresIn,
		logger:    log.With(slog.String("handler", "auth")),
	}
}

// Register mounts the auth routes on the Echo instance.
func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/auth/login", h.Login)
	e.GET("/auth/me", h.Me)
}

// LoginRequest is the login payload; identity is a username or email.
type LoginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the authenticated account.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Account   accounts.Account `json:"account"`
}

// Login verifies credentials and issues a JWT.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Identity = strings.TrimSpace(req.Identity)
	if req.Identity == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "identity and password are required")
	}

	account, err := h.service.Login(c.Request().Context(), req.Identity, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) || errors.Is(err, accounts.ErrInactiveAccount) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, expiresAt, err := auth.GenerateToken(account.ID, h.jwtSecret, h.expiresIn)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   account,
	})
}

// Me returns the account behind the current token.
func (h *AuthHandler) Me(c echo.Context) error {
	accountID, err := auth.AccountIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	account, err := h.service.Get(c.Request().Context(), accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, account)
}
