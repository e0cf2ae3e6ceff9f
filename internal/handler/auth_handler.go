package handler

import (
	"net/http"
	"time"

	"catalog-service/internal/middleware"
	"catalog-service/internal/service"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler returns an AuthHandler backed by the given service.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles creating a new account
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Email == "" || req.Password == "" {
		log.Warn("Incomplete registration data", zap.String("email", req.Email))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	defer prometheus.TrackDBOperation("register")(time.Now())
	resp, err := h.auth.Register(req)
	if err != nil {
		log.Warn("Registration failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("registration_failed")
		return writeServiceError(c, err)
	}

	log.Info("User registered",
		zap.Uint("user_id", resp.User.ID),
		zap.String("email", resp.User.Email),
		zap.String("role", string(resp.User.Role)))
	return c.JSON(http.StatusCreated, resp)
}

// Login handles credential checks and token issuance
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	defer prometheus.TrackDBOperation("login")(time.Now())
	resp, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		log.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("login_failed")
		return writeServiceError(c, err)
	}

	log.Info("User logged in",
		zap.Uint("user_id", resp.User.ID),
		zap.String("email", resp.User.Email))
	return c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated user's account
func (h *AuthHandler) Profile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		log.Warn("Missing user_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	user, err := h.auth.Profile(userID)
	if err != nil {
		log.Warn("Profile lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
