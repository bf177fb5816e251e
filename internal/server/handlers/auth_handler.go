package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/domain/models"
	"github.com/mamadbah2/salestracker/internal/service/session"
)

// SessionGate is the authentication contract the handlers depend on.
type SessionGate interface {
	SignupAllowed(ctx context.Context) (bool, error)
	SignUp(ctx context.Context, email, password, confirm string) (session.Session, error)
	SignIn(ctx context.Context, email, password string) (session.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (models.SessionUser, error)
}

// AuthHandler serves sign-up, sign-in and the session gate middleware.
type AuthHandler struct {
	gate         SessionGate
	ttl          time.Duration
	cookieSecure bool
	logger       *zap.Logger
}

// NewAuthHandler constructs the auth HTTP adapter.
func NewAuthHandler(gate SessionGate, ttl time.Duration, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{gate: gate, ttl: ttl, cookieSecure: cookieSecure, logger: logger}
}

type signUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Status reports whether sign-up is open and who is signed in.
func (h *AuthHandler) Status(c *gin.Context) {
	allowed, err := h.gate.SignupAllowed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var user *models.SessionUser
	if u, err := h.gate.CurrentUser(c.Request.Context(), SessionToken(c)); err == nil {
		user = &u
	} else if !errors.Is(err, models.ErrUnauthenticated) {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"signupAllowed": allowed, "user": user})
}

// SignUp creates an account and starts its session.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sign-up payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	sess, err := h.gate.SignUp(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, sess.Token, int(h.ttl.Seconds()))
	c.JSON(http.StatusCreated, gin.H{"user": sess.User, "token": sess.Token})
}

// SignIn verifies credentials and starts a session.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sign-in payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	sess, err := h.gate.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, sess.Token, int(h.ttl.Seconds()))
	c.JSON(http.StatusOK, gin.H{"user": sess.User, "token": sess.Token})
}

// SignOut ends the current session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.gate.SignOut(c.Request.Context(), SessionToken(c)); err != nil {
		respondError(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.gate.CurrentUser(c.Request.Context(), SessionToken(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RequireSession aborts with 401 unless the request carries a live session.
func (h *AuthHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.gate.CurrentUser(c.Request.Context(), SessionToken(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", h.cookieSecure, true)
}
