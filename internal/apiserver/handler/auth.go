package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/apiserver/middleware"
	"github.com/ordermill/storefront/internal/common/dto"
	"github.com/ordermill/storefront/internal/i18n"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = time.Hour

// Signup registers a new retailer account. User, profile and role rows are
// created in one transaction.
func (h *Handler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorEmailPasswordRequired)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request.Context()

	if _, err := h.db.GetUserByEmail(ctx, email); err == nil {
		i18n.RespondWithError(c, i18n.ErrorEmailExists)
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		h.dbError(c, "signup lookup", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.dbError(c, "hash password", err)
		return
	}

	user := &database.User{Email: email, PasswordHash: string(hash)}
	err = h.db.Transaction(ctx, func(ctx context.Context) error {
		if err := h.db.CreateUser(ctx, user); err != nil {
			return err
		}
		profile := &database.Profile{
			ID:              user.ID,
			BusinessName:    req.BusinessName,
			BusinessAddress: req.BusinessAddress,
			Phone:           req.Phone,
			BusinessType:    req.BusinessType,
			PaymentTerms:    req.PaymentTerms,
			Email:           email,
		}
		if err := h.db.UpsertProfile(ctx, profile); err != nil {
			return err
		}
		return h.db.AddUserRole(ctx, user.ID, database.RoleRetailer)
	})
	if err != nil {
		h.dbError(c, "signup transaction", err)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.dbError(c, "generate token", err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		User:  dto.AuthUser{ID: user.ID, Email: user.Email},
		Token: token,
	})
}

// Signin authenticates an existing account
func (h *Handler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorEmailPasswordRequired)
		return
	}

	user, err := h.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i18n.RespondWithError(c, i18n.ErrorInvalidCredentials)
			return
		}
		h.dbError(c, "signin lookup", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		i18n.RespondWithError(c, i18n.ErrorInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.dbError(c, "generate token", err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		User:  dto.AuthUser{ID: user.ID, Email: user.Email},
		Token: token,
	})
}

// Session returns the session the SPA reconstructs client state from
func (h *Handler) Session(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		i18n.RespondWithError(c, i18n.ErrUnauthorized)
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i18n.RespondWithError(c, i18n.ErrUnauthorized)
			return
		}
		h.dbError(c, "session lookup", err)
		return
	}

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	var expiresAt int64
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Unix()
	}

	c.JSON(http.StatusOK, dto.SessionResponse{
		Data: dto.SessionData{
			Session: &dto.Session{
				User:        dto.AuthUser{ID: user.ID, Email: user.Email},
				AccessToken: token,
				ExpiresAt:   expiresAt,
			},
		},
	})
}

// ResetRequest issues a single-use reset token and emails the reset link.
// The response never reveals whether the address exists.
func (h *Handler) ResetRequest(c *gin.Context) {
	var req dto.ResetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrBadRequest)
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"email_sent": false})
			return
		}
		h.dbError(c, "reset lookup", err)
		return
	}

	token := uuid.New().String()
	if err := h.db.CreateResetToken(ctx, &database.ResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}); err != nil {
		h.dbError(c, "create reset token", err)
		return
	}

	resetURL := strings.TrimRight(h.cfg.Server.FrontendURL, "/") + "/reset-password?token=" + token
	outcome := h.notify.PasswordReset(ctx, user.Email, resetURL)
	h.countEmail(outcome)

	c.JSON(http.StatusOK, gin.H{"email_sent": outcome.EmailSent()})
}

// Reset consumes a reset token and sets a new password
func (h *Handler) Reset(c *gin.Context) {
	var req dto.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorResetTokenInvalid)
		return
	}

	ctx := c.Request.Context()
	token, err := h.db.GetResetToken(ctx, req.Token)
	if err != nil || token.Used || time.Now().After(token.ExpiresAt) {
		i18n.RespondWithError(c, i18n.ErrorResetTokenInvalid)
		return
	}

	user, err := h.db.GetUserByID(ctx, token.UserID)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorResetTokenInvalid)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.dbError(c, "hash password", err)
		return
	}

	err = h.db.Transaction(ctx, func(ctx context.Context) error {
		user.PasswordHash = string(hash)
		if err := h.db.UpdateUser(ctx, user); err != nil {
			return err
		}
		return h.db.MarkResetTokenUsed(ctx, token.ID)
	})
	if err != nil {
		h.dbError(c, "reset transaction", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateCredentials changes the signed-in user's email or password
func (h *Handler) UpdateCredentials(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		i18n.RespondWithError(c, i18n.ErrUnauthorized)
		return
	}

	var req dto.UpdateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrBadRequest)
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByID(ctx, claims.UserID)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrUnauthorized)
		return
	}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if _, err := h.db.GetUserByEmail(ctx, email); err == nil {
			i18n.RespondWithError(c, i18n.ErrorEmailExists)
			return
		}
		user.Email = email
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			i18n.RespondWithError(c, i18n.ErrBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.dbError(c, "hash password", err)
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.db.UpdateUser(ctx, user); err != nil {
		h.dbError(c, "update user", err)
		return
	}

	h.logger.Info("user credentials updated", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, dto.AuthUser{ID: user.ID, Email: user.Email})
}
