package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/apiserver/middleware"
	"github.com/ordermill/storefront/internal/common/dto"
	"github.com/ordermill/storefront/internal/i18n"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminListUsers returns all users with their roles and profiles
func (h *Handler) AdminListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	users, err := h.db.ListUsers(ctx)
	if err != nil {
		h.dbError(c, "list users", err)
		return
	}

	out := make([]dto.AdminUser, 0, len(users))
	for _, u := range users {
		roles, err := h.db.GetUserRoles(ctx, u.ID)
		if err != nil {
			h.dbError(c, "user roles", err)
			return
		}
		row := dto.AdminUser{ID: u.ID, Email: u.Email, Roles: roles}
		if profile, err := h.db.GetProfile(ctx, u.ID); err == nil {
			row.Profile = profile
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, out)
}

// AdminCreateUser creates a user, profile and roles in one transaction
func (h *Handler) AdminCreateUser(c *gin.Context) {
	var req dto.AdminCreateUserRequest
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
		h.dbError(c, "user lookup", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.dbError(c, "hash password", err)
		return
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{database.RoleRetailer}
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
		for _, role := range roles {
			if err := h.db.AddUserRole(ctx, user.ID, role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.dbError(c, "create user", err)
		return
	}

	c.JSON(http.StatusOK, dto.AdminUser{ID: user.ID, Email: user.Email, Roles: roles})
}

// AdminUpdateUser applies a partial update; a supplied role list replaces
// the existing grants.
func (h *Handler) AdminUpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorUserNotFound)
		return
	}

	var req dto.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrBadRequest.WithParam("Reason", err.Error()))
		return
	}

	ctx := c.Request.Context()
	user, err := h.db.GetUserByID(ctx, uint(id))
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorUserNotFound)
		return
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			if _, err := h.db.GetUserByEmail(ctx, email); err == nil {
				i18n.RespondWithError(c, i18n.ErrorEmailExists)
				return
			} else if !errors.Is(err, database.ErrNotFound) {
				h.dbError(c, "user lookup", err)
				return
			}
			user.Email = email
		}
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.dbError(c, "hash password", err)
			return
		}
		user.PasswordHash = string(hash)
	}

	err = h.db.Transaction(ctx, func(ctx context.Context) error {
		if err := h.db.UpdateUser(ctx, user); err != nil {
			return err
		}
		if req.Roles != nil {
			return h.db.ReplaceUserRoles(ctx, user.ID, *req.Roles)
		}
		return nil
	})
	if err != nil {
		h.dbError(c, "update user", err)
		return
	}

	roles, err := h.db.GetUserRoles(ctx, user.ID)
	if err != nil {
		h.dbError(c, "user roles", err)
		return
	}
	i18n.RespondOK(c, "SuccessUserUpdated", nil, dto.AdminUser{ID: user.ID, Email: user.Email, Roles: roles})
}

// AdminDeleteUser removes a user and its dependent rows. Admins cannot
// delete themselves.
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrorUserNotFound)
		return
	}

	if claims := middleware.GetClaims(c); claims != nil && claims.UserID == uint(id) {
		i18n.RespondWithError(c, i18n.ErrForbidden)
		return
	}

	if err := h.db.DeleteUser(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i18n.RespondWithError(c, i18n.ErrorUserNotFound)
			return
		}
		h.dbError(c, "delete user", err)
		return
	}
	i18n.RespondOK(c, "SuccessUserDeleted", nil, nil)
}
