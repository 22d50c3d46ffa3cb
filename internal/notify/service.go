package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/common/config"

	"go.uber.org/zap"
)

// Service sends storefront notification emails. Delivery is best effort:
// every method returns an Outcome and never an error, preserving the
// contract that notifications cannot fail the triggering request.
type Service struct {
	logger *zap.Logger
	db     database.Database
	sender Sender
	cfg    *config.EmailConfig
}

// NewService creates a notification service. A nil sender disables
// delivery; every attempt then reports a skipped outcome.
func NewService(logger *zap.Logger, db database.Database, sender Sender, cfg *config.EmailConfig) *Service {
	return &Service{
		logger: logger.Named("notify"),
		db:     db,
		sender: sender,
		cfg:    cfg,
	}
}

// settings resolves the active notification settings: the latest saved
// email_settings row, falling back to static configuration.
func (s *Service) settings(ctx context.Context) *database.EmailSettings {
	saved, err := s.db.GetLatestEmailSettings(ctx)
	if err == nil {
		return saved
	}
	if !errors.Is(err, database.ErrNotFound) {
		s.logger.Warn("loading email settings failed, using config fallback", zap.Error(err))
	}
	return &database.EmailSettings{
		AccountsEmail:  s.cfg.AccountsEmail,
		AdminEmail:     s.cfg.AdminEmail,
		DispatchEmail:  s.cfg.DispatchEmail,
		NotifyAccounts: true,
		NotifyAdmin:    true,
		NotifyDispatch: true,
		NotifyCustomer: true,
	}
}

// recipients builds the staff recipient list from the notification toggles
func recipients(settings *database.EmailSettings) []string {
	var to []string
	add := func(enabled bool, addr string) {
		addr = strings.TrimSpace(addr)
		if enabled && addr != "" {
			to = append(to, addr)
		}
	}
	add(settings.NotifyAccounts, settings.AccountsEmail)
	add(settings.NotifyAdmin, settings.AdminEmail)
	add(settings.NotifyDispatch, settings.DispatchEmail)
	return to
}

func (s *Service) deliver(ctx context.Context, to []string, subject, html string) Outcome {
	if s.sender == nil {
		return Skipped("email client not configured")
	}
	if len(to) == 0 {
		return Skipped("no recipients")
	}
	msg := &Message{
		From:    s.cfg.From,
		To:      to,
		Subject: subject,
		HTML:    html,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("email delivery failed",
			zap.Strings("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return Failed(err)
	}
	return Sent()
}

// OrderUpdated notifies staff and optionally the customer that an order
// changed.
func (s *Service) OrderUpdated(ctx context.Context, order *database.Order) Outcome {
	settings := s.settings(ctx)
	to := recipients(settings)
	if settings.NotifyCustomer && strings.TrimSpace(order.Email) != "" {
		to = append(to, order.Email)
	}

	html, err := renderEmail("order_updated", map[string]any{"Order": order})
	if err != nil {
		s.logger.Error("rendering order update email failed", zap.Error(err))
		return Failed(err)
	}
	return s.deliver(ctx, to, fmt.Sprintf("Order %s updated", order.ID), html)
}

// OrderCreated notifies staff that a new order was placed
func (s *Service) OrderCreated(ctx context.Context, order *database.Order) Outcome {
	settings := s.settings(ctx)
	to := recipients(settings)

	html, err := renderEmail("order_created", map[string]any{"Order": order})
	if err != nil {
		s.logger.Error("rendering order created email failed", zap.Error(err))
		return Failed(err)
	}
	return s.deliver(ctx, to, fmt.Sprintf("New order %s", order.ID), html)
}

// TrackingUpdated emails the customer their tracking details, when the
// order has an email on file.
func (s *Service) TrackingUpdated(ctx context.Context, order *database.Order, tracking *database.TrackingInfo) Outcome {
	if strings.TrimSpace(order.Email) == "" {
		return Skipped("order has no customer email")
	}

	html, err := renderEmail("tracking_updated", map[string]any{
		"Order":    order,
		"Tracking": tracking,
	})
	if err != nil {
		s.logger.Error("rendering tracking email failed", zap.Error(err))
		return Failed(err)
	}
	return s.deliver(ctx, []string{order.Email}, fmt.Sprintf("Tracking update for order %s", order.ID), html)
}

// PasswordReset emails a reset link to the given address
func (s *Service) PasswordReset(ctx context.Context, email, resetURL string) Outcome {
	html, err := renderEmail("password_reset", map[string]any{"ResetURL": resetURL})
	if err != nil {
		s.logger.Error("rendering reset email failed", zap.Error(err))
		return Failed(err)
	}
	return s.deliver(ctx, []string{email}, "Reset your password", html)
}
