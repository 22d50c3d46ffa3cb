package database

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
)

// EqFilter is one equality predicate for the generic query path.
type EqFilter struct {
	Column string
	Value  any
}

// Database is the persistence interface for the API server. Implementations
// must be safe for concurrent use.
type Database interface {
	// Transaction runs fn inside a DB transaction. All Database calls made
	// with the ctx passed to fn join that transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Users and auth
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, id uint) error
	UpsertProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, userID uint) (*Profile, error)
	AddUserRole(ctx context.Context, userID uint, role string) error
	// ReplaceUserRoles atomically swaps the user's role set
	ReplaceUserRoles(ctx context.Context, userID uint, roles []string) error
	GetUserRoles(ctx context.Context, userID uint) ([]string, error)
	HasRole(ctx context.Context, userID uint, role string) (bool, error)
	CreateResetToken(ctx context.Context, t *ResetToken) error
	GetResetToken(ctx context.Context, token string) (*ResetToken, error)
	MarkResetTokenUsed(ctx context.Context, id uint) error

	// Catalog
	ListProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, id uint) (*Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	ListCategories(ctx context.Context) ([]*ProductCategory, error)
	GetCategory(ctx context.Context, id uint) (*ProductCategory, error)
	CreateCategory(ctx context.Context, c *ProductCategory) error
	UpdateCategory(ctx context.Context, c *ProductCategory) error
	DeleteCategory(ctx context.Context, id uint) error
	// ResolveCategoryID turns a client category value (numeric id or name)
	// into a category id, creating the category when the name is unknown.
	// Name matching is case-insensitive; the lookup and create run in one
	// transaction.
	ResolveCategoryID(ctx context.Context, value any) (*uint, error)

	// Orders
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context) ([]*Order, error)
	ListOrdersByUser(ctx context.Context, userID uint) ([]*Order, error)
	UpdateOrderFields(ctx context.Context, id string, fields map[string]any) (*Order, error)
	// UpsertTracking updates the existing tracking row for the order or
	// inserts one, atomically.
	UpsertTracking(ctx context.Context, t *TrackingInfo) error
	GetTracking(ctx context.Context, orderID string) (*TrackingInfo, error)

	// Email settings history
	SaveEmailSettings(ctx context.Context, s *EmailSettings) error
	GetLatestEmailSettings(ctx context.Context) (*EmailSettings, error)

	// Marketing material
	CreateMarketing(ctx context.Context, m *Marketing) error
	ListMarketing(ctx context.Context) ([]*Marketing, error)
	GetMarketing(ctx context.Context, id uint) (*Marketing, error)
	DeleteMarketing(ctx context.Context, id uint) error

	// Xero tokens
	SaveXeroToken(ctx context.Context, t *XeroToken) error
	GetActiveXeroToken(ctx context.Context) (*XeroToken, error)
	UpdateXeroToken(ctx context.Context, t *XeroToken) error

	// Generic row access for the query endpoint. Tables must already have
	// passed the allow-list; values and columns must already be intersected
	// against the schema registry.
	QuerySelect(ctx context.Context, table string, filters []EqFilter) ([]map[string]any, error)
	QueryInsert(ctx context.Context, table string, values map[string]any) (map[string]any, error)
	QueryUpdate(ctx context.Context, table string, set map[string]any, where EqFilter) ([]map[string]any, error)
	QueryDelete(ctx context.Context, table string, where EqFilter) ([]map[string]any, error)

	Ping(ctx context.Context) error
	Close() error
}
