package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newSQLiteStore(t *testing.T) *DBStore {
	t.Helper()
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "store.db")
	s, err := NewDBStore(zap.NewNop(), SQLite, dbPath)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestDBStore_UserLifecycle(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	u := &User{Email: "owner@example.com", PasswordHash: "hash"}
	assert.NoError(t, s.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	// Email lookup is case and whitespace insensitive on the input side
	got, err := s.GetUserByEmail(ctx, "  owner@example.com ")
	assert.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.AddUserRole(ctx, u.ID, RoleRetailer))
	assert.NoError(t, s.AddUserRole(ctx, u.ID, RoleAdmin))

	roles, err := s.GetUserRoles(ctx, u.ID)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{RoleRetailer, RoleAdmin}, roles)

	isAdmin, err := s.HasRole(ctx, u.ID, RoleAdmin)
	assert.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = s.HasRole(ctx, 9999, RoleAdmin)
	assert.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestDBStore_ProfileUpsert(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	u := &User{Email: "p@example.com", PasswordHash: "h"}
	assert.NoError(t, s.CreateUser(ctx, u))

	p := &Profile{ID: u.ID, BusinessName: "First Foods", Phone: "0400000000"}
	assert.NoError(t, s.UpsertProfile(ctx, p))

	p.BusinessName = "First Foods Pty Ltd"
	assert.NoError(t, s.UpsertProfile(ctx, p))

	got, err := s.GetProfile(ctx, u.ID)
	assert.NoError(t, err)
	assert.Equal(t, "First Foods Pty Ltd", got.BusinessName)
	assert.Equal(t, "0400000000", got.Phone)
}

func TestDBStore_ResolveCategoryID(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	// Numeric values pass through untouched
	id, err := s.ResolveCategoryID(ctx, float64(7))
	assert.NoError(t, err)
	if assert.NotNil(t, id) {
		assert.Equal(t, uint(7), *id)
	}

	// Unknown name creates the category
	first, err := s.ResolveCategoryID(ctx, "Proteins")
	assert.NoError(t, err)
	assert.NotNil(t, first)

	// Same name resolves to the same id regardless of case
	again, err := s.ResolveCategoryID(ctx, "proteins")
	assert.NoError(t, err)
	if assert.NotNil(t, again) {
		assert.Equal(t, *first, *again)
	}

	upper, err := s.ResolveCategoryID(ctx, "PROTEINS")
	assert.NoError(t, err)
	if assert.NotNil(t, upper) {
		assert.Equal(t, *first, *upper)
	}

	// No duplicate row was created
	cats, err := s.ListCategories(ctx)
	assert.NoError(t, err)
	assert.Len(t, cats, 1)

	// Nil and blank inputs resolve to no category
	id, err = s.ResolveCategoryID(ctx, nil)
	assert.NoError(t, err)
	assert.Nil(t, id)

	id, err = s.ResolveCategoryID(ctx, "   ")
	assert.NoError(t, err)
	assert.Nil(t, id)
}

func TestDBStore_DeleteCategoryDetachesProducts(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	cat := &ProductCategory{Name: "Blends"}
	assert.NoError(t, s.CreateCategory(ctx, cat))

	p := &Product{Name: "Vanilla Blend", Price: 39.95, Stock: 10, MinQuantity: 1,
		Category: &cat.ID, AminoAcidProfile: "[]", NutritionalInfo: "[]", Metadata: "{}"}
	_, err := s.QueryInsert(ctx, "products", map[string]any{
		"name": p.Name, "price": p.Price, "stock": p.Stock, "min_quantity": 1,
		"category": cat.ID, "amino_acid_profile": "[]", "nutritional_info": "[]",
		"metadata": "{}", "created_at": time.Now(), "updated_at": time.Now(),
	})
	assert.NoError(t, err)

	assert.NoError(t, s.DeleteCategory(ctx, cat.ID))

	products, err := s.ListProducts(ctx)
	assert.NoError(t, err)
	if assert.Len(t, products, 1) {
		assert.Nil(t, products[0].Category)
	}
	assert.ErrorIs(t, s.DeleteCategory(ctx, cat.ID), ErrNotFound)
}

func TestDBStore_OrderUpdateAndTrackingUpsert(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	o := &Order{
		ID:     "ORDER-1756700000000",
		Email:  "buyer@example.com",
		Items:  `[{"id":1,"quantity":2}]`,
		Total:  79.90,
		Status: "pending",
	}
	assert.NoError(t, s.CreateOrder(ctx, o))

	updated, err := s.UpdateOrderFields(ctx, o.ID, map[string]any{"status": "shipped"})
	assert.NoError(t, err)
	assert.Equal(t, "shipped", updated.Status)
	assert.Equal(t, o.Items, updated.Items)

	_, err = s.UpdateOrderFields(ctx, "ORDER-missing", map[string]any{"status": "shipped"})
	assert.ErrorIs(t, err, ErrNotFound)

	// First write inserts
	assert.NoError(t, s.UpsertTracking(ctx, &TrackingInfo{
		OrderID:        o.ID,
		TrackingNumber: strPtr("ABC123"),
		Carrier:        strPtr("Australia Post"),
	}))
	first, err := s.GetTracking(ctx, o.ID)
	assert.NoError(t, err)

	// Second write updates the same row
	assert.NoError(t, s.UpsertTracking(ctx, &TrackingInfo{
		OrderID:        o.ID,
		TrackingNumber: strPtr("XYZ999"),
		Carrier:        strPtr("StarTrack"),
	}))
	second, err := s.GetTracking(ctx, o.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "XYZ999", *second.TrackingNumber)

	rows, err := s.QuerySelect(ctx, "tracking_info", []EqFilter{{Column: "order_id", Value: o.ID}})
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDBStore_EmailSettingsHistory(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	_, err := s.GetLatestEmailSettings(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.SaveEmailSettings(ctx, &EmailSettings{
		AdminEmail: "old@example.com", NotifyAdmin: true, NotifyCustomer: true,
	}))
	assert.NoError(t, s.SaveEmailSettings(ctx, &EmailSettings{
		AdminEmail: "new@example.com", NotifyAdmin: false, NotifyCustomer: true,
	}))

	got, err := s.GetLatestEmailSettings(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", got.AdminEmail)
	assert.False(t, got.NotifyAdmin)

	// Both rows survive, it is a history table
	rows, err := s.QuerySelect(ctx, "email_settings", nil)
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDBStore_XeroTokenRefresh(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	tok := &XeroToken{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(30 * time.Minute),
		TenantID:     "tenant-a",
	}
	assert.NoError(t, s.SaveXeroToken(ctx, tok))

	tok.AccessToken = "access-2"
	tok.RefreshToken = "refresh-2"
	assert.NoError(t, s.UpdateXeroToken(ctx, tok))

	got, err := s.GetActiveXeroToken(ctx)
	assert.NoError(t, err)
	assert.Equal(t, tok.ID, got.ID)
	assert.Equal(t, "access-2", got.AccessToken)
	assert.Equal(t, "refresh-2", got.RefreshToken)
}

func TestDBStore_GenericQueryRoundtrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	inserted, err := s.QueryInsert(ctx, "business_types", map[string]any{
		"name": "Gym", "created_at": time.Now(),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Gym", inserted["name"])

	rows, err := s.QuerySelect(ctx, "business_types", []EqFilter{{Column: "name", Value: "Gym"}})
	assert.NoError(t, err)
	assert.Len(t, rows, 1)

	// Updated rows come back even when the filtered column itself changed
	updated, err := s.QueryUpdate(ctx, "business_types",
		map[string]any{"name": "Fitness"}, EqFilter{Column: "name", Value: "Gym"})
	assert.NoError(t, err)
	if assert.Len(t, updated, 1) {
		assert.Equal(t, "Fitness", updated[0]["name"])
	}

	updated, err = s.QueryUpdate(ctx, "business_types",
		map[string]any{"name": "Cafe"}, EqFilter{Column: "name", Value: "Gym"})
	assert.NoError(t, err)
	assert.Empty(t, updated)

	deleted, err := s.QueryDelete(ctx, "business_types", EqFilter{Column: "name", Value: "Fitness"})
	assert.NoError(t, err)
	assert.Len(t, deleted, 1)

	rows, err = s.QuerySelect(ctx, "business_types", nil)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDBStore_TransactionRollback(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.CreateUser(ctx, &User{Email: "tx@example.com", PasswordHash: "h"}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = s.GetUserByEmail(ctx, "tx@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
