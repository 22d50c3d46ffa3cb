package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStore implements the Database interface using gorm
type DBStore struct {
	logger *zap.Logger
	db     *gorm.DB
}

var _ Database = (*DBStore)(nil)

// DatabaseType represents the supported database types
type DatabaseType string

const (
	PostgreSQL DatabaseType = "postgres"
	MySQL      DatabaseType = "mysql"
	SQLite     DatabaseType = "sqlite"
)

// ErrInvalidDatabaseType is returned when the configured driver is unknown
var ErrInvalidDatabaseType = errors.New("invalid database type")

// NewDBStore creates a new database-backed store and migrates the schema
func NewDBStore(logger *zap.Logger, dbType DatabaseType, dsn string) (*DBStore, error) {
	logger = logger.Named("apiserver.store.db")

	var dialector gorm.Dialector
	switch dbType {
	case PostgreSQL:
		dialector = postgres.Open(dsn)
	case MySQL:
		dialector = mysql.Open(dsn)
	case SQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, ErrInvalidDatabaseType
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto migrate the schema
	if err := db.AutoMigrate(
		&User{},
		&Profile{},
		&UserRole{},
		&ProductCategory{},
		&Product{},
		&Order{},
		&TrackingInfo{},
		&EmailSettings{},
		&XeroToken{},
		&ResetToken{},
		&Marketing{},
		&PricingTier{},
		&BusinessType{},
	); err != nil {
		return nil, err
	}

	return &DBStore{
		logger: logger,
		db:     db,
	}, nil
}

// conn returns the transaction bound to ctx, or the root connection.
func (s *DBStore) conn(ctx context.Context) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Transaction implements Database.Transaction
func (s *DBStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateUser implements Database.CreateUser
func (s *DBStore) CreateUser(ctx context.Context, u *User) error {
	return s.conn(ctx).Create(u).Error
}

// GetUserByEmail implements Database.GetUserByEmail
func (s *DBStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}

// GetUserByID implements Database.GetUserByID
func (s *DBStore) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}

// UpdateUser implements Database.UpdateUser
func (s *DBStore) UpdateUser(ctx context.Context, u *User) error {
	return s.conn(ctx).Save(u).Error
}

// ListUsers implements Database.ListUsers
func (s *DBStore) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := s.conn(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser implements Database.DeleteUser. Roles, profile and reset
// tokens go with the user in one transaction.
func (s *DBStore) DeleteUser(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		tx := s.conn(ctx)
		if err := tx.Where("user_id = ?", id).Delete(&UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&ResetToken{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Profile{}, id).Error; err != nil {
			return err
		}
		result := tx.Delete(&User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UpsertProfile implements Database.UpsertProfile
func (s *DBStore) UpsertProfile(ctx context.Context, p *Profile) error {
	return s.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"business_name", "business_address", "phone",
			"business_type", "payment_terms", "email", "updated_at",
		}),
	}).Create(p).Error
}

// GetProfile implements Database.GetProfile
func (s *DBStore) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	var p Profile
	if err := s.conn(ctx).First(&p, userID).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &p, nil
}

// AddUserRole implements Database.AddUserRole
func (s *DBStore) AddUserRole(ctx context.Context, userID uint, role string) error {
	return s.conn(ctx).Create(&UserRole{UserID: userID, Role: role}).Error
}

// ReplaceUserRoles implements Database.ReplaceUserRoles
func (s *DBStore) ReplaceUserRoles(ctx context.Context, userID uint, roles []string) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		tx := s.conn(ctx)
		if err := tx.Where("user_id = ?", userID).Delete(&UserRole{}).Error; err != nil {
			return err
		}
		for _, role := range roles {
			if err := tx.Create(&UserRole{UserID: userID, Role: role}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUserRoles implements Database.GetUserRoles
func (s *DBStore) GetUserRoles(ctx context.Context, userID uint) ([]string, error) {
	var roles []string
	err := s.conn(ctx).Model(&UserRole{}).Where("user_id = ?", userID).Pluck("role", &roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// HasRole implements Database.HasRole
func (s *DBStore) HasRole(ctx context.Context, userID uint, role string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateResetToken implements Database.CreateResetToken
func (s *DBStore) CreateResetToken(ctx context.Context, t *ResetToken) error {
	return s.conn(ctx).Create(t).Error
}

// GetResetToken implements Database.GetResetToken
func (s *DBStore) GetResetToken(ctx context.Context, token string) (*ResetToken, error) {
	var t ResetToken
	if err := s.conn(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

// MarkResetTokenUsed implements Database.MarkResetTokenUsed
func (s *DBStore) MarkResetTokenUsed(ctx context.Context, id uint) error {
	return s.conn(ctx).Model(&ResetToken{}).Where("id = ?", id).Update("used", true).Error
}

// ListProducts implements Database.ListProducts
func (s *DBStore) ListProducts(ctx context.Context) ([]*Product, error) {
	var products []*Product
	if err := s.conn(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct implements Database.GetProduct
func (s *DBStore) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var p Product
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &p, nil
}

// DeleteProduct implements Database.DeleteProduct
func (s *DBStore) DeleteProduct(ctx context.Context, id uint) error {
	result := s.conn(ctx).Delete(&Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCategories implements Database.ListCategories
func (s *DBStore) ListCategories(ctx context.Context) ([]*ProductCategory, error) {
	var categories []*ProductCategory
	if err := s.conn(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory implements Database.GetCategory
func (s *DBStore) GetCategory(ctx context.Context, id uint) (*ProductCategory, error) {
	var c ProductCategory
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &c, nil
}

// CreateCategory implements Database.CreateCategory
func (s *DBStore) CreateCategory(ctx context.Context, c *ProductCategory) error {
	return s.conn(ctx).Create(c).Error
}

// UpdateCategory implements Database.UpdateCategory
func (s *DBStore) UpdateCategory(ctx context.Context, c *ProductCategory) error {
	result := s.conn(ctx).Model(&ProductCategory{}).Where("id = ?", c.ID).Update("name", c.Name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory implements Database.DeleteCategory
func (s *DBStore) DeleteCategory(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		// Detach products first so the category row can go
		if err := s.conn(ctx).Model(&Product{}).
			Where("category = ?", id).
			Update("category", nil).Error; err != nil {
			return err
		}
		result := s.conn(ctx).Delete(&ProductCategory{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ResolveCategoryID implements Database.ResolveCategoryID
func (s *DBStore) ResolveCategoryID(ctx context.Context, value any) (*uint, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case float64:
		id := uint(v)
		return &id, nil
	case int:
		id := uint(v)
		return &id, nil
	case uint:
		id := v
		return &id, nil
	case string:
		name := strings.TrimSpace(v)
		if name == "" {
			return nil, nil
		}
		var id uint
		err := s.Transaction(ctx, func(ctx context.Context) error {
			var c ProductCategory
			err := s.conn(ctx).Where("LOWER(name) = LOWER(?)", name).First(&c).Error
			if err == nil {
				id = c.ID
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			c = ProductCategory{Name: name}
			if err := s.conn(ctx).Create(&c).Error; err != nil {
				return err
			}
			id = c.ID
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &id, nil
	default:
		return nil, nil
	}
}

// CreateOrder implements Database.CreateOrder
func (s *DBStore) CreateOrder(ctx context.Context, o *Order) error {
	return s.conn(ctx).Create(o).Error
}

// GetOrder implements Database.GetOrder
func (s *DBStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o Order
	if err := s.conn(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &o, nil
}

// ListOrders implements Database.ListOrders
func (s *DBStore) ListOrders(ctx context.Context) ([]*Order, error) {
	var orders []*Order
	if err := s.conn(ctx).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrdersByUser implements Database.ListOrdersByUser
func (s *DBStore) ListOrdersByUser(ctx context.Context, userID uint) ([]*Order, error) {
	var orders []*Order
	if err := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderFields implements Database.UpdateOrderFields
func (s *DBStore) UpdateOrderFields(ctx context.Context, id string, fields map[string]any) (*Order, error) {
	var updated Order
	err := s.Transaction(ctx, func(ctx context.Context) error {
		if len(fields) > 0 {
			fields["updated_at"] = time.Now()
			result := s.conn(ctx).Model(&Order{}).Where("id = ?", id).Updates(fields)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		return s.conn(ctx).Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &updated, nil
}

// UpsertTracking implements Database.UpsertTracking
func (s *DBStore) UpsertTracking(ctx context.Context, t *TrackingInfo) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		var existing TrackingInfo
		err := s.conn(ctx).Where("order_id = ?", t.OrderID).First(&existing).Error
		if err == nil {
			t.ID = existing.ID
			t.CreatedAt = existing.CreatedAt
			return s.conn(ctx).Save(t).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.conn(ctx).Create(t).Error
	})
}

// GetTracking implements Database.GetTracking
func (s *DBStore) GetTracking(ctx context.Context, orderID string) (*TrackingInfo, error) {
	var t TrackingInfo
	if err := s.conn(ctx).Where("order_id = ?", orderID).First(&t).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

// CreateMarketing implements Database.CreateMarketing
func (s *DBStore) CreateMarketing(ctx context.Context, m *Marketing) error {
	return s.conn(ctx).Create(m).Error
}

// ListMarketing implements Database.ListMarketing
func (s *DBStore) ListMarketing(ctx context.Context) ([]*Marketing, error) {
	var rows []*Marketing
	if err := s.conn(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetMarketing implements Database.GetMarketing
func (s *DBStore) GetMarketing(ctx context.Context, id uint) (*Marketing, error) {
	var m Marketing
	if err := s.conn(ctx).First(&m, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &m, nil
}

// DeleteMarketing implements Database.DeleteMarketing
func (s *DBStore) DeleteMarketing(ctx context.Context, id uint) error {
	result := s.conn(ctx).Delete(&Marketing{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveEmailSettings implements Database.SaveEmailSettings
func (s *DBStore) SaveEmailSettings(ctx context.Context, settings *EmailSettings) error {
	// History table, always insert
	return s.conn(ctx).Create(settings).Error
}

// GetLatestEmailSettings implements Database.GetLatestEmailSettings
func (s *DBStore) GetLatestEmailSettings(ctx context.Context) (*EmailSettings, error) {
	var settings EmailSettings
	if err := s.conn(ctx).Order("created_at DESC, id DESC").First(&settings).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &settings, nil
}

// SaveXeroToken implements Database.SaveXeroToken
func (s *DBStore) SaveXeroToken(ctx context.Context, t *XeroToken) error {
	return s.conn(ctx).Create(t).Error
}

// GetActiveXeroToken implements Database.GetActiveXeroToken
func (s *DBStore) GetActiveXeroToken(ctx context.Context) (*XeroToken, error) {
	var t XeroToken
	if err := s.conn(ctx).Order("updated_at DESC, id DESC").First(&t).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

// UpdateXeroToken implements Database.UpdateXeroToken
func (s *DBStore) UpdateXeroToken(ctx context.Context, t *XeroToken) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		return s.conn(ctx).Model(&XeroToken{}).Where("id = ?", t.ID).Updates(map[string]any{
			"access_token":  t.AccessToken,
			"refresh_token": t.RefreshToken,
			"expires_at":    t.ExpiresAt,
			"tenant_id":     t.TenantID,
			"updated_at":    time.Now(),
		}).Error
	})
}

// QuerySelect implements Database.QuerySelect
func (s *DBStore) QuerySelect(ctx context.Context, table string, filters []EqFilter) ([]map[string]any, error) {
	tx := s.conn(ctx).Table(table)
	for _, f := range filters {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value})
	}
	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryInsert implements Database.QueryInsert
func (s *DBStore) QueryInsert(ctx context.Context, table string, values map[string]any) (map[string]any, error) {
	row := make(map[string]any, len(values))
	for k, v := range values {
		row[k] = v
	}
	// RETURNING backfills generated columns on dialects that support it
	if err := s.conn(ctx).Table(table).Clauses(clause.Returning{}).Create(&row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// QueryUpdate implements Database.QueryUpdate
func (s *DBStore) QueryUpdate(ctx context.Context, table string, set map[string]any, where EqFilter) ([]map[string]any, error) {
	rows := []map[string]any{}
	err := s.Transaction(ctx, func(ctx context.Context) error {
		cond := clause.Eq{Column: clause.Column{Name: where.Column}, Value: where.Value}
		// Pin the matching rows by id first so the result reflects the
		// update even when the filtered column itself changed.
		var ids []any
		if err := s.conn(ctx).Table(table).Where(cond).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := s.conn(ctx).Table(table).Where(cond).Updates(set).Error; err != nil {
			return err
		}
		return s.conn(ctx).Table(table).Where("id IN ?", ids).Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryDelete implements Database.QueryDelete
func (s *DBStore) QueryDelete(ctx context.Context, table string, where EqFilter) ([]map[string]any, error) {
	var rows []map[string]any
	err := s.Transaction(ctx, func(ctx context.Context) error {
		cond := clause.Eq{Column: clause.Column{Name: where.Column}, Value: where.Value}
		if err := s.conn(ctx).Table(table).Where(cond).Find(&rows).Error; err != nil {
			return err
		}
		return s.conn(ctx).Table(table).Where(cond).Delete(nil).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Ping implements Database.Ping
func (s *DBStore) Ping(ctx context.Context) error {
	sqlDB, err := s.conn(ctx).DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close implements Database.Close
func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
