package database

import "time"

// Role values observed in user_roles. Roles are free-text by design; these
// are the two the application assigns.
const (
	RoleAdmin    = "admin"
	RoleRetailer = "retailer"
)

// User represents a storefront account
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"` // never exposed in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile holds the business details for a user, 1:1 by shared id.
// Rows are created implicitly on first profile write.
type Profile struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	BusinessName    string    `json:"business_name"`
	BusinessAddress string    `json:"business_address"`
	Phone           string    `json:"phone"`
	BusinessType    string    `json:"business_type"`
	PaymentTerms    string    `json:"payment_terms"`
	Email           string    `json:"email"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UserRole is one role grant. A user may hold several rows; the admin check
// is an existence query, not a uniqueness constraint.
type UserRole struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductCategory names are unique case-insensitively by application rule,
// enforced in the resolver rather than by a DB constraint.
type ProductCategory struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProductCategory) TableName() string { return "product_categories" }

// Product is a catalog item. JSON-shaped columns are stored as serialized
// text; the fieldmap pipeline guarantees they hold valid JSON.
type Product struct {
	ID               uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name             string     `json:"name" gorm:"type:varchar(255);not null"`
	Description      string     `json:"description" gorm:"type:text"`
	Price            float64    `json:"price" gorm:"not null"`
	Stock            int        `json:"stock" gorm:"not null"`
	MinQuantity      int        `json:"min_quantity" gorm:"not null;default:1"`
	Category         *uint      `json:"category" gorm:"column:category;index"`
	Weight           *float64   `json:"weight"`
	BagSize          *string    `json:"bag_size" gorm:"type:varchar(100)"`
	NumberOfServings *int       `json:"number_of_servings"`
	ServingSize      *string    `json:"serving_size" gorm:"type:varchar(100)"`
	SKU              *string    `json:"sku" gorm:"column:sku;type:varchar(100)"`
	AminoAcidProfile string     `json:"amino_acid_profile" gorm:"type:text"` // JSON stored as text
	NutritionalInfo  string     `json:"nutritional_info" gorm:"type:text"`  // JSON stored as text
	Metadata         string     `json:"metadata" gorm:"type:text"`          // JSON stored as text
	Image            *string    `json:"image" gorm:"type:text"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Order ids are strings: client-supplied, ORDER-<epoch-ms> or ADMIN-<epoch-ms>.
type Order struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID          *uint     `json:"user_id" gorm:"index"`
	UserName        string    `json:"user_name" gorm:"type:varchar(255)"`
	Email           string    `json:"email" gorm:"type:varchar(255)"`
	Items           string    `json:"items" gorm:"type:text;not null"` // JSON stored as text
	Total           float64   `json:"total" gorm:"not null"`
	Status          string    `json:"status" gorm:"type:varchar(50);not null;default:'pending'"`
	PaymentMethod   string    `json:"payment_method" gorm:"type:varchar(100)"`
	ShippingAddress *string   `json:"shipping_address" gorm:"type:text"` // JSON stored as text
	ShippingOption  *string   `json:"shipping_option" gorm:"type:text"`  // JSON stored as text
	InvoiceStatus   *string   `json:"invoice_status" gorm:"type:varchar(50)"`
	InvoiceURL      *string   `json:"invoice_url" gorm:"type:text"`
	Notes           *string   `json:"notes" gorm:"type:text"`
	IsSample        bool      `json:"is_sample" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TrackingInfo is 1:1 with an order by business rule; writes go through an
// upsert, so the index is not unique.
type TrackingInfo struct {
	ID                    uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID               string     `json:"order_id" gorm:"type:varchar(64);index;not null"`
	TrackingNumber        *string    `json:"tracking_number" gorm:"type:varchar(255)"`
	Carrier               *string    `json:"carrier" gorm:"type:varchar(255)"`
	TrackingURL           *string    `json:"tracking_url" gorm:"type:text"`
	ShippedDate           *time.Time `json:"shipped_date"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (TrackingInfo) TableName() string { return "tracking_info" }

// EmailSettings is an append-only history table: every save inserts a row,
// reads take the most recent by created_at.
type EmailSettings struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountsEmail  string    `json:"accounts_email" gorm:"type:varchar(255)"`
	AdminEmail     string    `json:"admin_email" gorm:"type:varchar(255)"`
	DispatchEmail  string    `json:"dispatch_email" gorm:"type:varchar(255)"`
	NotifyAccounts bool      `json:"notify_accounts" gorm:"not null;default:true"`
	NotifyAdmin    bool      `json:"notify_admin" gorm:"not null;default:true"`
	NotifyDispatch bool      `json:"notify_dispatch" gorm:"not null;default:true"`
	NotifyCustomer bool      `json:"notify_customer" gorm:"not null;default:true"`
	CreatedAt      time.Time `json:"created_at"`
}

func (EmailSettings) TableName() string { return "email_settings" }

// XeroToken holds the OAuth tokens for the Xero connection. The active
// token is the most recently updated row; refresh updates it in place.
type XeroToken struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AccessToken  string    `json:"-" gorm:"type:text;not null"`
	RefreshToken string    `json:"-" gorm:"type:text;not null"`
	ExpiresAt    time.Time `json:"expires_at"`
	TenantID     string    `json:"tenant_id" gorm:"type:varchar(100)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ResetToken is a single-use password reset token.
type ResetToken struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Token     string    `json:"-" gorm:"type:varchar(128);uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// Marketing is a downloadable marketing asset record.
type Marketing struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	FilePath    string    `json:"file_path" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Marketing) TableName() string { return "marketing" }

// PricingTier is a wholesale discount band.
type PricingTier struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string    `json:"name" gorm:"type:varchar(255);not null"`
	DiscountPercent float64   `json:"discount_percent" gorm:"not null"`
	MinOrderValue   float64   `json:"min_order_value" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
}

// BusinessType labels a retailer's business category.
type BusinessType struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
}
