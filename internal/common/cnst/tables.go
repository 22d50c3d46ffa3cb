package cnst

// Table names used by the generic query endpoint and the schema registry.
const (
	TableUsers             = "users"
	TableProfiles          = "profiles"
	TableUserRoles         = "user_roles"
	TableProducts          = "products"
	TableProductCategories = "product_categories"
	TableOrders            = "orders"
	TableTrackingInfo      = "tracking_info"
	TableMarketing         = "marketing"
	TablePricingTiers      = "pricing_tiers"
	TableBusinessTypes     = "business_types"
	TableEmailSettings     = "email_settings"
	TableXeroTokens        = "xero_tokens"
	TableResetTokens       = "reset_tokens"
)
