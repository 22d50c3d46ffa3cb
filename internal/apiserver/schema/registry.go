package schema

import (
	"github.com/ordermill/storefront/internal/common/cnst"
)

// registry declares every table the API writes dynamically. Column sets
// mirror the gorm models; adding a column means adding it in both places.
var registry = map[string]*Table{
	cnst.TableUsers: newTable(cnst.TableUsers,
		Column{Name: "id", Kind: KindInteger, HasDefault: true},
		Column{Name: "email", Kind: KindText},
		Column{Name: "password_hash", Kind: KindText},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
		Column{Name: "updated_at", Kind: KindTimestamp, HasDefault: true},
	),
	cnst.TableProfiles: newTable(cnst.TableProfiles,
		Column{Name: "id", Kind: KindInteger},
		Column{Name: "business_name", Kind: KindText, Nullable: true},
		Column{Name: "business_address", Kind: KindText, Nullable: true},
		Column{Name: "phone", Kind: KindText, Nullable: true},
		Column{Name: "business_type", Kind: KindText, Nullable: true},
		Column{Name: "payment_terms", Kind: KindText, Nullable: true},
		Column{Name: "email", Kind: KindText, Nullable: true},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
		Column{Name: "updated_at", Kind: KindTimestamp, HasDefault: true},
	),
	cnst.TableUserRoles: newTable(cnst.TableUserRoles,
		Column{Name: "id", Kind: KindInteger, HasDefault: true},
		Column{Name: "user_id", Kind: KindInteger},
		Column{Name: "role", Kind: KindText},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
	),
	cnst.TableProductCategories: newTable(cnst.TableProductCategories,
		Column{Name: "id", Kind: KindInteger, HasDefault: true},
		Column{Name: "name", Kind: KindText},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
	),
	cnst.TableProducts: newTable(cnst.TableProducts,
		Column{Name: "id", Kind: KindInteger, HasDefault: true},
		Column{Name: "name", Kind: KindText},
		Column{Name: "description", Kind: KindText, Nullable: true},
		Column{Name: "price", Kind: KindNumeric},
		Column{Name: "stock", Kind: KindInteger},
		Column{Name: "min_quantity", Kind: KindInteger, HasDefault: true},
		Column{Name: "category", Kind: KindInteger, Nullable: true},
		Column{Name: "weight", Kind: KindNumeric, Nullable: true},
		Column{Name: "bag_size", Kind: KindText, Nullable: true},
		Column{Name: "number_of_servings", Kind: KindInteger, Nullable: true},
		Column{Name: "serving_size", Kind: KindText, Nullable: true},
		Column{Name: "sku", Kind: KindText, Nullable: true},
		Column{Name: "amino_acid_profile", Kind: KindJSON, Nullable: true},
		Column{Name: "nutritional_info", Kind: KindJSON, Nullable: true},
		Column{Name: "metadata", Kind: KindJSON, Nullable: true},
		Column{Name: "image", Kind: KindText, Nullable: true},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
		Column{Name: "updated_at", Kind: KindTimestamp, HasDefault: true},
	),
	cnst.TableOrders: newTable(cnst.TableOrders,
		Column{Name: "id", Kind: KindText},
		Column{Name: "user_id", Kind: KindInteger, Nullable: true},
		Column{Name: "user_name", Kind: KindText, Nullable: true},
		Column{Name: "email", Kind: KindText, Nullable: true},
		Column{Name: "items", Kind: KindJSON},
		Column{Name: "total", Kind: KindNumeric},
		Column{Name: "status", Kind: KindText, HasDefault: true},
		Column{Name: "payment_method", Kind: KindText, Nullable: true},
		Column{Name: "shipping_address", Kind: KindJSON, Nullable: true},
		Column{Name: "shipping_option", Kind: KindJSON, Nullable: true},
		Column{Name: "invoice_status", Kind: KindText, Nullable: true},
		Column{Name: "invoice_url", Kind: KindText, Nullable: true},
		Column{Name: "notes", Kind: KindText, Nullable: true},
		Column{Name: "is_sample", Kind: KindBoolean, HasDefault: true},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
		Column{Name: "updated_at", Kind: KindTimestamp, HasDefault: true},
	),
	cnst.TableTrackingInfo: newTable(cnst.TableTrackingInfo,
		Column{Name: "id", Kind: KindInteger, HasDefault: true},
		Column{Name: "order_id", Kind: KindText},
		Column{Name: "tracking_number", Kind: KindText, Nullable: true},
		Column{Name: "carrier", Kind: KindText, Nullable: true},
		Column{Name: "tracking_url", Kind: KindText, Nullable: true},
		Column{Name: "shipped_date", Kind: KindTimestamp, Nullable: true},
		Column{Name: "estimated_delivery_date", Kind: KindTimestamp, Nullable: true},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
		Column{Name: "updated_at", Kind: KindTimestamp, HasDefault: true},
	),
	cnst.TableMarketing: newTable(cnst.TableMarketing,
		Column{Name: "id", Kind: KindInteger, HasDefault: true},
		Column{Name: "title", Kind: KindText},
		Column{Name: "description", Kind: KindText, Nullable: true},
		Column{Name: "file_path", Kind: KindText, Nullable: true},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
	),
	cnst.TablePricingTiers: newTable(cnst.TablePricingTiers,
		Column{Name: "id", Kind: KindInteger, HasDefault: true},
		Column{Name: "name", Kind: KindText},
		Column{Name: "discount_percent", Kind: KindNumeric},
		Column{Name: "min_order_value", Kind: KindNumeric},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
	),
	cnst.TableBusinessTypes: newTable(cnst.TableBusinessTypes,
		Column{Name: "id", Kind: KindInteger, HasDefault: true},
		Column{Name: "name", Kind: KindText},
		Column{Name: "created_at", Kind: KindTimestamp, HasDefault: true},
	),
}

// queryAllowlist is the set of tables the generic query endpoint may touch.
// Requests naming any other table fail open to an empty result.
var queryAllowlist = map[string]bool{
	cnst.TableUsers:             true,
	cnst.TableProducts:          true,
	cnst.TableOrders:            true,
	cnst.TableTrackingInfo:      true,
	cnst.TableMarketing:         true,
	cnst.TableProfiles:          true,
	cnst.TableUserRoles:         true,
	cnst.TablePricingTiers:      true,
	cnst.TableBusinessTypes:     true,
	cnst.TableProductCategories: true,
}

// Lookup returns the table descriptor for the given name.
func Lookup(table string) (*Table, bool) {
	t, ok := registry[table]
	return t, ok
}

// QueryAllowed reports whether the generic query endpoint may access table.
func QueryAllowed(table string) bool {
	return queryAllowlist[table]
}
