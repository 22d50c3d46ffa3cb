package fieldmap

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// The admin UI and older SPA builds send product fields under several
// spellings. These tables translate them to the database column names.
// A mapping only fires when the source key is present and the target absent;
// the source key is deleted afterwards, which makes the mapping idempotent.
var productCamelToDB = map[string]string{
	"aminoAcidProfile": "amino_acid_profile",
	"nutritionalInfo":  "nutritional_info",
	"minQuantity":      "min_quantity",
	"bagSize":          "bag_size",
	"numberOfServings": "number_of_servings",
	"servingSize":      "serving_size",
	"sku":              "sku",
}

var productAliases = map[string]string{
	"amino":     "amino_acid_profile",
	"nutrients": "nutritional_info",
}

// productJSONFields are the JSON-capable product columns; amino and
// nutrition default to arrays, metadata to an object.
var productJSONFields = []string{"amino_acid_profile", "nutritional_info", "metadata"}

// orderJSONFields are the JSON-capable order columns.
var orderJSONFields = []string{"items", "shipping_address", "shipping_option"}

func remap(obj map[string]any, table map[string]string) map[string]any {
	for from, to := range table {
		v, ok := obj[from]
		if !ok {
			continue
		}
		if _, exists := obj[to]; !exists {
			obj[to] = v
		}
		delete(obj, from)
	}
	return obj
}

// MapProductClientCamelToDB rewrites camelCase product keys to their
// snake_case column names.
func MapProductClientCamelToDB(obj map[string]any) map[string]any {
	return remap(obj, productCamelToDB)
}

// MapProductAliases rewrites UI-only aliases (amino, nutrients) to their
// column names.
func MapProductAliases(obj map[string]any) map[string]any {
	return remap(obj, productAliases)
}

// ProductJSONDefault returns the fallback value for a JSON product column:
// an array for the amino/nutrition fields, an object otherwise.
func ProductJSONDefault(field string) any {
	if field == "amino_acid_profile" || field == "nutritional_info" {
		return []any{}
	}
	return map[string]any{}
}

// CoerceProductJSONFields guarantees that every JSON-capable product field
// is a structured value, never a raw JSON string. Strings are trimmed and
// parsed; empty or invalid strings fall back to the field default.
// Non-string values (including nil) pass through untouched.
func CoerceProductJSONFields(obj map[string]any) map[string]any {
	for _, field := range productJSONFields {
		v, ok := obj[field]
		if !ok || v == nil {
			continue
		}
		s, isString := v.(string)
		if !isString {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || !gjson.Valid(s) {
			obj[field] = ProductJSONDefault(field)
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			obj[field] = ProductJSONDefault(field)
			continue
		}
		obj[field] = parsed
	}
	return obj
}

// NormalizeProduct runs the full product pipeline: aliases, camelCase
// mapping, then JSON coercion.
func NormalizeProduct(obj map[string]any) map[string]any {
	return CoerceProductJSONFields(MapProductClientCamelToDB(MapProductAliases(obj)))
}

// CoerceOrderJSONFields parses stringified JSON order columns. Unlike the
// product path, invalid JSON becomes nil here; the two behaviors diverge in
// the API contract and are kept separate deliberately.
func CoerceOrderJSONFields(obj map[string]any) map[string]any {
	for _, field := range orderJSONFields {
		v, ok := obj[field]
		if !ok || v == nil {
			continue
		}
		s, isString := v.(string)
		if !isString {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || !gjson.Valid(s) {
			obj[field] = nil
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			obj[field] = nil
			continue
		}
		obj[field] = parsed
	}
	return obj
}

// CoerceTotal converts a client-supplied total to a finite number,
// defaulting to 0.
func CoerceTotal(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToNumber converts a value to a float, returning ok=false for
// unparseable input.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ToInt converts a value to an int, returning ok=false for unparseable input.
func ToInt(v any) (int, bool) {
	f, ok := ToNumber(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// ParseItems tolerantly decodes an order items payload: a JSON array, a
// stringified JSON array, or anything else (which yields nil).
func ParseItems(v any) []any {
	switch items := v.(type) {
	case []any:
		return items
	case string:
		s := strings.TrimSpace(items)
		if s == "" || !gjson.Valid(s) {
			return nil
		}
		var parsed []any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil
		}
		return parsed
	default:
		return nil
	}
}
