package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateOrder_RequiresItems(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signupUser(t, "buyer@example.com")

	for _, body := range []map[string]any{
		{"email": "buyer@example.com"},
		{"email": "buyer@example.com", "items": []any{}},
		{"email": "buyer@example.com", "items": "not json at all"},
	} {
		w := env.do(t, http.MethodPost, "/api/orders", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "items_required")
	}
}

func TestCreateOrder_ComputesTotalFromLinePrices(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signupUser(t, "buyer@example.com")

	w := env.do(t, http.MethodPost, "/api/orders", token, map[string]any{
		"email": "buyer@example.com",
		"items": []map[string]any{
			{"name": "Pea Protein", "unit_price": 10.5, "quantity": 2},
			{"name": "Rice Protein", "price": 4, "quantity": 3},
			{"name": "Hemp Protein", "product": map[string]any{"price": 7.25}},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	order := body["order"].(map[string]any)
	// 10.5*2 + 4*3 + 7.25*1
	assert.InDelta(t, 40.25, order["total"].(float64), 0.001)
	assert.True(t, strings.HasPrefix(order["id"].(string), "ORDER-"))
	assert.Equal(t, false, body["email_sent"])
}

func TestCreateOrder_ClientTotalWins(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signupUser(t, "buyer@example.com")

	w := env.do(t, http.MethodPost, "/api/orders", token, map[string]any{
		"email": "buyer@example.com",
		"items": []map[string]any{{"name": "Pea Protein", "unit_price": 10, "quantity": 1}},
		"total": 99.9,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	order := decodeBody(t, w)["order"].(map[string]any)
	assert.InDelta(t, 99.9, order["total"].(float64), 0.001)
}

func TestCreateOrder_ItemsStringTolerated(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signupUser(t, "buyer@example.com")

	w := env.do(t, http.MethodPost, "/api/orders", token, map[string]any{
		"email": "buyer@example.com",
		"items": `[{"name":"Pea Protein","unit_price":5,"quantity":4}]`,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	order := decodeBody(t, w)["order"].(map[string]any)
	assert.InDelta(t, 20, order["total"].(float64), 0.001)
}

func TestAdminCreateOrder_AddsShippingAndPrefix(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.adminUser(t, "admin@example.com")

	w := env.do(t, http.MethodPost, "/api/admin/orders", token, map[string]any{
		"email":          "buyer@example.com",
		"items":          []map[string]any{{"name": "Pea Protein", "unit_price": 10, "quantity": 2}},
		"shipping_price": 15.5,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	order := decodeBody(t, w)["order"].(map[string]any)
	assert.True(t, strings.HasPrefix(order["id"].(string), "ADMIN-"))
	assert.InDelta(t, 35.5, order["total"].(float64), 0.001)
}

func TestAdminCreateOrder_ForbiddenForRetailer(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signupUser(t, "buyer@example.com")

	w := env.do(t, http.MethodPost, "/api/admin/orders", token, map[string]any{
		"items": []map[string]any{{"name": "x", "unit_price": 1}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminUpdateOrder_PartialAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.do(t, http.MethodPost, "/api/admin/orders", admin, map[string]any{
		"email": "buyer@example.com",
		"items": []map[string]any{{"name": "Pea Protein", "unit_price": 10, "quantity": 1}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	id := decodeBody(t, w)["order"].(map[string]any)["id"].(string)

	w = env.do(t, http.MethodPut, "/api/admin/orders/"+id, admin, map[string]any{
		"status": "shipped",
		"notes":  "left at door",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	order := decodeBody(t, w)["order"].(map[string]any)
	assert.Equal(t, "shipped", order["status"])
	assert.Equal(t, "left at door", order["notes"])
	// untouched fields survive
	assert.InDelta(t, 10, order["total"].(float64), 0.001)

	w = env.do(t, http.MethodPut, "/api/admin/orders/ORDER-0", admin, map[string]any{"status": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestListOrders_ScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	buyerID, buyer := env.signupUser(t, "buyer@example.com")
	_, admin := env.adminUser(t, "admin@example.com")
	_ = buyerID

	w := env.do(t, http.MethodPost, "/api/orders", buyer, map[string]any{
		"email": "buyer@example.com",
		"items": []map[string]any{{"name": "Pea Protein", "unit_price": 1}},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/orders", admin, map[string]any{
		"email": "other@example.com",
		"items": []map[string]any{{"name": "Rice Protein", "unit_price": 2}},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/orders", buyer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER-")
	assert.NotContains(t, w.Body.String(), "ADMIN-")

	w = env.do(t, http.MethodGet, "/api/orders", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ADMIN-")
	assert.Contains(t, w.Body.String(), "ORDER-")
}

func TestGetOrder_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	_, buyer := env.signupUser(t, "buyer@example.com")
	_, stranger := env.signupUser(t, "stranger@example.com")
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.do(t, http.MethodPost, "/api/orders", buyer, map[string]any{
		"email": "buyer@example.com",
		"items": []map[string]any{{"name": "Pea Protein", "unit_price": 1}},
	})
	id := decodeBody(t, w)["order"].(map[string]any)["id"].(string)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/orders/"+id, buyer, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/orders/"+id, stranger, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/orders/"+id, admin, nil).Code)
}

func TestUpsertTracking_DerivesURLAndUpdatesInPlace(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.do(t, http.MethodPost, "/api/admin/orders", admin, map[string]any{
		"email": "buyer@example.com",
		"items": []map[string]any{{"name": "Pea Protein", "unit_price": 1}},
	})
	id := decodeBody(t, w)["order"].(map[string]any)["id"].(string)

	w = env.do(t, http.MethodPost, "/api/orders/"+id+"/tracking", admin, map[string]any{
		"carrier":         "Australia Post",
		"tracking_number": "AP123456",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	tracking := decodeBody(t, w)["tracking"].(map[string]any)
	assert.Equal(t, "https://auspost.com.au/mypost/track/#/details/AP123456", tracking["tracking_url"])
	firstID := tracking["id"]

	// second write replaces, same row
	w = env.do(t, http.MethodPost, "/api/orders/"+id+"/tracking", admin, map[string]any{
		"carrier":         "StarTrack",
		"tracking_number": "ST999",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	tracking = decodeBody(t, w)["tracking"].(map[string]any)
	assert.Equal(t, "https://track.startrack.com.au/ST999", tracking["tracking_url"])
	assert.Equal(t, firstID, tracking["id"])

	w = env.do(t, http.MethodGet, "/api/orders/"+id+"/tracking", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ST999")
}

func TestUpsertTracking_UnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.adminUser(t, "admin@example.com")

	w := env.do(t, http.MethodPost, "/api/orders/ORDER-0/tracking", admin, map[string]any{
		"carrier": "DHL", "tracking_number": "D1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeriveTrackingURL(t *testing.T) {
	num := "N123"
	for _, tc := range []struct {
		carrier string
		want    string
	}{
		{"Australia Post", "https://auspost.com.au/mypost/track/#/details/N123"},
		{"auspost", "https://auspost.com.au/mypost/track/#/details/N123"},
		{"StarTrack Express", "https://track.startrack.com.au/N123"},
		{"star track", "https://track.startrack.com.au/N123"},
	} {
		carrier := tc.carrier
		got := deriveTrackingURL(&carrier, &num)
		if assert.NotNil(t, got, carrier) {
			assert.Equal(t, tc.want, *got)
		}
	}

	dhl := "DHL"
	assert.Nil(t, deriveTrackingURL(&dhl, &num))
	assert.Nil(t, deriveTrackingURL(nil, &num))
	empty := ""
	aus := "auspost"
	assert.Nil(t, deriveTrackingURL(&aus, &empty))
}

func TestOrderTotal_QuantityDefaultsToOne(t *testing.T) {
	items := []any{
		map[string]any{"unit_price": 3.0},
		map[string]any{"unit_price": 2.0, "quantity": 0},
		"garbage entry",
	}
	assert.InDelta(t, 5, orderTotal(items, 0), 0.001)
	assert.InDelta(t, 15, orderTotal(items, 10), 0.001)
}
