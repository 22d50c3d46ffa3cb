package xero

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/apiserver/fieldmap"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// lineItem is one line of an ACCREC invoice
type lineItem struct {
	Description string  `json:"Description"`
	Quantity    float64 `json:"Quantity"`
	UnitAmount  float64 `json:"UnitAmount"`
	AccountCode string  `json:"AccountCode,omitempty"`
	TaxType     string  `json:"TaxType,omitempty"`
}

type invoice struct {
	Type            string     `json:"Type"`
	Contact         contact    `json:"Contact"`
	Date            string     `json:"Date"`
	DueDate         string     `json:"DueDate"`
	Reference       string     `json:"Reference"`
	Status          string     `json:"Status"`
	LineItems       []lineItem `json:"LineItems"`
	BrandingThemeID string     `json:"BrandingThemeID,omitempty"`
}

type contact struct {
	Name         string `json:"Name"`
	EmailAddress string `json:"EmailAddress,omitempty"`
}

// InvoiceResult describes a created invoice
type InvoiceResult struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	OnlineURL     string `json:"online_url,omitempty"`
}

// buildLineItems turns the stored order items into invoice lines. Each item
// tolerates the same loose shapes the order path accepts.
func (c *Client) buildLineItems(order *database.Order) ([]lineItem, error) {
	items := fieldmap.ParseItems(order.Items)
	if len(items) == 0 {
		return nil, errors.New("order has no items")
	}

	lines := make([]lineItem, 0, len(items)+1)
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		desc := firstString(item, "name", "description", "product_name")
		if desc == "" {
			if nested, ok := item["product"].(map[string]any); ok {
				desc = firstString(nested, "name", "description")
			}
		}
		if desc == "" {
			desc = "Item"
		}
		qty, ok := fieldmap.ToNumber(item["quantity"])
		if !ok || qty <= 0 {
			qty = 1
		}
		price := lineUnitPrice(item)

		lines = append(lines, lineItem{
			Description: desc,
			Quantity:    qty,
			UnitAmount:  price,
			AccountCode: c.cfg.DefaultAccountCode,
			TaxType:     c.cfg.TaxCodeProducts,
		})
	}
	if len(lines) == 0 {
		return nil, errors.New("order has no usable items")
	}

	if price, ok := shippingPrice(order.ShippingOption); ok && price > 0 {
		lines = append(lines, lineItem{
			Description: "Shipping",
			Quantity:    1,
			UnitAmount:  price,
			AccountCode: c.cfg.ShippingAccountCode,
			TaxType:     c.cfg.TaxCodeShipping,
		})
	}
	return lines, nil
}

// lineUnitPrice prefers unit_price, then price, then the nested product price
func lineUnitPrice(item map[string]any) float64 {
	for _, key := range []string{"unit_price", "price"} {
		if n, ok := fieldmap.ToNumber(item[key]); ok {
			return n
		}
	}
	if nested, ok := item["product"].(map[string]any); ok {
		if n, ok := fieldmap.ToNumber(nested["price"]); ok {
			return n
		}
	}
	return 0
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// shippingPrice extracts a price from the stored shipping_option JSON
func shippingPrice(raw *string) (float64, bool) {
	if raw == nil || !gjson.Valid(*raw) {
		return 0, false
	}
	for _, path := range []string{"price", "cost", "shipping_price"} {
		if v := gjson.Get(*raw, path); v.Exists() {
			return v.Float(), true
		}
	}
	return 0, false
}

// CreateInvoice creates an ACCREC invoice in Xero for the order and
// returns its identifiers together with the online invoice URL when one
// can be resolved.
func (c *Client) CreateInvoice(ctx context.Context, order *database.Order) (*InvoiceResult, error) {
	lines, err := c.buildLineItems(order)
	if err != nil {
		return nil, err
	}

	contactName := strings.TrimSpace(order.UserName)
	if contactName == "" {
		contactName = order.Email
	}
	if contactName == "" {
		contactName = "Storefront customer"
	}

	now := time.Now()
	payload := map[string]any{
		"Invoices": []invoice{{
			Type:            "ACCREC",
			Contact:         contact{Name: contactName, EmailAddress: order.Email},
			Date:            now.Format("2006-01-02"),
			DueDate:         now.AddDate(0, 0, 14).Format("2006-01-02"),
			Reference:       order.ID,
			Status:          "AUTHORISED",
			LineItems:       lines,
			BrandingThemeID: c.cfg.BrandingThemeID,
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal invoice: %w", err)
	}

	var created struct {
		Invoices []struct {
			InvoiceID     string `json:"InvoiceID"`
			InvoiceNumber string `json:"InvoiceNumber"`
		} `json:"Invoices"`
	}
	if err := c.doAPI(ctx, http.MethodPost, "/api.xro/2.0/Invoices", bytes.NewReader(body), &created); err != nil {
		return nil, err
	}
	if len(created.Invoices) == 0 {
		return nil, errors.New("xero returned no invoice")
	}

	result := &InvoiceResult{
		InvoiceID:     created.Invoices[0].InvoiceID,
		InvoiceNumber: created.Invoices[0].InvoiceNumber,
	}

	// The online URL is a nicety; its failure does not fail the invoice
	var online struct {
		OnlineInvoices []struct {
			OnlineInvoiceURL string `json:"OnlineInvoiceUrl"`
		} `json:"OnlineInvoices"`
	}
	if err := c.doAPI(ctx, http.MethodGet, "/api.xro/2.0/Invoices/"+result.InvoiceID+"/OnlineInvoice", nil, &online); err != nil {
		c.logger.Warn("fetching online invoice url failed", zap.Error(err))
	} else if len(online.OnlineInvoices) > 0 {
		result.OnlineURL = online.OnlineInvoices[0].OnlineInvoiceURL
	}
	return result, nil
}
