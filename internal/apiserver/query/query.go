package query

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/apiserver/fieldmap"
	"github.com/ordermill/storefront/internal/apiserver/schema"
	"github.com/ordermill/storefront/internal/common/cnst"
	"github.com/ordermill/storefront/internal/common/dto"

	"go.uber.org/zap"
)

// Executor runs generic query descriptors against the allow-listed tables.
// Every descriptor is validated against the static schema registry before
// any SQL is issued; tables outside the allow-list fail open to an empty
// result instead of an error.
type Executor struct {
	logger *zap.Logger
	db     database.Database
}

// NewExecutor creates a query executor
func NewExecutor(logger *zap.Logger, db database.Database) *Executor {
	return &Executor{
		logger: logger.Named("apiserver.query"),
		db:     db,
	}
}

// Execute runs one descriptor and always produces the uniform envelope.
// DB failures are logged and collapsed to a generic error string.
func (e *Executor) Execute(ctx context.Context, req *dto.QueryRequest) dto.QueryResponse {
	table := strings.ToLower(strings.TrimSpace(req.Table))
	if !schema.QueryAllowed(table) {
		// Fail open to empty, never to an error
		return emptyResult(req.MaybeSingle)
	}
	tbl, ok := schema.Lookup(table)
	if !ok {
		return emptyResult(req.MaybeSingle)
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "insert":
		return e.insert(ctx, tbl, req)
	case "update":
		return e.update(ctx, tbl, req)
	case "delete":
		return e.delete(ctx, tbl, req)
	default:
		return e.selectRows(ctx, tbl, req)
	}
}

func emptyResult(maybeSingle bool) dto.QueryResponse {
	if maybeSingle {
		return dto.QueryResponse{Data: nil}
	}
	return dto.QueryResponse{Data: []map[string]any{}}
}

func failedResult(maybeSingle bool) dto.QueryResponse {
	msg := cnst.ErrCodeQueryFailed
	resp := emptyResult(maybeSingle)
	resp.Error = &msg
	return resp
}

func (e *Executor) selectRows(ctx context.Context, tbl *schema.Table, req *dto.QueryRequest) dto.QueryResponse {
	// The client projection list is ignored on purpose; only full rows
	// (plus the products category join) are ever returned.
	var filters []database.EqFilter
	for _, f := range req.Filters {
		if f.Type != "eq" {
			continue
		}
		field := strings.TrimSpace(f.Field)
		if !tbl.Has(field) {
			continue
		}
		filters = append(filters, database.EqFilter{Column: field, Value: f.Value})
	}

	rows, err := e.db.QuerySelect(ctx, tbl.Name, filters)
	if err != nil {
		e.logger.Error("select failed",
			zap.String("table", tbl.Name),
			zap.Error(err))
		return failedResult(req.MaybeSingle)
	}

	for i := range rows {
		rows[i] = decodeRow(tbl, rows[i])
	}

	if tbl.Name == cnst.TableProducts {
		if err := e.attachCategories(ctx, rows); err != nil {
			e.logger.Error("category join failed", zap.Error(err))
			return failedResult(req.MaybeSingle)
		}
	}

	return e.envelope(rows, req.MaybeSingle)
}

// attachCategories projects a nested product_categories object onto each
// product row, mirroring the joined select shape the SPA expects.
func (e *Executor) attachCategories(ctx context.Context, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	categories, err := e.db.ListCategories(ctx)
	if err != nil {
		return err
	}
	byID := make(map[uint]*database.ProductCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	for _, row := range rows {
		row["product_categories"] = nil
		id, ok := fieldmap.ToInt(row["category"])
		if !ok {
			continue
		}
		if c, found := byID[uint(id)]; found {
			row["product_categories"] = map[string]any{"id": c.ID, "name": c.Name}
		}
	}
	return nil
}

func (e *Executor) insert(ctx context.Context, tbl *schema.Table, req *dto.QueryRequest) dto.QueryResponse {
	values, ok := asRows(req.Values)
	if !ok || len(values) == 0 {
		e.logger.Warn("insert without values", zap.String("table", tbl.Name))
		return failedResult(req.MaybeSingle)
	}

	// Sequential single-row inserts, concatenating the results
	inserted := make([]map[string]any, 0, len(values))
	for _, raw := range values {
		row, ok := e.prepareRow(tbl, raw, true)
		if !ok {
			return failedResult(req.MaybeSingle)
		}
		out, err := e.db.QueryInsert(ctx, tbl.Name, row)
		if err != nil {
			e.logger.Error("insert failed",
				zap.String("table", tbl.Name),
				zap.Error(err))
			return failedResult(req.MaybeSingle)
		}
		inserted = append(inserted, decodeRow(tbl, out))
	}
	return e.envelope(inserted, req.MaybeSingle)
}

func (e *Executor) update(ctx context.Context, tbl *schema.Table, req *dto.QueryRequest) dto.QueryResponse {
	values, ok := asRows(req.Values)
	if !ok || len(values) != 1 || req.Where == nil || !tbl.Has(req.Where.Field) {
		e.logger.Warn("invalid update descriptor", zap.String("table", tbl.Name))
		return failedResult(req.MaybeSingle)
	}
	set, ok := e.prepareRow(tbl, values[0], false)
	if !ok {
		return failedResult(req.MaybeSingle)
	}

	rows, err := e.db.QueryUpdate(ctx, tbl.Name, set, database.EqFilter{
		Column: req.Where.Field,
		Value:  req.Where.Value,
	})
	if err != nil {
		e.logger.Error("update failed",
			zap.String("table", tbl.Name),
			zap.Error(err))
		return failedResult(req.MaybeSingle)
	}
	for i := range rows {
		rows[i] = decodeRow(tbl, rows[i])
	}
	return e.envelope(rows, req.MaybeSingle)
}

func (e *Executor) delete(ctx context.Context, tbl *schema.Table, req *dto.QueryRequest) dto.QueryResponse {
	if req.Where == nil || !tbl.Has(req.Where.Field) {
		e.logger.Warn("invalid delete descriptor", zap.String("table", tbl.Name))
		return failedResult(req.MaybeSingle)
	}
	rows, err := e.db.QueryDelete(ctx, tbl.Name, database.EqFilter{
		Column: req.Where.Field,
		Value:  req.Where.Value,
	})
	if err != nil {
		e.logger.Error("delete failed",
			zap.String("table", tbl.Name),
			zap.Error(err))
		return failedResult(req.MaybeSingle)
	}
	for i := range rows {
		rows[i] = decodeRow(tbl, rows[i])
	}
	return e.envelope(rows, req.MaybeSingle)
}

func (e *Executor) envelope(rows []map[string]any, maybeSingle bool) dto.QueryResponse {
	if maybeSingle {
		if len(rows) == 0 {
			return dto.QueryResponse{Data: nil}
		}
		return dto.QueryResponse{Data: rows[0]}
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return dto.QueryResponse{Data: rows}
}

// asRows accepts a single object or an array of objects
func asRows(values any) ([]map[string]any, bool) {
	switch v := values.(type) {
	case map[string]any:
		return []map[string]any{v}, true
	case []any:
		rows := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			rows = append(rows, m)
		}
		return rows, true
	case []map[string]any:
		return v, true
	default:
		return nil, false
	}
}

// prepareRow normalizes one row for the table and restricts it to columns
// the registry knows. Unknown keys are dropped, never an error. Inserts
// into orders always carry a total; updates stay partial.
func (e *Executor) prepareRow(tbl *schema.Table, raw map[string]any, insert bool) (map[string]any, bool) {
	row := raw
	switch tbl.Name {
	case cnst.TableProducts:
		row = fieldmap.NormalizeProduct(row)
	case cnst.TableOrders:
		row = fieldmap.CoerceOrderJSONFields(row)
		if _, present := row["total"]; present || insert {
			row["total"] = fieldmap.CoerceTotal(row["total"])
		}
	}

	cols := tbl.Intersect(row)
	if len(cols) == 0 {
		return nil, false
	}
	filtered := make(map[string]any, len(cols))
	for _, col := range cols {
		filtered[col] = row[col]
	}
	row = filtered

	// JSON columns are stored as serialized text
	for _, col := range tbl.JSONColumns() {
		v, present := row[col]
		if !present || v == nil {
			continue
		}
		if _, isString := v.(string); isString {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			e.logger.Error("marshal json column failed",
				zap.String("table", tbl.Name),
				zap.String("column", col),
				zap.Error(err))
			return nil, false
		}
		row[col] = string(b)
	}
	return row, true
}

// decodeRow turns stored JSON text back into structured values so the
// response matches what the client originally sent.
func decodeRow(tbl *schema.Table, row map[string]any) map[string]any {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	for _, col := range tbl.JSONColumns() {
		s, ok := row[col].(string)
		if !ok || s == "" {
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			row[col] = decoded
		}
	}
	return row
}
