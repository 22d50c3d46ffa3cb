package dto

// QueryFilter is one predicate on the generic query endpoint. Only eq is
// honored; other types are silently ignored.
type QueryFilter struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

// QueryWhere scopes an update or delete to matching rows
type QueryWhere struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// QueryRequest is the request body for POST /api/query
type QueryRequest struct {
	Table       string        `json:"table"`
	Select      string        `json:"select"` // accepted but ignored server-side
	Filters     []QueryFilter `json:"filters"`
	MaybeSingle bool          `json:"maybeSingle"`
	Action      string        `json:"action"` // insert, update, delete, or empty for select
	Values      any           `json:"values"` // object or array of objects
	Where       *QueryWhere   `json:"where"`
}

// QueryResponse is the uniform response envelope for POST /api/query.
// Data is an array, a single object, or null depending on maybeSingle.
type QueryResponse struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}
