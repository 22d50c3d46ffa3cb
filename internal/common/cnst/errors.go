package cnst

// Machine-readable error codes returned in the `error` field of API
// responses. The SPA maps these directly to toast messages.
const (
	ErrCodeMissingTable   = "missing table"
	ErrCodeItemsRequired  = "items_required"
	ErrCodeNoValidColumns = "no_valid_columns"
	ErrCodeInsertFailed   = "insert_failed"
	ErrCodeUpdateFailed   = "update_failed"
	ErrCodeDeleteFailed   = "delete_failed"
	ErrCodeQueryFailed    = "Query failed"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeDBError        = "db error"
)
