package i18n

// Common errors
var (
	ErrUnauthorized   = NewErrorWithCode("ErrorUnauthorized", ErrorUnauthorized)
	ErrForbidden      = NewErrorWithCode("ErrorForbidden", ErrorForbidden)
	ErrBadRequest     = NewErrorWithCode("ErrorBadRequest", ErrorBadRequest)
	ErrInternalServer = NewErrorWithCode("ErrorInternalServer", ErrorInternalServer)
)

// Account related errors
var (
	ErrorUserNotFound          = NewErrorWithCode("ErrorUserNotFound", ErrorNotFound)
	ErrorInvalidCredentials    = NewErrorWithCode("ErrorInvalidCredentials", ErrorUnauthorized)
	ErrorEmailPasswordRequired = NewErrorWithCode("ErrorEmailPasswordRequired", ErrorBadRequest)
	ErrorEmailExists           = NewErrorWithCode("ErrorEmailExists", ErrorConflict)
	ErrorResetTokenInvalid     = NewErrorWithCode("ErrorResetTokenInvalid", ErrorBadRequest)
)

// Catalog related errors
var (
	ErrorCategoryNotFound = NewErrorWithCode("ErrorCategoryNotFound", ErrorNotFound)
	ErrorCategoryExists   = NewErrorWithCode("ErrorCategoryExists", ErrorConflict)
	ErrorCategoryRequired = NewErrorWithCode("ErrorCategoryNameRequired", ErrorBadRequest)
)

// Storage related errors
var (
	ErrorFileRequired = NewErrorWithCode("ErrorFileRequired", ErrorBadRequest)
	ErrorUploadFailed = NewErrorWithCode("ErrorUploadFailed", ErrorInternalServer)
)

// Xero related errors
var (
	ErrorXeroNotConfigured = NewErrorWithCode("ErrorXeroNotConfigured", ErrorBadRequest)
	ErrorXeroNotConnected  = NewErrorWithCode("ErrorXeroNotConnected", ErrorBadRequest)
	ErrorXeroRequestFailed = NewErrorWithCode("ErrorXeroRequestFailed", ErrorInternalServer)
)
