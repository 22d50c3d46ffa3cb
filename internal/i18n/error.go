package i18n

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode represents an HTTP status code
type ErrorCode int

const (
	ErrorBadRequest     ErrorCode = http.StatusBadRequest
	ErrorUnauthorized   ErrorCode = http.StatusUnauthorized
	ErrorForbidden      ErrorCode = http.StatusForbidden
	ErrorNotFound       ErrorCode = http.StatusNotFound
	ErrorConflict       ErrorCode = http.StatusConflict
	ErrorInternalServer ErrorCode = http.StatusInternalServerError
)

// ErrorWithCode is an internationalized error carrying an HTTP status code.
type ErrorWithCode struct {
	MessageID      string
	DefaultMessage string
	Code           ErrorCode
	Data           map[string]interface{}
}

// NewErrorWithCode creates a new error with the given message ID and status code
func NewErrorWithCode(messageID string, code ErrorCode) *ErrorWithCode {
	return &ErrorWithCode{
		MessageID:      messageID,
		DefaultMessage: messageID,
		Code:           code,
		Data:           make(map[string]interface{}),
	}
}

// WithParam returns a copy of the error with an extra template parameter.
// The receiver is not mutated so predefined errors stay shareable.
func (e *ErrorWithCode) WithParam(key string, value interface{}) *ErrorWithCode {
	clone := &ErrorWithCode{
		MessageID:      e.MessageID,
		DefaultMessage: e.DefaultMessage,
		Code:           e.Code,
		Data:           make(map[string]interface{}, len(e.Data)+1),
	}
	for k, v := range e.Data {
		clone.Data[k] = v
	}
	clone.Data[key] = value
	return clone
}

// WithHttpCode returns a copy of the error with a different status code
func (e *ErrorWithCode) WithHttpCode(code ErrorCode) *ErrorWithCode {
	clone := e.WithParam("", nil)
	delete(clone.Data, "")
	clone.Code = code
	return clone
}

// GetCode returns the HTTP status code
func (e *ErrorWithCode) GetCode() ErrorCode {
	return e.Code
}

// GetMessageID returns the message ID for translation
func (e *ErrorWithCode) GetMessageID() string {
	return e.MessageID
}

// GetData returns the template data
func (e *ErrorWithCode) GetData() map[string]interface{} {
	return e.Data
}

// Error implements the error interface
func (e *ErrorWithCode) Error() string {
	t := GetTranslator()
	if t != nil {
		translated := t.Translate(e.MessageID, defaultLang, e.Data)
		if translated != e.MessageID {
			return translated
		}
	}

	if len(e.Data) == 0 {
		return e.DefaultMessage
	}
	msg := e.DefaultMessage
	for k, v := range e.Data {
		placeholder := fmt.Sprintf("{{.%s}}", k)
		msg = strings.Replace(msg, placeholder, fmt.Sprintf("%v", v), -1)
	}
	return msg
}
