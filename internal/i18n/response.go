package i18n

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondWithError sends an appropriate HTTP error response for the given error
func RespondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	statusCode := http.StatusInternalServerError
	errorMsg := TranslateError(c, err)

	var errWithCode *ErrorWithCode
	if errors.As(err, &errWithCode) {
		statusCode = int(errWithCode.GetCode())
	}

	c.JSON(statusCode, gin.H{"error": errorMsg})
}

// RespondWithSuccess sends a success HTTP response with an internationalized message
func RespondWithSuccess(c *gin.Context, statusCode int, msgID string, data map[string]any, payload interface{}) {
	response := gin.H{
		"message": TranslateMessage(c, msgID, data),
	}
	for k, v := range data {
		response[k] = v
	}
	if payload != nil {
		response["data"] = payload
	}

	c.JSON(statusCode, response)
}

// RespondOK sends a success HTTP response with status code 200
func RespondOK(c *gin.Context, msgID string, data map[string]interface{}, payload interface{}) {
	RespondWithSuccess(c, http.StatusOK, msgID, data, payload)
}
