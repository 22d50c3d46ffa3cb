package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsvc "github.com/ordermill/storefront/internal/auth/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var hdrSvc = func() *jsvc.Service {
	s, _ := jsvc.NewService(jsvc.Config{SecretKey: "this-is-a-very-long-secret-key-for-testing", Duration: time.Hour})
	return s
}()

func performRequest(headers map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/p", JWTAuthMiddleware(hdrSvc), func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	req := httptest.NewRequest("GET", "/p", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	w := performRequest(nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestJWTAuthMiddleware_BadPrefix(t *testing.T) {
	w := performRequest(map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_InvalidToken(t *testing.T) {
	w := performRequest(map[string]string{"Authorization": "Bearer invalid"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_ForeignSecret(t *testing.T) {
	other, err := jsvc.NewService(jsvc.Config{SecretKey: "a-different-very-long-secret-key-value!!", Duration: time.Hour})
	assert.NoError(t, err)
	tok, err := other.GenerateToken(7, "u@example.com")
	assert.NoError(t, err)

	w := performRequest(map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_Valid(t *testing.T) {
	tok, err := hdrSvc.GenerateToken(7, "u@example.com")
	assert.NoError(t, err)

	w := performRequest(map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}
