package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ordermill/storefront/internal/apiserver/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func adminRouter(t *testing.T) (*gin.Engine, database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dbPath := filepath.Join(t.TempDir(), "admin.db")
	db, err := database.NewDBStore(zap.NewNop(), database.SQLite, dbPath)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r := gin.New()
	r.POST("/admin", JWTAuthMiddleware(hdrSvc), AdminMiddleware(zap.NewNop(), db), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, db
}

func TestAdminMiddleware_ForbiddenWithoutRole(t *testing.T) {
	r, db := adminRouter(t)
	ctx := context.Background()

	u := &database.User{Email: "plain@example.com", PasswordHash: "h"}
	assert.NoError(t, db.CreateUser(ctx, u))
	assert.NoError(t, db.AddUserRole(ctx, u.ID, database.RoleRetailer))

	tok, err := hdrSvc.GenerateToken(u.ID, u.Email)
	assert.NoError(t, err)

	req := httptest.NewRequest("POST", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestAdminMiddleware_AllowsAdmin(t *testing.T) {
	r, db := adminRouter(t)
	ctx := context.Background()

	u := &database.User{Email: "admin@example.com", PasswordHash: "h"}
	assert.NoError(t, db.CreateUser(ctx, u))
	assert.NoError(t, db.AddUserRole(ctx, u.ID, database.RoleAdmin))

	tok, err := hdrSvc.GenerateToken(u.ID, u.Email)
	assert.NoError(t, err)

	req := httptest.NewRequest("POST", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminMiddleware_UnauthorizedWithoutToken(t *testing.T) {
	r, _ := adminRouter(t)

	req := httptest.NewRequest("POST", "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
