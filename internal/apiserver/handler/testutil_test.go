package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ordermill/storefront/internal/apiserver/cache"
	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/apiserver/query"
	"github.com/ordermill/storefront/internal/apiserver/storage"
	"github.com/ordermill/storefront/internal/auth/jwt"
	"github.com/ordermill/storefront/internal/common/config"
	"github.com/ordermill/storefront/internal/i18n"
	"github.com/ordermill/storefront/internal/notify"
	"github.com/ordermill/storefront/internal/xero"
	"github.com/ordermill/storefront/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// testEnv wires a full handler stack over a throwaway sqlite database.
// Email, Xero and events stay unconfigured so the handlers exercise their
// degraded paths.
type testEnv struct {
	handler *Handler
	router  *gin.Engine
	db      *database.DBStore
	jwt     *jwt.Service
	cfg     *config.APIServerConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	assert.NoError(t, i18n.InitTranslator("../../../configs/i18n"))

	logger := zap.NewNop()
	store, err := database.NewDBStore(logger, database.SQLite, filepath.Join(t.TempDir(), "api.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.APIServerConfig{}
	cfg.Server.FrontendURL = "http://localhost:5173"
	cfg.JWT.SecretKey = "a-sufficiently-long-test-secret-key!!!!!"
	cfg.JWT.Duration = 7 * 24 * time.Hour

	jwtService, err := jwt.NewService(jwt.Config{SecretKey: cfg.JWT.SecretKey, Duration: cfg.JWT.Duration})
	assert.NoError(t, err)

	diskStorage, err := storage.NewDiskStorage(logger, t.TempDir())
	assert.NoError(t, err)

	h := NewHandler(
		logger,
		cfg,
		store,
		jwtService,
		query.NewExecutor(logger, store),
		notify.NewService(logger, store, nil, &cfg.Email),
		xero.NewClient(logger, store, &cfg.Xero),
		diskStorage,
		cache.NewCatalogCache(logger, cache.Config{}),
		nil,
		metrics.New("test", nil),
	)

	r := gin.New()
	h.RegisterRoutes(r)

	return &testEnv{handler: h, router: r, db: store, jwt: jwtService, cfg: cfg}
}

// signupUser creates a retailer account directly and returns a token
func (e *testEnv) signupUser(t *testing.T, email string) (uint, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":    email,
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User  struct{ ID uint }
		Token string
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.User.ID, resp.Token
}

// adminUser creates an account and grants it the admin role
func (e *testEnv) adminUser(t *testing.T, email string) (uint, string) {
	t.Helper()
	id, token := e.signupUser(t, email)
	assert.NoError(t, e.db.AddUserRole(context.Background(), id, database.RoleAdmin))
	return id, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
