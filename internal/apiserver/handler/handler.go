package handler

import (
	"net/http"

	"github.com/ordermill/storefront/internal/apiserver/cache"
	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/apiserver/events"
	"github.com/ordermill/storefront/internal/apiserver/query"
	"github.com/ordermill/storefront/internal/apiserver/storage"
	"github.com/ordermill/storefront/internal/auth/jwt"
	"github.com/ordermill/storefront/internal/common/cnst"
	"github.com/ordermill/storefront/internal/common/config"
	"github.com/ordermill/storefront/internal/notify"
	"github.com/ordermill/storefront/internal/xero"
	"github.com/ordermill/storefront/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler carries the API server's dependencies into the route handlers.
// Everything is injected at construction; there is no package-level state.
type Handler struct {
	logger  *zap.Logger
	cfg     *config.APIServerConfig
	db      database.Database
	jwt     *jwt.Service
	query   *query.Executor
	notify  *notify.Service
	xero    *xero.Client
	storage *storage.DiskStorage
	cache   *cache.CatalogCache
	events  *events.Publisher
	metrics *metrics.Metrics
}

// NewHandler creates the API handler
func NewHandler(
	logger *zap.Logger,
	cfg *config.APIServerConfig,
	db database.Database,
	jwtService *jwt.Service,
	queryExecutor *query.Executor,
	notifyService *notify.Service,
	xeroClient *xero.Client,
	diskStorage *storage.DiskStorage,
	catalogCache *cache.CatalogCache,
	eventPublisher *events.Publisher,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		logger:  logger.Named("apiserver.handler"),
		cfg:     cfg,
		db:      db,
		jwt:     jwtService,
		query:   queryExecutor,
		notify:  notifyService,
		xero:    xeroClient,
		storage: diskStorage,
		cache:   catalogCache,
		events:  eventPublisher,
		metrics: m,
	}
}

func dbEq(column string, value any) database.EqFilter {
	return database.EqFilter{Column: column, Value: value}
}

// errorJSON writes the short machine-readable error contract
func errorJSON(c *gin.Context, status int, code string) {
	c.JSON(status, gin.H{"error": code})
}

// dbError logs the failure and surfaces a generic code, never the raw error
func (h *Handler) dbError(c *gin.Context, op string, err error) {
	h.logger.Error("database operation failed",
		zap.String("op", op),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	errorJSON(c, http.StatusInternalServerError, cnst.ErrCodeDBError)
}

// countEmail records a notification outcome metric
func (h *Handler) countEmail(outcome notify.Outcome) {
	if h.metrics != nil {
		h.metrics.EmailsSent.WithLabelValues(string(outcome.Kind)).Inc()
	}
}
