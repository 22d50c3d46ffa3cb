package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ordermill/storefront/internal/apiserver/cache"
	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/apiserver/events"
	"github.com/ordermill/storefront/internal/apiserver/handler"
	"github.com/ordermill/storefront/internal/apiserver/query"
	"github.com/ordermill/storefront/internal/apiserver/storage"
	"github.com/ordermill/storefront/internal/auth/jwt"
	"github.com/ordermill/storefront/internal/common/config"
	"github.com/ordermill/storefront/internal/i18n"
	"github.com/ordermill/storefront/internal/notify"
	"github.com/ordermill/storefront/internal/xero"
	"github.com/ordermill/storefront/pkg/logger"
	"github.com/ordermill/storefront/pkg/metrics"
	"github.com/ordermill/storefront/pkg/trace"
	"github.com/ordermill/storefront/pkg/version"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Wholesale storefront API server",
		Long:  `API server for the wholesale storefront: catalog, ordering, accounts, notifications and invoicing`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("APISERVER_CONF"); envPath != "" {
		return envPath
	}
	return "configs/apiserver.yaml"
}

// ephemeralSecret returns a random signing key long enough to satisfy
// jwt.NewService. Tokens signed with it do not survive a restart.
func ephemeralSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func run() {
	cfg, err := config.LoadConfig[config.APIServerConfig](getConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	// A guessable signing key in production is a silent account takeover
	if cfg.JWT.SecretKey == "" {
		if gin.Mode() == gin.ReleaseMode {
			lg.Fatal("JWT_SECRET must be set")
		}
		lg.Warn("JWT_SECRET not set, using an ephemeral development key")
		cfg.JWT.SecretKey = ephemeralSecret()
	}
	if cfg.JWT.Duration == 0 {
		cfg.JWT.Duration = 7 * 24 * time.Hour
	}

	ctx := context.Background()

	shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
	if err != nil {
		lg.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	if err := i18n.InitTranslator(cfg.I18n.Path); err != nil {
		lg.Warn("failed to load translations", zap.String("path", cfg.I18n.Path), zap.Error(err))
	}

	db, err := database.NewDBStore(lg, database.DatabaseType(cfg.Database.Type), cfg.Database.GetDSN())
	if err != nil {
		lg.Fatal("failed to initialize database",
			zap.String("type", cfg.Database.Type),
			zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := database.EnsureSuperAdmin(ctx, lg, db, &cfg.SuperAdmin); err != nil {
		lg.Fatal("failed to ensure super admin", zap.Error(err))
	}

	jwtService, err := jwt.NewService(jwt.Config{SecretKey: cfg.JWT.SecretKey, Duration: cfg.JWT.Duration})
	if err != nil {
		lg.Fatal("failed to create JWT service", zap.Error(err))
	}

	diskStorage, err := storage.NewDiskStorage(lg, cfg.Storage.Dir)
	if err != nil {
		lg.Fatal("failed to initialize storage",
			zap.String("dir", cfg.Storage.Dir),
			zap.Error(err))
	}

	var redisClient redis.Cmdable
	if cfg.Cache.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	}
	catalogCache := cache.NewCatalogCache(lg, cache.Config{
		RedisClient: redisClient,
		MemoryTTL:   cfg.Cache.MemoryTTL,
		RedisTTL:    cfg.Cache.RedisTTL,
	})

	var sender notify.Sender
	if cfg.Email.ResendAPIKey != "" {
		sender = notify.NewResendClient(lg, cfg.Email.ResendAPIKey)
	} else {
		lg.Warn("RESEND_API_KEY not set, email notifications disabled")
	}
	notifyService := notify.NewService(lg, db, sender, &cfg.Email)

	xeroClient := xero.NewClient(lg, db, &cfg.Xero, xero.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}))

	var publisher *events.Publisher
	if cfg.Events.Enabled {
		publisher = events.NewPublisher(lg, cfg.Events.URL)
	}

	m := metrics.New(cfg.Metrics.Namespace, cfg.Metrics.Buckets)

	h := handler.NewHandler(lg, cfg, db, jwtService,
		query.NewExecutor(lg, db),
		notifyService, xeroClient, diskStorage, catalogCache, publisher, m)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(i18n.LanguageMiddleware())
	r.Use(m.Middleware())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}

	r.GET("/metrics", m.Handler())
	h.RegisterRoutes(r)

	port := cfg.Server.Port
	if port == 0 {
		port = 5678
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		lg.Info("starting apiserver",
			zap.String("version", version.Get()),
			zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down apiserver")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("failed to shutdown server", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
