package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/rentledger/backend/internal/application/billing"
	appidentity "github.com/rentledger/backend/internal/application/identity"
	appinvoicing "github.com/rentledger/backend/internal/application/invoicing"
	appleasing "github.com/rentledger/backend/internal/application/leasing"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/infrastructure/auth"
	"github.com/rentledger/backend/internal/infrastructure/config"
	"github.com/rentledger/backend/internal/infrastructure/logger"
	"github.com/rentledger/backend/internal/infrastructure/persistence"
	"github.com/rentledger/backend/internal/infrastructure/persistence/orgscope"
	"github.com/rentledger/backend/internal/infrastructure/scheduler"
	"github.com/rentledger/backend/internal/interfaces/http/handler"
	"github.com/rentledger/backend/internal/interfaces/http/middleware"
	"github.com/rentledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			RentLedger API
//	@version		1.0
//	@description	Multi-tenant property management back office: properties, tenancies, utility billing and invoicing.

//	@contact.name	API Support
//	@contact.url	https://github.com/rentledger/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting RentLedger Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Every query on an org-owned model must carry the org filter.
	// Required mode makes a missing org scope a hard error rather
	// than a silent cross-org read.
	orgscope.EnableAutoOrgFilter(db.DB, true)

	// Initialize repositories
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	utilityTypeRepo := persistence.NewGormUtilityTypeRepository(db.DB)
	utilityConfigRepo := persistence.NewGormUtilityConfigRepository(db.DB)
	meterReadingRepo := persistence.NewGormMeterReadingRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	jobRepo := scheduler.NewBillingJobRepository(db.DB)

	// Token issuing
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize application services
	orgService := appidentity.NewOrganizationService(orgRepo, log)
	propertyService := appleasing.NewPropertyService(propertyRepo, unitRepo, log)
	tenantService := appleasing.NewTenantService(tenantRepo, unitRepo, log)
	utilityService := appbilling.NewUtilityService(utilityTypeRepo, utilityConfigRepo, meterReadingRepo, log)
	calculator := billing.NewCalculator(utilityConfigRepo, meterReadingRepo, unitRepo, log)
	generationService := appinvoicing.NewGenerationService(tenantRepo, invoiceRepo, calculator, log,
		appinvoicing.GenerationServiceConfig{Workers: cfg.Generation.Workers})
	invoiceService := appinvoicing.NewInvoiceService(invoiceRepo, log)

	// Initialize billing cron scheduler (if enabled)
	var cronScheduler *scheduler.BillingCronScheduler
	if cfg.Scheduler.Enabled {
		executor := scheduler.NewBillingExecutor(generationService, invoiceService, jobRepo, log)
		cronCfg := scheduler.DefaultBillingCronSchedulerConfig()
		cronCfg.GenerationDay = cfg.Scheduler.GenerationDay
		cronCfg.CheckInterval = cfg.Scheduler.CheckInterval
		cronCfg.OverdueCheckInterval = cfg.Scheduler.OverdueCheckInterval
		cronScheduler, err = scheduler.NewBillingCronScheduler(cronCfg, executor, orgRepo, jobRepo, log)
		if err != nil {
			log.Fatal("Failed to create billing scheduler", zap.Error(err))
		}
		if err := cronScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := cronScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping billing scheduler", zap.Error(err))
			}
		}()
		log.Info("Billing scheduler started",
			zap.Int("generation_day", cronCfg.GenerationDay),
			zap.Duration("check_interval", cronCfg.CheckInterval),
			zap.Duration("overdue_check_interval", cronCfg.OverdueCheckInterval),
		)
	}

	// Initialize HTTP handlers
	orgHandler := handler.NewOrganizationHandler(orgService, jwtService)
	authHandler := handler.NewAuthHandler(jwtService)
	propertyHandler := handler.NewPropertyHandler(propertyService, tenantService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	utilityHandler := handler.NewUtilityHandler(utilityService)
	billingHandler := handler.NewBillingHandler(generationService, invoiceService, cronScheduler)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitMax, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitMax),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint (not exposed in production)
	if cfg.App.Env != "production" {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes.
	// Organization signup is the only unauthenticated write: it
	// bootstraps the org and mints the first admin token.
	authConfig := middleware.AuthMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/organizations",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.AuthMiddlewareWithConfig(authConfig))

	// Identity domain (organization lifecycle, token issuing)
	identityRoutes := router.NewDomainGroup("identity", "")
	identityRoutes.POST("/organizations", orgHandler.CreateOrganization)
	identityRoutes.GET("/organizations/current", orgHandler.GetCurrentOrganization)
	identityRoutes.PUT("/organizations/current/contact", orgHandler.UpdateContact)
	identityRoutes.POST("/auth/tokens", authHandler.IssueToken)

	// Leasing domain (properties, units, tenancies)
	leasingRoutes := router.NewDomainGroup("leasing", "")
	leasingRoutes.POST("/properties", propertyHandler.CreateProperty)
	leasingRoutes.GET("/properties", propertyHandler.ListProperties)
	leasingRoutes.GET("/properties/:id", propertyHandler.GetProperty)
	leasingRoutes.POST("/properties/:id/units", propertyHandler.AddUnit)
	leasingRoutes.GET("/properties/:id/units", propertyHandler.ListUnits)
	leasingRoutes.GET("/properties/:id/utility-configs", utilityHandler.ListPropertyConfigs)
	leasingRoutes.GET("/units/:id/tenant", propertyHandler.GetUnitTenant)
	leasingRoutes.POST("/tenants", tenantHandler.AssignTenant)
	leasingRoutes.GET("/tenants/:id", tenantHandler.GetTenant)
	leasingRoutes.POST("/tenants/:id/terminate", tenantHandler.TerminateTenancy)

	// Billing domain (utility catalog, meter readings, generation)
	billingRoutes := router.NewDomainGroup("billing", "")
	billingRoutes.POST("/utility-types", utilityHandler.CreateUtilityType)
	billingRoutes.GET("/utility-types", utilityHandler.ListUtilityTypes)
	billingRoutes.POST("/utility-configs", utilityHandler.CreateUtilityConfig)
	billingRoutes.POST("/meter-readings", utilityHandler.RecordReading)
	billingRoutes.POST("/billing/generation", billingHandler.GenerateInvoices)
	billingRoutes.POST("/billing/overdue/recalculate", billingHandler.RecalculateOverdue)
	billingRoutes.GET("/billing/scheduler/status", billingHandler.GetSchedulerStatus)

	// Invoicing domain (queries, payments)
	invoicingRoutes := router.NewDomainGroup("invoicing", "")
	invoicingRoutes.GET("/invoices", invoiceHandler.ListInvoices)
	invoicingRoutes.GET("/invoices/:id", invoiceHandler.GetInvoice)
	invoicingRoutes.POST("/invoices/:id/payments", invoiceHandler.RecordPayment)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(identityRoutes).
		Register(leasingRoutes).
		Register(billingRoutes).
		Register(invoicingRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
