// Package main provides the entry point for the debt-collection CRM API
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/amirphl/debt-collection-crm/app/handlers"
	"github.com/amirphl/debt-collection-crm/app/middleware"
	"github.com/amirphl/debt-collection-crm/app/router"
	"github.com/amirphl/debt-collection-crm/app/scheduler"
	"github.com/amirphl/debt-collection-crm/app/services"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/amirphl/debt-collection-crm/config"
	_ "github.com/amirphl/debt-collection-crm/docs"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	log       *zap.Logger
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      cfg.Logging.Output,
		FilePath:    cfg.Logging.FilePath,
		MaxSize:     cfg.Logging.MaxSize,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAge:      cfg.Logging.MaxAge,
		Compress:    cfg.Logging.Compress,
		Environment: cfg.Deployment.Environment,
		ServiceName: "debt-collection-crm",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("Starting debt-collection CRM",
		zap.String("environment", cfg.Deployment.Environment),
		zap.String("version", cfg.Deployment.Version),
		zap.String("commit", cfg.Deployment.CommitHash),
	)

	app, err := initializeApplication(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize application", zap.Error(err))
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-sigChan
	zl.Info("Shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("Error during shutdown", zap.Error(err))
	}

	for _, fn := range app.stopFuncs {
		fn()
	}

	zl.Info("Server stopped")
}

// initializeDatabase opens the postgres pool and migrates the schema when enabled
func initializeDatabase(cfg config.DatabaseConfig, zl *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	slowThreshold := cfg.SlowQueryTime
	if slowThreshold <= 0 {
		slowThreshold = 500 * time.Millisecond
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(zl.Named("gorm")), gormlogger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: utils.UTCNow,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	zl.Info("Database connection established",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Bool("auto_migrate", cfg.AutoMigrate),
	)
	return db, nil
}

// initializeCache returns nil when redis is disabled
func initializeCache(cfg config.CacheConfig, zl *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	zl.Info("Redis connection established", zap.Int("db", cfg.RedisDB))
	return rc, nil
}

// startCacheHealthMonitor periodically pings redis. The returned func stops it.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration, zl *zap.Logger) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					zl.Warn("Redis healthcheck failed", zap.Error(err))
				}
				c()
			}
		}
	}()
	return cancel
}

func initializeNotificationService(cfg *config.ProductionConfig, zl *zap.Logger) services.NotificationService {
	var smsService services.SMSService
	if cfg.SMS.Provider == "mock" {
		smsService = services.NewMockSMSService()
	} else {
		smsService = services.NewSMSService(&cfg.SMS, zl.Named("sms"))
	}

	var emailService services.EmailService
	if cfg.Email.Provider == "smtp" {
		emailService = services.NewSMTPEmailService(&cfg.Email, zl.Named("email"))
	} else {
		emailService = services.NewMockEmailService()
	}

	return services.NewNotificationService(smsService, emailService, cfg.Telephony.SoftphoneURL)
}

// initializeApplication wires repositories, services, flows and handlers
func initializeApplication(cfg *config.ProductionConfig, zl *zap.Logger) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database, zl)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache, zl)
	if err != nil {
		return nil, err
	}

	var revocations services.RevocationStore
	var limiterStorage fiber.Storage
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second, zl))
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
		revocations = services.NewRedisRevocationStore(rc, cfg.Cache.RedisPrefix)
		limiterStorage = middleware.NewRedisStorage(rc, cfg.Cache.RedisPrefix)
	} else {
		revocations = services.NewMemoryRevocationStore()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	debtorRepo := repository.NewDebtorRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)
	ptpRepo := repository.NewPTPRepository(db)
	updateRepo := repository.NewCollectionUpdateRepository(db)
	eventRepo := repository.NewEventLogRepository(db)
	callRepo := repository.NewCallLogRepository(db)
	downloadLogRepo := repository.NewDownloadLogRepository(db)
	exportLogRepo := repository.NewExportLogRepository(db)

	if err := ensureAdminUser(context.Background(), userRepo, cfg.Admin, cfg.Security.BcryptCost, zl); err != nil {
		return nil, err
	}

	// Services
	notificationService := initializeNotificationService(cfg, zl)
	if cfg.Scheduler.RemindersEnabled {
		// untyped nil when redis is disabled
		var lock redis.UniversalClient
		if rc != nil {
			lock = rc
		}
		reminder := scheduler.NewFollowUpReminder(userRepo, debtorRepo, notificationService, lock, cfg.Cache.RedisPrefix, cfg.Scheduler.ReminderInterval, zl)
		stopFuncs = append(stopFuncs, reminder.Start(context.Background()))
	}
	storageService := services.NewLocalStorageService(&cfg.Storage)
	recaptchaService := services.NewRecaptchaService(&cfg.Recaptcha)

	var captchaService services.CaptchaService
	if cfg.Security.CaptchaEnabled {
		captchaService, err = services.NewCaptchaServiceRotate(2*time.Minute, 15, 300)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize captcha: %w", err)
		}
		stopFuncs = append(stopFuncs, captchaService.Stop)
	}

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
		revocations,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	zl.Info("Token service initialized", zap.String("issuer", cfg.JWT.Issuer), zap.String("audience", cfg.JWT.Audience))

	// Flows
	authFlow := businessflow.NewAuthFlow(userRepo, tokenService, captchaService, recaptchaService, cfg.Security.CaptchaEnabled)
	userFlow := businessflow.NewUserFlow(userRepo, debtorRepo, db, cfg.Security.BcryptCost)
	debtorFlow := businessflow.NewDebtorFlow(userRepo, debtorRepo, paymentRepo, followUpRepo, db)
	followUpFlow := businessflow.NewFollowUpFlow(userRepo, debtorRepo, followUpRepo, db)
	paymentFlow := businessflow.NewPaymentFlow(userRepo, debtorRepo, paymentRepo, storageService, cfg.Storage.MaxUploadBytes)
	ptpFlow := businessflow.NewPTPFlow(userRepo, debtorRepo, ptpRepo)
	updateFlow := businessflow.NewCollectionUpdateFlow(userRepo, debtorRepo, updateRepo)
	eventFlow := businessflow.NewEventLogFlow(userRepo, debtorRepo, eventRepo)
	callLogFlow := businessflow.NewCallLogFlow(userRepo, debtorRepo, callRepo, cfg.Telephony.CallLogLimit)
	commsFlow := businessflow.NewCommunicationFlow(userRepo, debtorRepo, eventRepo, notificationService)
	reportFlow := businessflow.NewReportFlow(userRepo, debtorRepo, paymentRepo, followUpRepo, ptpRepo, updateRepo, eventRepo, callRepo)
	exportFlow := businessflow.NewExportFlow(userRepo, debtorRepo, paymentRepo, downloadLogRepo, exportLogRepo)

	h := router.Handlers{
		Auth:             handlers.NewAuthHandler(authFlow),
		User:             handlers.NewUserHandler(userFlow),
		Debtor:           handlers.NewDebtorHandler(debtorFlow),
		FollowUp:         handlers.NewFollowUpHandler(followUpFlow),
		Payment:          handlers.NewPaymentHandler(paymentFlow),
		PTP:              handlers.NewPTPHandler(ptpFlow),
		CollectionUpdate: handlers.NewCollectionUpdateHandler(updateFlow, eventFlow),
		CallLog:          handlers.NewCallLogHandler(callLogFlow),
		Communication:    handlers.NewCommunicationHandler(commsFlow),
		Report:           handlers.NewReportHandler(reportFlow),
		Export:           handlers.NewExportHandler(exportFlow),
	}

	appRouter := router.NewFiberRouter(cfg, h, middleware.NewAuthMiddleware(authFlow), zl, limiterStorage)

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		log:       zl,
		stopFuncs: stopFuncs,
	}, nil
}

// ensureAdminUser creates the configured administrator on an empty users table
func ensureAdminUser(ctx context.Context, userRepo repository.UserRepository, admin config.AdminConfig, bcryptCost int, zl *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		return nil
	}

	count, err := userRepo.Count(ctx, models.UserFilter{})
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	fullName := admin.FullName
	if fullName == "" {
		fullName = "Administrator"
	}
	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     utils.ToPtr(true),
	}
	if err := userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	zl.Info("Seeded admin user", zap.String("email", email))
	return nil
}
