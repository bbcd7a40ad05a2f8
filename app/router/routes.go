// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/app/handlers"
	"github.com/amirphl/debt-collection-crm/app/middleware"
	"github.com/amirphl/debt-collection-crm/config"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth             handlers.AuthHandlerInterface
	User             *handlers.UserHandler
	Debtor           *handlers.DebtorHandler
	FollowUp         *handlers.FollowUpHandler
	Payment          *handlers.PaymentHandler
	PTP              *handlers.PTPHandler
	CollectionUpdate *handlers.CollectionUpdateHandler
	CallLog          *handlers.CallLogHandler
	Communication    *handlers.CommunicationHandler
	Report           *handlers.ReportHandler
	Export           *handlers.ExportHandler
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	cfg            *config.ProductionConfig
	handlers       Handlers
	auth           *middleware.AuthMiddleware
	log            *zap.Logger
	limiterStorage fiber.Storage
}

// NewFiberRouter creates a new Fiber router. A nil limiterStorage keeps rate limit counters in memory.
func NewFiberRouter(cfg *config.ProductionConfig, h Handlers, auth *middleware.AuthMiddleware, log *zap.Logger, limiterStorage fiber.Storage) Router {
	bodyLimit := cfg.Server.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 12 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:      "Debt Collection CRM API",
		ServerHeader: "debt-collection-crm",
		ErrorHandler: newErrorHandler(log),
		BodyLimit:    bodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ProxyHeader:  cfg.Server.ProxyHeader,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		cfg:            cfg,
		handlers:       h,
		auth:           auth,
		log:            log,
		limiterStorage: limiterStorage,
	}
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

func (r *FiberRouter) newLimiter(max int) fiber.Handler {
	window := r.cfg.Security.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Storage:      r.limiterStorage,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	})
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.log.Info("Setting up routes")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		path := r.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	if r.cfg.Storage.UploadDir != "" {
		r.app.Get("/uploads/*", static.New(r.cfg.Storage.UploadDir))
	}

	api := r.app.Group("/api/v1")
	api.Get("/health", r.healthCheck)

	if r.cfg.IsDevelopment() {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		r.app.Get("/swagger", r.serveSwaggerUI)
		r.log.Info("API documentation enabled for development")
	}

	api.Use(r.newLimiter(r.cfg.Security.GlobalRateLimit))

	h := r.handlers
	authenticate := r.auth.Authenticate()
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleAgent)

	// Public endpoints
	auth := api.Group("/auth")
	auth.Use(r.newLimiter(r.cfg.Security.AuthRateLimit))
	auth.Get("/captcha", h.Auth.Captcha)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", authenticate, h.Auth.Logout)
	auth.Get("/me", authenticate, h.Auth.Me)

	api.Post("/recaptcha/verify", h.Auth.VerifyRecaptcha)
	api.Get("/webhooks/webrtc", h.CallLog.WebRTCWebhook)

	// Users
	users := api.Group("/users", authenticate, adminOnly)
	users.Post("/", h.User.CreateUser)
	users.Get("/", h.User.ListUsers)
	users.Put("/:id", h.User.UpdateUser)
	users.Delete("/:id", h.User.DeleteUser)

	api.Get("/deal-stages", authenticate, cache.New(cache.Config{
		Expiration:          30 * time.Minute,
		DisableCacheControl: false,
	}), h.Debtor.DealStages)

	// Debtors and their nested records
	debtors := api.Group("/debtors", authenticate)
	debtors.Get("/", h.Debtor.ListDebtors)
	debtors.Post("/", adminOnly, h.Debtor.CreateDebtor)
	debtors.Post("/bulk-delete", adminOnly, h.Debtor.BulkDelete)
	debtors.Post("/bulk-reassign", adminOnly, h.Debtor.BulkReassign)
	debtors.Post("/import", adminOnly, h.Debtor.ImportDebtors)
	debtors.Get("/:id", h.Debtor.GetDebtor)
	debtors.Put("/:id", adminOnly, h.Debtor.UpdateDebtor)
	debtors.Delete("/:id", adminOnly, h.Debtor.DeleteDebtor)

	debtors.Get("/:id/follow-ups", h.FollowUp.ListDebtorFollowUps)
	debtors.Post("/:id/follow-ups", staffOnly, h.FollowUp.CreateFollowUp)
	debtors.Get("/:id/payments", h.Payment.ListDebtorPayments)
	debtors.Post("/:id/payments", staffOnly, h.Payment.UploadPayment)
	debtors.Get("/:id/ptps", h.PTP.ListDebtorPTPs)
	debtors.Post("/:id/ptps", staffOnly, h.PTP.CreatePTP)
	debtors.Get("/:id/collection-updates", h.CollectionUpdate.ListDebtorUpdates)
	debtors.Post("/:id/collection-updates", staffOnly, h.CollectionUpdate.CreateUpdate)
	debtors.Get("/:id/events", h.CollectionUpdate.ListDebtorEvents)
	debtors.Post("/:id/events", staffOnly, h.CollectionUpdate.CreateEvent)

	api.Get("/follow-ups", authenticate, h.FollowUp.ListFollowUps)
	api.Get("/collection-updates", authenticate, h.CollectionUpdate.ListUpdates)

	payments := api.Group("/payments", authenticate)
	payments.Get("/", h.Payment.ListPayments)
	payments.Put("/:id", adminOnly, h.Payment.UpdatePayment)
	payments.Post("/:id/verify", adminOnly, h.Payment.VerifyPayment)
	payments.Delete("/:id", adminOnly, h.Payment.DeletePayment)

	ptps := api.Group("/ptps", authenticate)
	ptps.Get("/", h.PTP.ListPTPs)
	ptps.Put("/:id", staffOnly, h.PTP.UpdatePTP)
	ptps.Delete("/:id", adminOnly, h.PTP.DeletePTP)

	api.Get("/call-logs", authenticate, staffOnly, h.CallLog.ListCallLogs)

	comms := api.Group("/communication", authenticate, staffOnly)
	comms.Post("/sms", h.Communication.SendSMS)
	comms.Post("/email", h.Communication.SendEmail)
	comms.Post("/whatsapp", h.Communication.WhatsAppLink)
	comms.Get("/softphone", h.Communication.SoftphoneLink)
	comms.Get("/templates", h.Communication.Templates)
	comms.Post("/templates/render", h.Communication.RenderTemplate)

	// Dashboard and reports
	api.Get("/dashboard", authenticate, h.Report.Dashboard)
	reports := api.Group("/reports", authenticate)
	reports.Get("/monthly", staffOnly, h.Report.MonthlyReport)
	reports.Get("/ptp", staffOnly, h.Report.PTPReport)
	reports.Get("/performance", adminOnly, h.Report.PerformanceReport)
	reports.Get("/agent-activities", adminOnly, h.Report.AgentActivities)

	exports := api.Group("/exports", authenticate)
	exports.Get("/debtors", h.Export.ExportDebtors)
	exports.Get("/payments", h.Export.ExportPayments)
	api.Post("/export-logs", authenticate, h.Export.RecordExportLog)

	r.app.Use(r.notFoundHandler)

	r.log.Info("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https:; connect-src 'self' https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	maxAge := r.cfg.Security.CORSMaxAge
	if maxAge <= 0 {
		maxAge = utils.CORSMaxAge
	}
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Security.AllowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           maxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/uploads/")
		},
	}))

	r.app.Use(middleware.RequestLogger(r.log))

	if r.cfg.Metrics.Enabled || r.cfg.Server.EnableMetrics {
		r.app.Use(middleware.Metrics())
	}

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.log.Error("panic recovered",
				zap.Any("error", e),
				zap.String("request_id", requestid.FromContext(c)),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("ip", c.IP()),
				zap.Stack("stack"),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	r.log.Info("Starting server", zap.String("address", address))
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   r.cfg.Deployment.Version,
			"service":   "debt-collection-crm",
		},
	})
}

func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	htmlContent := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Debt Collection CRM API - Swagger UI</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
    <style>
        body { margin: 0; background: #fafafa; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-standalone-preset.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/v1/swagger.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
                layout: "StandaloneLayout",
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`

	c.Set("Content-Type", "text/html")
	return c.SendString(htmlContent)
}

// serveSwaggerJSON returns the swagger document registered by the docs package
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.SendString(doc)
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// newErrorHandler renders errors that escape the handlers
func newErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "An internal server error occurred"
		errorCode := "INTERNAL_ERROR"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			if code < fiber.StatusInternalServerError {
				message = e.Message
				errorCode = "REQUEST_ERROR"
			}
		}

		requestID := requestid.FromContext(c)
		log.Error("request failed", zap.Int("status", code), zap.Error(err), zap.String("request_id", requestID))

		return c.Status(code).JSON(dto.APIResponse{
			Success: false,
			Message: message,
			Error: dto.ErrorDetail{
				Code: errorCode,
				Details: fiber.Map{
					"timestamp":  utils.UTCNow().Unix(),
					"request_id": requestID,
				},
			},
		})
	}
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
