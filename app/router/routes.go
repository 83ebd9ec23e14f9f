// Package router provides HTTP routing, middleware configuration, and server setup for the repair desk API
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/app/handlers"
	"github.com/amirphl/repair-desk/app/middleware"
	"github.com/amirphl/repair-desk/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthPath = "/api/v1/health"

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Options tunes the router from configuration
type Options struct {
	AllowOrigins   []string
	RateLimit      int
	RateWindow     time.Duration
	MetricsEnabled bool
	MetricsPath    string
	Version        string
	BodyLimit      int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app               *fiber.App
	opts              Options
	ticketHandler     *handlers.TicketHandler
	customerHandler   *handlers.CustomerHandler
	technicianHandler *handlers.TechnicianHandler
	reportHandler     *handlers.ReportHandler
	authMiddleware    *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router. authMiddleware may be nil to serve
// the API without staff tokens.
func NewFiberRouter(
	opts Options,
	ticketHandler *handlers.TicketHandler,
	customerHandler *handlers.CustomerHandler,
	technicianHandler *handlers.TechnicianHandler,
	reportHandler *handlers.ReportHandler,
	authMiddleware *middleware.AuthMiddleware,
) Router {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 600
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 1 * 1024 * 1024 // 1MB
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:      "Repair Desk API",
		ServerHeader: "Repair-Desk",
		ErrorHandler: errorHandler,
		BodyLimit:    opts.BodyLimit,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:               app,
		opts:              opts,
		ticketHandler:     ticketHandler,
		customerHandler:   customerHandler,
		technicianHandler: technicianHandler,
		reportHandler:     reportHandler,
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	if r.opts.MetricsEnabled {
		r.app.Get(r.opts.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting, no auth)
	api.Get("/health", r.healthCheck)

	api.Use(limiter.New(limiter.Config{
		Max:        r.opts.RateLimit,
		Expiration: r.opts.RateWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == healthPath
		},
	}))

	// Everything below requires a staff token when auth is enabled
	staff := api.Group("")
	if r.authMiddleware != nil {
		staff.Use(r.authMiddleware.Authenticate())
	}

	tickets := staff.Group("/tickets")
	tickets.Get("/", r.ticketHandler.List)
	tickets.Post("/", r.ticketHandler.Create)
	tickets.Get("/:id", r.ticketHandler.Get)
	tickets.Patch("/:id", r.ticketHandler.Update)
	tickets.Delete("/:id", r.ticketHandler.Delete)

	customers := staff.Group("/customers")
	customers.Get("/", r.customerHandler.List)
	customers.Post("/", r.customerHandler.Create)
	customers.Patch("/:id", r.customerHandler.Update)
	customers.Delete("/:id", r.customerHandler.Delete)

	technicians := staff.Group("/technicians")
	technicians.Get("/", r.technicianHandler.List)
	technicians.Post("/", r.technicianHandler.Create)
	technicians.Patch("/:id", r.technicianHandler.Update)
	technicians.Delete("/:id", r.technicianHandler.Delete)

	staff.Get("/dashboard", r.reportHandler.Dashboard)
	staff.Get("/workload", r.reportHandler.Workload)
	staff.Get("/reports", r.reportHandler.Report)
	staff.Get("/reports/export", r.reportHandler.Export)
	staff.Get("/state", r.reportHandler.State)
	staff.Post("/state/reload", r.reportHandler.Reload)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(middleware.Metrics())

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		ContentSecurityPolicy:     "default-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-site",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	if len(r.opts.AllowOrigins) > 0 {
		r.app.Use(cors.New(cors.Config{
			AllowOrigins: r.opts.AllowOrigins,
			AllowMethods: []string{
				"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS",
			},
			AllowHeaders: []string{
				"Origin",
				"Content-Type",
				"Accept",
				"Authorization",
				"X-Requested-With",
				"X-Request-ID",
			},
			ExposeHeaders: []string{
				"X-Request-ID",
				"Content-Disposition",
			},
			AllowCredentials: true,
			MaxAge:           utils.CORSMaxAge,
		}))
	}

	// Spreadsheet exports are already zipped
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/reports/export")
		},
	}))

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == healthPath || c.Path() == r.opts.MetricsPath
		},
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   r.opts.Version,
			"service":   "repair-desk-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errorCode := "INTERNAL_ERROR"

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
			errorCode = "REQUEST_ERROR"
		}
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errorCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
