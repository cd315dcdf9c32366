// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"io"
	"log"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/app/handlers"
	"github.com/amirphl/Eligibility-Roster/app/middleware"
	"github.com/amirphl/Eligibility-Roster/config"
	"github.com/amirphl/Eligibility-Roster/utils"
)

const (
	apiPrefix  = "/api/v1"
	healthPath = apiPrefix + "/health"

	optionsCacheExpiration = 30 * time.Second
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Health        handlers.HealthHandlerInterface
	Eligibility   handlers.EligibilityHandlerInterface
	CallList      handlers.CallListHandlerInterface
	LookupHistory handlers.LookupHistoryHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app       *fiber.App
	cfg       *config.ProductionConfig
	handlers  Handlers
	auth      *middleware.AuthMiddleware
	accessLog io.Writer
	logger    *log.Logger
}

// NewFiberRouter creates a new Fiber router. Access log lines go to accessLog, stdout when nil.
func NewFiberRouter(cfg *config.ProductionConfig, h Handlers, auth *middleware.AuthMiddleware, accessLog io.Writer, l *log.Logger) Router {
	if accessLog == nil {
		accessLog = os.Stdout
	}
	if l == nil {
		l = log.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:      "Eligibility Roster API",
		ServerHeader: "Eligibility-Roster",
		ErrorHandler: newErrorHandler(l),
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ProxyHeader:  cfg.Server.ProxyHeader,
	})

	return &FiberRouter{
		app:       app,
		cfg:       cfg,
		handlers:  h,
		auth:      auth,
		accessLog: accessLog,
		logger:    l,
	}
}

func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) Start(address string) error {
	if r.cfg.Security.TLSEnabled {
		return r.app.Listen(address, fiber.ListenConfig{
			CertFile:    r.cfg.Security.TLSCertFile,
			CertKeyFile: r.cfg.Security.TLSKeyFile,
		})
	}
	return r.app.Listen(address)
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.logger.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	api := r.app.Group(apiPrefix)

	// Apply general rate limiting to all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == healthPath
		},
	}))

	// API documentation route (development only)
	if env := r.cfg.Deployment.Environment; env == "development" || env == "local" {
		api.Get("/docs", r.getAPIDocumentation)
	}

	// Every API route needs a bearer token
	api.Use(r.auth.Authenticate())

	api.Get("/health", r.handlers.Health.Health)
	if r.cfg.Metrics.Enabled {
		api.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	verified := r.auth.RequireVerified()

	eligibility := api.Group("/eligibility", verified)
	eligibility.Post("/check", limiter.New(limiter.Config{
		Max:        r.cfg.Security.CheckRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			if actor, ok := middleware.ActorFromCtx(c); ok {
				return "check:" + actor.ID
			}
			return "check:" + c.IP()
		},
		LimitReached: rateLimitReached,
	}), r.handlers.Eligibility.Check)

	callList := api.Group("/call-list", verified)
	// Options only change when the customer collection is refreshed
	callList.Get("/options", cache.New(cache.Config{
		Expiration: optionsCacheExpiration,
	}), r.handlers.CallList.Options)
	callList.Delete("/called/:phone", r.handlers.CallList.RemoveFromCalled)
	callList.Get("/:side", r.handlers.CallList.Window)
	callList.Post("/:side/filter", r.handlers.CallList.SetFilter)
	callList.Post("/:side/sort", r.handlers.CallList.Sort)
	callList.Post("/:side/select", r.handlers.CallList.Select)
	callList.Post("/:side/move", r.handlers.CallList.Move)

	history := api.Group("/lookup-history", verified)
	history.Get("/", r.handlers.LookupHistory.List)
	history.Get("/checkers", r.handlers.LookupHistory.Checkers)
	history.Get("/export", r.handlers.LookupHistory.Export)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	r.logger.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	sec := r.cfg.Security
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "0",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             sec.XFrameOptions,
		HSTSMaxAge:                sec.HSTSMaxAge,
		HSTSExcludeSubdomains:     !sec.HSTSIncludeSubDoms,
		HSTSPreloadEnabled:        sec.HSTSPreload,
		ContentSecurityPolicy:     sec.CSPPolicy,
		ReferrerPolicy:            sec.ReferrerPolicy,
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     sec.AllowedOrigins,
		AllowMethods:     sec.AllowedMethods,
		AllowHeaders:     sec.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: sec.AllowCredentials && !slices.Contains(sec.AllowedOrigins, "*"),
		MaxAge:           sec.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
		}))
	}

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     r.accessLog,
			Next: func(c fiber.Ctx) bool {
				return c.Path() == healthPath
			},
		}))
	}

	r.app.Use(middleware.Metrics())
	r.app.Use(r.securityMiddleware)

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.logger.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				requestid.FromContext(c),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// securityMiddleware rejects blacklisted client addresses
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	if slices.Contains(r.cfg.Security.IPBlacklist, c.IP()) {
		return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
			Success: false,
			Message: "Access denied from this IP address",
			Error: dto.ErrorDetail{
				Code: "ACCESS_DENIED",
			},
		})
	}
	return c.Next()
}

func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation",
		Data:    GetRouteDocumentation(),
	})
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

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// newErrorHandler builds the global error handler
func newErrorHandler(l *log.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "An internal server error occurred"
		errCode := "INTERNAL_ERROR"

		// Retrieve the custom status code if it's a fiber.*Error
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			if code < fiber.StatusInternalServerError {
				message = e.Message
				errCode = strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
			}
		}

		l.Printf("Error %d: %v", code, err)

		return c.Status(code).JSON(dto.APIResponse{
			Success: false,
			Message: message,
			Error: dto.ErrorDetail{
				Code: errCode,
				Details: fiber.Map{
					"timestamp":  utils.UTCNow().Unix(),
					"request_id": requestid.FromContext(c),
				},
			},
		})
	}
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "GET",
			"path":        "/api/v1/health",
			"description": "Loaded customers, called numbers, lookups and sessions",
			"parameters":  map[string]any{},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/eligibility/check",
			"description": "Check whether a phone number is eligible and record the lookup",
			"parameters": map[string]any{
				"phone_number": "string (required) - 10 digits, punctuation is ignored",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/call-list/options",
			"description": "Store options with counts and plan options",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/call-list/:side",
			"description": "Rows of a side inside the viewport",
			"parameters": map[string]any{
				"side":            "string (required) - not-called|called",
				"store":           "string (optional) - store name or All Stores",
				"plan":            "string (optional) - plan name or All Plans",
				"from":            "string (optional) - YYYY-MM-DD",
				"to":              "string (optional) - YYYY-MM-DD",
				"scroll_offset":   "number (optional) - pixels scrolled",
				"viewport_height": "number (optional) - pixels visible",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/call-list/:side/filter",
			"description": "Replace the filter of a side",
			"parameters": map[string]any{
				"store": "string (optional)",
				"plan":  "string (optional)",
				"from":  "string (optional) - YYYY-MM-DD",
				"to":    "string (optional) - YYYY-MM-DD",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/call-list/:side/sort",
			"description": "Toggle or set the sort of a side",
			"parameters": map[string]any{
				"field":     "string (required) - activation_date|current_plan",
				"direction": "string (optional) - asc|desc",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/call-list/:side/select",
			"description": "Toggle the selection of a row",
			"parameters": map[string]any{
				"phone_number": "string (required)",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/call-list/:side/move",
			"description": "Move the selected rows to the other side",
			"parameters":  map[string]any{},
		},
		{
			"method":      "DELETE",
			"path":        "/api/v1/call-list/called/:phone",
			"description": "Return one phone number to the not-called side",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/lookup-history",
			"description": "Filtered lookup history",
			"parameters": map[string]any{
				"status":     "string (optional) - all|eligible|not-eligible",
				"checked_by": "string (optional) - staff display name",
				"from":       "string (optional) - YYYY-MM-DD",
				"to":         "string (optional) - YYYY-MM-DD, inclusive",
				"direction":  "string (optional) - asc|desc",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/lookup-history/checkers",
			"description": "Distinct staff names that ran checks",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/lookup-history/export",
			"description": "Filtered lookup history as an xlsx workbook",
			"parameters":  map[string]any{},
		},
	}
}
