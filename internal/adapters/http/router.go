package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/reproj/internal/pkg/metrics"
)

// legacySunset is when the unversioned routes of the first release go away.
var legacySunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting per IP
	app.Use(limiter.New(limiter.Config{
		Max:        deps.rateLimit(),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	reqTimeout := deps.requestTimeout()
	v1 := app.Group("/v1")
	v1.Get("/systems", SystemsHandler(deps))
	v1.Get("/transform/:zone/:dest", timeout.NewWithContext(TransformPointHandler(deps), reqTimeout))
	v1.Post("/transform/:zone/:dest", timeout.NewWithContext(TransformPayloadHandler(deps), reqTimeout))
	v1.Post("/jobs/:zone/:dest", timeout.NewWithContext(SubmitJobHandler(deps), reqTimeout))
	v1.Get("/jobs/:id", timeout.NewWithContext(GetJobHandler(deps), reqTimeout))
	v1.Get("/stats", timeout.NewWithContext(StatsHandler(deps), reqTimeout))

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), reqTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.openAPIPath())

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/transform/:zone/:dest", websocket.New(WebSocketHandler(deps)))

	// Unversioned routes of the first release: /:zone/:dest and /:zone (WGS84).
	legacy := Deprecated(DeprecatedRoute{SunsetDate: legacySunset, Alternative: "/v1/transform/:zone/:dest"})
	legacyZoneOnly := Deprecated(DeprecatedRoute{SunsetDate: legacySunset, Alternative: "/v1/transform/:zone/" + legacyDest})
	app.Get("/:zone/:dest", legacy, timeout.NewWithContext(TransformPointHandler(deps), reqTimeout))
	app.Post("/:zone/:dest", legacy, timeout.NewWithContext(TransformPayloadHandler(deps), reqTimeout))
	app.Get("/:zone", legacyZoneOnly, timeout.NewWithContext(TransformPointHandler(deps), reqTimeout))
	app.Post("/:zone", legacyZoneOnly, timeout.NewWithContext(TransformPayloadHandler(deps), reqTimeout))
}
