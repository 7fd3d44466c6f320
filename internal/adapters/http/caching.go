package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets default Cache-Control headers on GET responses.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() >= 400 {
			return err
		}
		if c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics" || path == "/v1/stats":
			ttl = "no-cache"

		case path == "/v1/systems":
			ttl = "public, max-age=3600" // registry is fixed for the process lifetime

		case strings.HasPrefix(path, "/v1/transform/"):
			ttl = "public, max-age=86400" // a pair always maps to the same result

		case strings.HasPrefix(path, "/v1/jobs/"):
			ttl = "private, max-age=3600" // only finished jobs reach this point
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
