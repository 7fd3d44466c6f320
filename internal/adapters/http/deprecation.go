package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute describes an endpoint kept for old clients.
type DeprecatedRoute struct {
	SunsetDate time.Time
	// Alternative is the successor path. ":name" segments are filled from
	// the current request's route parameters.
	Alternative string
}

// Deprecated adds Deprecation, Sunset, Link and Warning headers to responses
// of the route it is mounted on.
func Deprecated(d DeprecatedRoute) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Deprecation", "true")
		c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))

		if d.Alternative != "" {
			c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, expandParams(c, d.Alternative)))
		}

		days := time.Until(d.SunsetDate).Hours() / 24
		if days < 0 {
			days = 0
		}
		c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))

		return c.Next()
	}
}

func expandParams(c *fiber.Ctx, pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, ":") {
			parts[i] = c.Params(p[1:])
		}
	}
	return strings.Join(parts, "/")
}
