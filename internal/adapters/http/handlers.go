package http

import (
	"errors"
	"mime"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/usecases"
	"github.com/samirrijal/reproj/internal/reproject"
)

const (
	mimeGeoJSON = "application/geo+json"
	// legacyDest is the destination of routes that only name a zone.
	legacyDest = "WGS84"
)

func systemParams(c *fiber.Ctx) (zone, dest string) {
	zone, dest = c.Params("zone"), c.Params("dest")
	if dest == "" {
		dest = legacyDest
	}
	return zone, dest
}

// jsonMediaType returns the declared media type if it is a JSON one.
func jsonMediaType(c *fiber.Ctx) (string, bool) {
	mt, _, err := mime.ParseMediaType(c.Get(fiber.HeaderContentType))
	if err != nil {
		return "", false
	}
	switch mt {
	case fiber.MIMEApplicationJSON, mimeGeoJSON:
		return mt, true
	}
	return "", false
}

// SystemsHandler lists the source zones and destination systems.
// GET /v1/systems
func SystemsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Transforms.Systems())
	}
}

// TransformPointHandler converts one pair given as query parameters.
// GET /v1/transform/:zone/:dest?x=433829.95&y=4811755.33
func TransformPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zone, dest := systemParams(c)
		x, y := c.Query("x"), c.Query("y")
		ctx := usecases.WithOrigin(c.UserContext(), domain.OriginGet)

		p, err := deps.Transforms.TransformPoint(ctx, zone, dest, x, y)
		if err != nil {
			if errors.Is(err, reproject.ErrInputShape) && (strings.TrimSpace(x) == "" || strings.TrimSpace(y) == "") {
				return errBadRequest(c, msgMissingXY)
			}
			return writeError(c, err)
		}
		return c.JSON(p)
	}
}

// TransformPayloadHandler converts every pair inside a JSON body, keeping its shape.
// POST /v1/transform/:zone/:dest
func TransformPayloadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zone, dest := systemParams(c)
		if err := deps.Transforms.CheckSystems(zone, dest); err != nil {
			return writeError(c, err)
		}
		mt, ok := jsonMediaType(c)
		if !ok {
			return errUnsupportedMedia(c)
		}

		raw, err := reproject.Decode(c.Body())
		if err != nil {
			return writeError(c, err)
		}

		ctx := usecases.WithOrigin(c.UserContext(), domain.OriginPost)
		out, stats, err := deps.Transforms.TransformPayload(ctx, zone, dest, raw)
		if err != nil {
			return writeError(c, err)
		}

		data, err := reproject.Encode(out)
		if err != nil {
			return writeError(c, err)
		}
		c.Set("X-Reproj-Strategy", string(stats.Strategy))
		c.Set("X-Reproj-Pairs", strconv.Itoa(stats.Pairs))
		c.Set(fiber.HeaderContentType, mt)
		return c.Send(data)
	}
}

// SubmitJobHandler stores a payload for asynchronous transformation.
// POST /v1/jobs/:zone/:dest
func SubmitJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Jobs == nil {
			return writeError(c, domain.ErrUnavailable)
		}
		zone, dest := c.Params("zone"), c.Params("dest")
		if err := deps.Transforms.CheckSystems(zone, dest); err != nil {
			return writeError(c, err)
		}
		if _, ok := jsonMediaType(c); !ok {
			return errUnsupportedMedia(c)
		}

		body := append([]byte(nil), c.Body()...)
		job, err := deps.Jobs.Submit(c.UserContext(), zone, dest, body)
		if err != nil {
			return writeError(c, err)
		}

		c.Location("/v1/jobs/" + job.ID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"id":     job.ID,
			"status": job.Status,
		})
	}
}

// GetJobHandler returns the state, and once finished the result, of a job.
// GET /v1/jobs/:id
func GetJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Jobs == nil {
			return writeError(c, domain.ErrUnavailable)
		}
		job, err := deps.Jobs.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		if !job.Done() {
			c.Set(fiber.HeaderCacheControl, "no-store")
		}
		return c.JSON(job)
	}
}

// StatsHandler returns audit totals.
// GET /v1/stats
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Audit == nil {
			return writeError(c, domain.ErrUnavailable)
		}
		stats, err := deps.Audit.Stats(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(stats)
	}
}
