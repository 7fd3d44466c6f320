package http

import (
	"context"
	"log/slog"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/usecases"
	"github.com/samirrijal/reproj/internal/pkg/metrics"
	"github.com/samirrijal/reproj/internal/reproject"
)

// WebSocketHandler streams payload transformations for the zone and dest of
// the upgraded route. Every text message is one payload; the reply is the
// transformed payload or an APIError object.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		zone, dest := c.Params("zone"), c.Params("dest")
		reqID, _ := c.Locals("requestid").(string)
		logger := slog.Default().With("request_id", reqID, "zone", zone, "dest", dest)

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		logger.Info("ws client connected", "remote", c.RemoteAddr().String())

		var mu sync.Mutex
		write := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeErr := func(err error) error {
			e, known := classify(err, reqID)
			if !known {
				logger.Error("ws transform failed", "error", err)
			}
			data, _ := json.Marshal(e)
			return write(data)
		}

		if err := deps.Transforms.CheckSystems(zone, dest); err != nil {
			_ = writeErr(err)
			return
		}

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		base := usecases.WithOrigin(context.Background(), domain.OriginWebSocket)
		if reqID != "" {
			base = usecases.WithRequestID(base, reqID)
		}

		for {
			mt, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			if mt != websocket.TextMessage {
				continue
			}

			out, err := transformMessage(base, deps, zone, dest, msg)
			if err != nil {
				err = writeErr(err)
			} else {
				err = write(out)
			}
			if err != nil {
				break
			}
		}

		logger.Info("ws client disconnected")
	}
}

func transformMessage(base context.Context, deps *Dependencies, zone, dest string, msg []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(base, deps.requestTimeout())
	defer cancel()

	raw, err := reproject.Decode(msg)
	if err != nil {
		return nil, err
	}
	out, _, err := deps.Transforms.TransformPayload(ctx, zone, dest, raw)
	if err != nil {
		return nil, err
	}
	return reproject.Encode(out)
}
