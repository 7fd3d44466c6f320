package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache implements ports.PointCache using Valkey (Redis-compatible).
type Cache struct {
	client valkey.Client
}

// New creates a new Valkey cache client.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Cache{client: client}, nil
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if cmd.Error() != nil {
		return nil, cmd.Error()
	}
	return cmd.AsBytes()
}

// Set stores a value. A non-positive ttl stores it without expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := c.client.B().Set().Key(key).Value(valkey.BinaryString(value))
	if ttl > 0 {
		return c.client.Do(ctx, set.Ex(ttl).Build()).Error()
	}
	return c.client.Do(ctx, set.Build()).Error()
}

// GetPoint returns a cached pair. A missing key reports false without error.
func (c *Cache) GetPoint(ctx context.Context, key string) ([2]float64, bool, error) {
	b, err := c.Get(ctx, key)
	if valkey.IsValkeyNil(err) {
		return [2]float64{}, false, nil
	}
	if err != nil {
		return [2]float64{}, false, err
	}
	p, err := decodePoint(b)
	if err != nil {
		return [2]float64{}, false, err
	}
	return p, true, nil
}

// SetPoint caches a pair under key.
func (c *Cache) SetPoint(ctx context.Context, key string, p [2]float64, ttl time.Duration) error {
	b, err := encodePoint(p)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl)
}

// Ping checks that the server answers.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}

func encodePoint(p [2]float64) ([]byte, error) {
	return msgpack.Marshal(p)
}

func decodePoint(b []byte) ([2]float64, error) {
	var p [2]float64
	if err := msgpack.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("decode cached point: %w", err)
	}
	return p, nil
}
