package usecases

import (
	"context"

	"github.com/samirrijal/reproj/internal/core/domain"
)

type ctxKey int

const (
	originKey ctxKey = iota
	requestIDKey
)

// WithOrigin tags ctx with the surface a transformation came through.
func WithOrigin(ctx context.Context, origin domain.Origin) context.Context {
	return context.WithValue(ctx, originKey, origin)
}

// WithRequestID tags ctx with the caller's request ID for audit events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func originFrom(ctx context.Context) domain.Origin {
	if o, ok := ctx.Value(originKey).(domain.Origin); ok {
		return o
	}
	return domain.OriginPost
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
