package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData is the validated per-request identity. It is constructed
// once at the auth boundary and passed through every service call; no
// handler or service re-parses claims.
type RequestData struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	UserName    string
	TokenString string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}
