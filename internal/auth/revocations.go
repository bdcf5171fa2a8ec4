package auth

import (
	"context"
	"time"
)

// Revocations remembers logged-out tokens by jti until they would have expired.
type Revocations interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
