package ports

import (
	"context"
	"time"
)

// SessionStore guarda las sesiones emitidas (jti del JWT) para poder
// revocarlas en el logout. Es opcional: sin store los tokens son stateless.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID, tenantID string, expiresAt time.Time) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}
