// Package session implementa el registro de sesiones emitidas (jti del JWT)
// para poder revocarlas en el logout.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/taskflow-api/internal/application/ports"
)

// Data lo guardado por cada sesión.
type Data struct {
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisStore implementa ports.SessionStore sobre Redis; la expiración del
// token se traduce en el TTL de la clave.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ ports.SessionStore = (*RedisStore)(nil)

// NewRedisStore crea el store a partir de una URL redis:// y verifica la conexión.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient crea el store desde un cliente existente.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "session:"}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Save registra la sesión hasta expiresAt.
func (s *RedisStore) Save(ctx context.Context, sessionID, userID, tenantID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("save session: expiración en el pasado")
	}
	payload, err := json.Marshal(Data{UserID: userID, TenantID: tenantID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Exists indica si la sesión sigue activa (no revocada ni expirada).
func (s *RedisStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("lookup session: %w", err)
	}
	return n > 0, nil
}

// Lookup devuelve los datos de la sesión; ok=false si no existe.
func (s *RedisStore) Lookup(ctx context.Context, sessionID string) (Data, bool, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return Data{}, false, nil
	}
	if err != nil {
		return Data{}, false, fmt.Errorf("lookup session: %w", err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return d, true, nil
}

// Revoke elimina la sesión. Revocar una sesión inexistente no es error.
func (s *RedisStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Ping verifica que Redis responda (health check).
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close cierra la conexión.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
