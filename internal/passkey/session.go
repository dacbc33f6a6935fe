package passkey

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	prefixRegistro = "webauthn:register:"
	prefixLogin    = "webauthn:login:"
	sessionTTL     = 5 * time.Minute
)

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type sessionEnvelope struct {
	Session *webauthn.SessionData `json:"session"`
	UserID  string                `json:"user_id"`
}

// SessionStore guarda o estado da cerimônia entre start e finish; cada sessão vale uma vez.
type SessionStore struct {
	redis redisCommander
	ttl   time.Duration
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{redis: client, ttl: sessionTTL}
}

func (s *SessionStore) Save(ctx context.Context, prefix string, data *webauthn.SessionData, userID uuid.UUID) (string, error) {
	payload, err := json.Marshal(sessionEnvelope{Session: data, UserID: userID.String()})
	if err != nil {
		return "", err
	}
	sessionID := uuid.NewString()
	if err := s.redis.Set(ctx, prefix+sessionID, payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (s *SessionStore) Consume(ctx context.Context, prefix, sessionID string) (*webauthn.SessionData, uuid.UUID, error) {
	key := prefix + sessionID
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, uuid.Nil, ErrSessaoInvalida
		}
		return nil, uuid.Nil, err
	}
	_ = s.redis.Del(ctx, key)

	var envelope sessionEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Session == nil {
		return nil, uuid.Nil, ErrSessaoInvalida
	}
	userID, err := uuid.Parse(envelope.UserID)
	if err != nil {
		return nil, uuid.Nil, ErrSessaoInvalida
	}
	return envelope.Session, userID, nil
}
