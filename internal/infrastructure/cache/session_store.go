package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/internal/domain/service"
)

// SessionKey is the hash holding a user's current session.
func SessionKey(userID string) string {
	return "user:session:" + userID
}

// SessionStore keeps one session hash per user.
type SessionStore struct {
	rdb redis.Cmdable
	// ttl applied when a session is rotated
	ttl time.Duration
}

func NewSessionStore(rdb redis.Cmdable, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

func (s *SessionStore) Save(ctx context.Context, sess service.Session, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	created := sess.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	key := SessionKey(sess.UserID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    sess.UserID,
		"sid":        sess.SessionID,
		"email":      sess.Email,
		"name":       sess.Name,
		"avatar_url": sess.Avatar,
		"logged_in":  true,
		"created_at": created.UTC().Format(time.RFC3339),
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, userID string) (service.Session, error) {
	data, err := s.rdb.HGetAll(ctx, SessionKey(userID)).Result()
	if err != nil {
		return service.Session{}, err
	}
	if len(data) == 0 {
		return service.Session{}, errs.NotFound("session", userID)
	}
	sess := service.Session{
		UserID:    data["user_id"],
		SessionID: data["sid"],
		Email:     data["email"],
		Name:      data["name"],
		Avatar:    data["avatar_url"],
	}
	if t, err := time.Parse(time.RFC3339, data["created_at"]); err == nil {
		sess.CreatedAt = t
	}
	return sess, nil
}

// Rotate swaps the session id and restarts the expiry. A user without a
// session gets errs.NotFound.
func (s *SessionStore) Rotate(ctx context.Context, userID, sessionID string) error {
	key := SessionKey(userID)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("session", userID)
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"sid":        sessionID,
		"updated_at": nowRFC3339(),
	})
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, SessionKey(userID)).Err()
}

var _ service.SessionStore = (*SessionStore)(nil)
