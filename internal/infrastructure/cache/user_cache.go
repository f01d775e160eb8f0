// Package cache holds the Redis backed decorators and stores.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/pkg/helpers"
)

const DefaultUserTTL = 5 * time.Minute

func userKey(id string) string { return "user:cache:" + id }

// userGenKey counts writes to a user. A miss only fills the cache when no
// write happened while it was loading.
func userGenKey(id string) string { return "user:cache:" + id + ":gen" }

// KEYS[1] entry, KEYS[2] generation; ARGV[1] generation seen before the load,
// ARGV[2] payload, ARGV[3] ttl in ms
var fillIfUnchangedScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[2]) or ''
if cur ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// UserRepository is a read-through cache in front of another
// repository.UserRepository. Only GetByID is cached; Update and Delete evict.
// Redis failures never fail a call, they are logged and the inner repository
// answers instead. Writes bump a generation counter so a slow miss cannot put
// an entry back that a concurrent write already evicted.
type UserRepository struct {
	repository.UserRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

func NewUserRepository(inner repository.UserRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *UserRepository {
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserRepository{UserRepository: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	key := userKey(id)
	var props entity.UserProps
	hit, err := helpers.RedisGetJSON(ctx, r.rdb, key, &props)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("user cache read failed")
	}
	if hit {
		if u, err := entity.NewUser(props); err == nil {
			return u, nil
		}
		// stale shape; drop it and reload
		_ = helpers.RedisDel(ctx, r.rdb, key)
	}

	gen, genErr := r.rdb.Get(ctx, userGenKey(id)).Result()
	if errors.Is(genErr, redis.Nil) {
		gen, genErr = "", nil
	}

	u, err := r.UserRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		r.fill(ctx, key, id, gen, u)
	}
	return u, nil
}

func (r *UserRepository) fill(ctx context.Context, key, id, gen string, u *entity.User) {
	b, err := json.Marshal(u.Props())
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("user cache encode failed")
		return
	}
	err = fillIfUnchangedScript.Run(ctx, r.rdb, []string{key, userGenKey(id)}, gen, b, r.ttl.Milliseconds()).Err()
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("user cache write failed")
	}
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := r.UserRepository.Update(ctx, u); err != nil {
		return err
	}
	r.evict(ctx, u.ID())
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *UserRepository) evict(ctx context.Context, id string) {
	pipe := r.rdb.TxPipeline()
	pipe.Incr(ctx, userGenKey(id))
	pipe.Expire(ctx, userGenKey(id), r.ttl)
	pipe.Del(ctx, userKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.WithError(err).WithField("user_id", id).Warn("user cache evict failed")
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
