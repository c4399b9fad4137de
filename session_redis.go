package tripseek

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/tripseek/tripseek/common/logger"
	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/schema"
)

// RedisSessionStore persists sessions in Redis.
// Data model:
//   - prefix+"session:"+id => JSON(Session) with TTL
//   - prefix+"idx"         => ZSET of ids scored by last activity
type RedisSessionStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSessionStore(cfg *config.SessionConfig) (*RedisSessionStore, error) {
	if cfg == nil || cfg.Redis == nil || cfg.Redis.Address == "" {
		return nil, fmt.Errorf("redis session store requires an address")
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed, err: %w", err)
	}
	return &RedisSessionStore{rdb: rdb, prefix: "tripseek:sess:", ttl: ttl}, nil
}

func (s *RedisSessionStore) idxKey() string           { return s.prefix + "idx" }
func (s *RedisSessionStore) sessKey(id string) string { return s.prefix + "session:" + id }

func (s *RedisSessionStore) Create(ctx context.Context) (*Session, error) {
	now := time.Now()
	sess := &Session{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, Messages: []ChatMessage{}}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisSessionStore) save(ctx context.Context, sess *Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session failed, err: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.sessKey(sess.ID), b, s.ttl)
	pipe.ZAdd(ctx, s.idxKey(), &redis.Z{Score: float64(sess.UpdatedAt.Unix()), Member: sess.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist session failed, err: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, bool) {
	b, err := s.rdb.Get(ctx, s.sessKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("redis get session %s failed: %v", id, err)
		}
		return nil, false
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		logger.Warnf("corrupt session payload for %s: %v", id, err)
		return nil, false
	}
	return &sess, true
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) bool {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.sessKey(id))
	pipe.ZRem(ctx, s.idxKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warnf("redis delete session %s failed: %v", id, err)
		return false
	}
	return true
}

func (s *RedisSessionStore) AddMessage(ctx context.Context, id string, msg ChatMessage) bool {
	sess, ok := s.Get(ctx, id)
	if !ok {
		return false
	}
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = time.Now()
	if err := s.save(ctx, sess); err != nil {
		logger.Warnf("redis append message to %s failed: %v", id, err)
		return false
	}
	return true
}

func (s *RedisSessionStore) RememberFeatures(ctx context.Context, id string, features *schema.UserFeatures) bool {
	sess, ok := s.Get(ctx, id)
	if !ok {
		return false
	}
	sess.Features = features
	sess.UpdatedAt = time.Now()
	if err := s.save(ctx, sess); err != nil {
		logger.Warnf("redis save features on %s failed: %v", id, err)
		return false
	}
	return true
}

func (s *RedisSessionStore) ListRange(ctx context.Context, offset, limit int) []*Session {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []*Session{}
	}
	ids, err := s.rdb.ZRevRange(ctx, s.idxKey(), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		logger.Warnf("redis list sessions failed: %v", err)
		return []*Session{}
	}
	out := make([]*Session, 0, len(ids))
	for _, id := range ids {
		if sess, ok := s.Get(ctx, id); ok {
			out = append(out, sess)
		} else {
			// expired payload, drop from the index
			s.rdb.ZRem(ctx, s.idxKey(), id)
		}
	}
	return out
}

func (s *RedisSessionStore) Clean(ctx context.Context, max int) error {
	if max <= 0 {
		return nil
	}
	total, err := s.rdb.ZCard(ctx, s.idxKey()).Result()
	if err != nil {
		return fmt.Errorf("redis zcard failed, err: %w", err)
	}
	if total <= int64(max) {
		return nil
	}
	stale, err := s.rdb.ZRange(ctx, s.idxKey(), 0, total-int64(max)-1).Result()
	if err != nil {
		return fmt.Errorf("redis zrange failed, err: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	for _, id := range stale {
		pipe.Del(ctx, s.sessKey(id))
		pipe.ZRem(ctx, s.idxKey(), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis clean failed, err: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Close() error { return s.rdb.Close() }
