package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists the session behind every issued token. Deleting a
// session is what makes revocation observable: a token whose session is gone
// stops verifying even though its signature is still valid.
type SessionStore interface {
	Put(ctx context.Context, userID, sid string, ttl time.Duration) error

	// Lookup returns the user id owning the session, or "" when the session
	// does not exist.
	Lookup(ctx context.Context, sid string) (string, error)

	// Delete removes one session and reports whether it existed.
	Delete(ctx context.Context, userID, sid string) (bool, error)

	// DeleteAll removes every session of the user.
	DeleteAll(ctx context.Context, userID string) error
}

func sessionKey(sid string) string      { return "auth:session:" + sid }
func userSessionsKey(uid string) string { return "auth:user:sessions:" + uid }

// RedisSessions keeps sessions in Redis under the refresh TTL, plus a per-user
// set so every session of a user can be dropped at once.
type RedisSessions struct {
	rdb *redis.Client
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

func (s *RedisSessions) Put(ctx context.Context, userID, sid string, ttl time.Duration) error {
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, sessionKey(sid), userID, ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), sid)
	pipe.Expire(ctx, userSessionsKey(userID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisSessions) Lookup(ctx context.Context, sid string) (string, error) {
	uid, err := s.rdb.Get(ctx, sessionKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return uid, err
}

func (s *RedisSessions) Delete(ctx context.Context, userID, sid string) (bool, error) {
	deleted, err := s.rdb.Del(ctx, sessionKey(sid)).Result()
	if err != nil {
		return false, err
	}
	s.rdb.SRem(ctx, userSessionsKey(userID), sid)
	return deleted > 0, nil
}

func (s *RedisSessions) DeleteAll(ctx context.Context, userID string) error {
	sids, err := s.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}
	if len(sids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, sessionKey(sid))
	}
	keys = append(keys, userSessionsKey(userID))
	return s.rdb.Del(ctx, keys...).Err()
}
