package sessionstore

import (
	"context"
	"errors"
	"time"

	pkgredis "github.com/angelmondragon/shopdash/pkg/redis"
)

// redisKV is the subset of pkg/redis.Client the backend needs.
type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SessionKey(profile, field string) string
}

// Redis stores each field under sd:session:<profile>:<field> without expiry.
type Redis struct {
	client  redisKV
	profile string
}

func NewRedis(client redisKV, profile string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if profile == "" {
		profile = "default"
	}
	return &Redis{client: client, profile: profile}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.client.SessionKey(r.profile, key))
	if errors.Is(err, pkgredis.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.client.SessionKey(r.profile, key), value, 0)
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.client.SessionKey(r.profile, k))
	}
	return r.client.Del(ctx, full...)
}
