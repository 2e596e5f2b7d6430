package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/tour-booking-api/pkg/helpers"
)

type resetRecord struct {
	UserID string `json:"uid"`
}

// RedisResetTokens stores reset digests with a TTL in Redis.
type RedisResetTokens struct {
	rdb redis.Cmdable
}

func NewRedisResetTokens(rdb redis.Cmdable) *RedisResetTokens {
	return &RedisResetTokens{rdb: rdb}
}

func (s *RedisResetTokens) Save(ctx context.Context, digest, userID string, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, s.rdb, helpers.KeyPasswordReset(digest), resetRecord{UserID: userID}, ttl)
}

func (s *RedisResetTokens) Take(ctx context.Context, digest string) (string, bool, error) {
	var rec resetRecord
	found, err := helpers.RedisTakeJSON(ctx, s.rdb, helpers.KeyPasswordReset(digest), &rec)
	if err != nil || !found {
		return "", false, err
	}
	return rec.UserID, true, nil
}
