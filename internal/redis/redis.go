package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

const pairingPrefix = "pairing:"

func InitRedis(redisAddress, redisUsername, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if err := Rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set redis key")
	}
}

// RegisterPairingCode stores code -> deviceID until an admin claims it.
// Codes expire so an abandoned TV doesn't hold one forever.
func RegisterPairingCode(ctx context.Context, code, deviceID string, ttl time.Duration) error {
	return Rdb.Set(ctx, pairingPrefix+code, deviceID, ttl).Err()
}

// ClaimPairingCode resolves and consumes a pairing code.
func ClaimPairingCode(ctx context.Context, code string) (string, error) {
	key := pairingPrefix + code
	deviceID, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		return "", err
	}
	Rdb.Del(ctx, key)
	return deviceID, nil
}
