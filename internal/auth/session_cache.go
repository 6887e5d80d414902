package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"ms-bookings/internal/logger"

	"github.com/go-redis/redis/v8"
)

const revokedKeyPrefix = "revoked_session:"

// SessionCache tracks signed-out sessions in Redis. A revoked token stays
// blacklisted for the session TTL, after which it has expired anyway.
type SessionCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewSessionCache connects to Redis and verifies the connection.
func NewSessionCache(redisAddr string, ttl time.Duration, customLogger *logger.Logger) (*SessionCache, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		if customLogger != nil {
			customLogger.Error("AUTH", "Failed to connect to Redis at "+redisAddr)
		}
		return nil, err
	}

	if customLogger != nil {
		customLogger.Info("AUTH", "Redis session cache ready at "+redisAddr)
	}
	return &SessionCache{Client: redisClient, TTL: ttl}, nil
}

// Revoke blacklists a raw bearer token.
func (c *SessionCache) Revoke(ctx context.Context, rawToken string) error {
	return c.Client.Set(ctx, revokedKeyPrefix+hashToken(rawToken), "1", c.TTL).Err()
}

// IsRevoked reports whether the token was signed out.
func (c *SessionCache) IsRevoked(ctx context.Context, rawToken string) bool {
	_, err := c.Client.Get(ctx, revokedKeyPrefix+hashToken(rawToken)).Result()
	return err == nil
}

func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
