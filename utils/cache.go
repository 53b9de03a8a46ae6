// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"pharmalink/config"
)

// AuthTokenCache tracks issued auth tokens so they can be revoked before
// their JWT expiry. Implementations must treat an unknown subject as invalid.
type AuthTokenCache interface {
	Store(ctx context.Context, subject, tokenHash string, ttl time.Duration) error
	Valid(ctx context.Context, subject, tokenHash string) (bool, error)
	Revoke(ctx context.Context, subject string) error
}

// AuthCacheClient is the dedicated Redis client for authorization caching.
var AuthCacheClient *redis.Client

// InitAuthCache initializes the Redis client for authorization caching.
func InitAuthCache() {
	AuthCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAuthDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := AuthCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Auth Cache): %v", err)
	}
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// RedisAuthTokenCache implements AuthTokenCache on the auth Redis DB.
type RedisAuthTokenCache struct {
	Client *redis.Client
}

func NewRedisAuthTokenCache(client *redis.Client) *RedisAuthTokenCache {
	return &RedisAuthTokenCache{Client: client}
}

func authKey(subject string) string {
	return "auth:token:" + subject
}

func (c *RedisAuthTokenCache) Store(ctx context.Context, subject, tokenHash string, ttl time.Duration) error {
	return c.Client.Set(ctx, authKey(subject), tokenHash, ttl).Err()
}

func (c *RedisAuthTokenCache) Valid(ctx context.Context, subject, tokenHash string) (bool, error) {
	stored, err := c.Client.Get(ctx, authKey(subject)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == tokenHash, nil
}

func (c *RedisAuthTokenCache) Revoke(ctx context.Context, subject string) error {
	return c.Client.Del(ctx, authKey(subject)).Err()
}
