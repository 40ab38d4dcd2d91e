package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/models"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Cache key constants
const (
	TourDetailKey     = "tour:detail:%s"
	BarrierFreeKey    = "tour:barrierfree:%s"
	SessionKey        = "session:%s"
	LoginAttemptsKey  = "login:attempts:%s"
	LoginLockKey      = "login:locked:%s"
	PopularKeywordKey = "popular:keywords"
	SystemHealthKey   = "system:health"
)

// Cache implementation
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Get decodes the JSON value stored at key into dest. A missing key is not an error.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

// Set stores value as JSON at key.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// CreateSession stores a new session for the user and returns its id.
func (c *Cache) CreateSession(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	key := fmt.Sprintf(SessionKey, id)
	if err := c.client.Set(ctx, key, strconv.FormatUint(uint64(userID), 10), ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return id, nil
}

// GetSession resolves a session id and slides its expiry.
func (c *Cache) GetSession(ctx context.Context, sessionID string, ttl time.Duration) (uint, error) {
	key := fmt.Sprintf(SessionKey, sessionID)
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}

	if ttl > 0 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			c.logger.WithError(err).Warn("Failed to extend session")
		}
	}
	return uint(userID), nil
}

func (c *Cache) DeleteSession(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, fmt.Sprintf(SessionKey, sessionID)).Err()
}

// IncrementLoginAttempts counts a failed login. The counter expires window after the
// first failure.
func (c *Cache) IncrementLoginAttempts(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := fmt.Sprintf(LoginAttemptsKey, email)

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count login attempt: %w", err)
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("failed to expire login attempts: %w", err)
		}
	}
	return count, nil
}

func (c *Cache) ResetLoginAttempts(ctx context.Context, email string) error {
	return c.client.Del(ctx, fmt.Sprintf(LoginAttemptsKey, email), fmt.Sprintf(LoginLockKey, email)).Err()
}

// LockAccount blocks logins for email during d.
func (c *Cache) LockAccount(ctx context.Context, email string, d time.Duration) error {
	return c.client.Set(ctx, fmt.Sprintf(LoginLockKey, email), time.Now().Add(d).Unix(), d).Err()
}

// LockRemaining returns how long email stays locked, or 0.
func (c *Cache) LockRemaining(ctx context.Context, email string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, fmt.Sprintf(LoginLockKey, email)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// CachePopularKeywords caches popular keywords list
func (c *Cache) CachePopularKeywords(ctx context.Context, keywords []models.PopularKeyword, expiration time.Duration) error {
	return c.Set(ctx, PopularKeywordKey, keywords, expiration)
}

// GetCachedPopularKeywords retrieves cached popular keywords
func (c *Cache) GetCachedPopularKeywords(ctx context.Context) ([]models.PopularKeyword, bool, error) {
	var keywords []models.PopularKeyword
	ok, err := c.Get(ctx, PopularKeywordKey, &keywords)
	return keywords, ok, err
}

// CacheSystemHealth caches system health status
func (c *Cache) CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error {
	return c.Set(ctx, SystemHealthKey, health, expiration)
}

// GetCachedSystemHealth retrieves cached system health
func (c *Cache) GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, bool, error) {
	var health []models.SystemHealth
	ok, err := c.Get(ctx, SystemHealthKey, &health)
	return health, ok, err
}
