package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vampirenirmal/lumina/internal/storage"
)

const cacheKeyPrefix = "ai_cache/"

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lumina_ai_cache_lookups_total",
	Help: "AI response cache lookups by result",
}, []string{"result"})

// ResponseCache stores AI responses keyed by a hash of the request.
type ResponseCache struct {
	storage storage.Store
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type CachedResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

func NewResponseCache(store storage.Store, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		storage: store,
		ttl:     ttl,
		now:     time.Now,
		logger:  slog.Default().With("component", "response_cache"),
	}
}

func (c *ResponseCache) Get(ctx context.Context, request string) (string, bool) {
	key := c.hashRequest(request)

	data, err := c.storage.Load(ctx, cacheKeyPrefix+key)
	if err != nil {
		cacheLookups.WithLabelValues("miss").Inc()
		c.logger.Debug("cache miss - not found",
			"key", key,
			"error", err)
		return "", false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		cacheLookups.WithLabelValues("invalid").Inc()
		c.logger.Error("cache miss - invalid data",
			"key", key,
			"error", err)
		return "", false
	}

	age := c.now().Sub(cached.Timestamp)
	if age > c.ttl {
		cacheLookups.WithLabelValues("expired").Inc()
		c.logger.Debug("cache miss - expired",
			"key", key,
			"age", age,
			"ttl", c.ttl)
		return "", false
	}

	cacheLookups.WithLabelValues("hit").Inc()
	c.logger.Debug("cache hit",
		"key", key,
		"age", age,
		"response_length", len(cached.Response))

	return cached.Response, true
}

func (c *ResponseCache) Set(ctx context.Context, request, response string) error {
	key := c.hashRequest(request)

	data, err := json.Marshal(CachedResponse{
		Response:  response,
		Timestamp: c.now(),
	})
	if err != nil {
		return fmt.Errorf("marshaling cached response: %w", err)
	}

	if err := c.storage.Save(ctx, cacheKeyPrefix+key, data); err != nil {
		c.logger.Error("failed to save cache entry",
			"key", key,
			"error", err)
		return err
	}
	return nil
}

// Purge deletes expired and unreadable entries and reports how many went.
func (c *ResponseCache) Purge(ctx context.Context) (int, error) {
	keys, err := c.storage.List(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("listing cache entries: %w", err)
	}

	removed := 0
	for _, key := range keys {
		data, err := c.storage.Load(ctx, key)
		if err != nil {
			continue
		}
		var cached CachedResponse
		if json.Unmarshal(data, &cached) == nil && c.now().Sub(cached.Timestamp) <= c.ttl {
			continue
		}
		if err := c.storage.Delete(ctx, key); err != nil {
			return removed, fmt.Errorf("deleting cache entry: %w", err)
		}
		removed++
	}

	if removed > 0 {
		c.logger.Info("Purged AI cache", "removed", removed, "kept", len(keys)-removed)
	}
	return removed, nil
}

func (c *ResponseCache) hashRequest(request string) string {
	hash := sha256.Sum256([]byte(request))
	return hex.EncodeToString(hash[:])
}

// CachedClient serves repeated requests from a ResponseCache.
type CachedClient struct {
	AIClient
	cache  *ResponseCache
	logger *slog.Logger
}

func WithCache(client AIClient, cache *ResponseCache) AIClient {
	return &CachedClient{
		AIClient: client,
		cache:    cache,
		logger:   slog.Default().With("component", "cached_client"),
	}
}

// CompleteWithSystem makes a request with separate system and user prompts, with caching
func (c *CachedClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	key := fmt.Sprintf("SYSTEM:%s|USER:%s", systemPrompt, userPrompt)
	return c.cached(ctx, key, func() (string, error) {
		return c.AIClient.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	})
}

// CompleteJSONWithSystem makes a JSON request with separate system and user prompts, with caching
func (c *CachedClient) CompleteJSONWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	key := fmt.Sprintf("JSON_SYSTEM:%s|USER:%s", systemPrompt, userPrompt)
	return c.cached(ctx, key, func() (string, error) {
		return c.AIClient.CompleteJSONWithSystem(ctx, systemPrompt, userPrompt)
	})
}

func (c *CachedClient) cached(ctx context.Context, key string, call func() (string, error)) (string, error) {
	startTime := time.Now()

	if response, found := c.cache.Get(ctx, key); found {
		c.logger.Info("serving from cache",
			"response_length", len(response),
			"duration_ms", time.Since(startTime).Milliseconds())
		return response, nil
	}

	response, err := call()
	if err != nil {
		return "", err
	}

	if cacheErr := c.cache.Set(ctx, key, response); cacheErr != nil {
		c.logger.Warn("failed to cache response",
			"error", cacheErr)
	}
	return response, nil
}
