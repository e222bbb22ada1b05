package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"time"

	"github.com/golang/snappy"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	documentKeyPrefix  = "propbill:doc:"
	defaultDocumentTTL = 15 * time.Minute
)

// DocumentCache keeps rendered invoice documents keyed by a fingerprint of
// their template and fill values.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}

// NewDocumentCache prefers redis when a client is available.
func NewDocumentCache(client *redis.Client, log *zap.Logger) DocumentCache {
	if client == nil {
		return &memoryDocumentCache{docs: NewTTLCache[string, []byte](), ttl: defaultDocumentTTL}
	}
	return &redisDocumentCache{client: client, ttl: defaultDocumentTTL, log: log.Named("cache.documents")}
}

// DocumentKey fingerprints a template version and its placeholder values.
func DocumentKey(templateName string, templateVersion time.Time, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	h.Write([]byte(cacheKey(templateName, templateVersion.UTC().Format(time.RFC3339Nano))))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(values[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

type memoryDocumentCache struct {
	docs Cache[string, []byte]
	ttl  time.Duration
}

func (c *memoryDocumentCache) Get(_ context.Context, key string) ([]byte, bool) {
	return c.docs.Get(key)
}

func (c *memoryDocumentCache) Set(_ context.Context, key string, data []byte) {
	c.docs.Set(key, data, c.ttl)
}

type redisDocumentCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func (c *redisDocumentCache) Get(ctx context.Context, key string) ([]byte, bool) {
	compressed, err := c.client.Get(ctx, documentKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("document cache read failed", zap.Error(err))
		}
		return nil, false
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		c.log.Warn("document cache decode failed", zap.Error(err))
		return nil, false
	}
	return data, true
}

func (c *redisDocumentCache) Set(ctx context.Context, key string, data []byte) {
	compressed := snappy.Encode(nil, data)
	if err := c.client.Set(ctx, documentKeyPrefix+key, compressed, c.ttl).Err(); err != nil {
		c.log.Warn("document cache write failed", zap.Error(err))
	}
}
