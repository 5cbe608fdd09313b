package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/emberhaus/internal/cache"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	httpCacheKeyPrefix      = "http:"
	defaultHTTPCacheMaxBody = 1 << 20 // 1 MiB
)

// CacheStatusHeader reports hit or miss for cacheable requests.
const CacheStatusHeader = "X-Cache"

// HTTPCacheOptions configures HTTPCache.
type HTTPCacheOptions struct {
	TTL          time.Duration
	SkipPaths    []string
	MaxBodyBytes int
	Logger       *zap.Logger

	// QueryParams lists the query parameters handlers read. Only these become part
	// of the cache key; anything else in the query string is ignored.
	QueryParams []string

	// KeyFunc adds a variant suffix to the cache key, for responses that depend on
	// request headers.
	KeyFunc func(c *gin.Context) string
}

// replayedHeaders are stored with a cached response and sent again on hits.
var replayedHeaders = []string{"Vary", "Accept-CH"}

type cachedHTTPResponse struct {
	Status      int               `json:"status"`
	ContentType string            `json:"content_type,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        []byte            `json:"body"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body         []byte
	maxBodyBytes int
	overflow     bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.overflow || len(data) == 0 {
		return
	}
	if len(w.body)+len(data) > w.maxBodyBytes {
		w.overflow = true
		w.body = nil
		return
	}
	w.body = append(w.body, data...)
}

// HTTPCache serves anonymous GET requests from store and records 200 responses. Admin
// sessions always bypass it so drafts never leak into the shared cache. A nil store or
// a non-positive TTL disables caching.
func HTTPCache(store cache.Store, opts HTTPCacheOptions) gin.HandlerFunc {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultHTTPCacheMaxBody
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if store == nil || opts.TTL <= 0 || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if shouldSkipCachePath(c.Request.URL.Path, opts.SkipPaths) {
			c.Next()
			return
		}
		if IsAdmin(c) {
			c.Header("Cache-Control", "private, no-store")
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := httpCacheKey(c, opts)
		if payload, ok := readCachedResponse(ctx, store, key); ok {
			for name, value := range payload.Headers {
				c.Header(name, value)
			}
			c.Header(CacheStatusHeader, "hit")
			c.Header("Cache-Control", "public, max-age="+strconv.Itoa(int(opts.TTL/time.Second)))
			c.Data(payload.Status, payload.ContentType, payload.Body)
			c.Abort()
			return
		}

		buffer := &cacheBodyWriter{ResponseWriter: c.Writer, maxBodyBytes: opts.MaxBodyBytes}
		c.Writer = buffer
		c.Header(CacheStatusHeader, "miss")
		c.Next()

		if c.Writer.Status() != http.StatusOK || buffer.overflow || len(buffer.body) == 0 {
			return
		}
		if cc := strings.ToLower(c.Writer.Header().Get("Cache-Control")); strings.Contains(cc, "no-store") || strings.Contains(cc, "private") {
			return
		}

		var headers map[string]string
		for _, name := range replayedHeaders {
			if value := c.Writer.Header().Get(name); value != "" {
				if headers == nil {
					headers = make(map[string]string, len(replayedHeaders))
				}
				headers[name] = value
			}
		}
		raw, err := json.Marshal(cachedHTTPResponse{
			Status:      http.StatusOK,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Headers:     headers,
			Body:        buffer.body,
		})
		if err != nil {
			return
		}
		if err := store.Set(ctx, key, raw, opts.TTL); err != nil {
			log.Warn("http cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// httpCacheKey builds the key from the path, the allowed query parameters in
// sorted order and the optional variant.
func httpCacheKey(c *gin.Context, opts HTTPCacheOptions) string {
	key := httpCacheKeyPrefix + c.Request.URL.Path
	if len(opts.QueryParams) > 0 {
		query := c.Request.URL.Query()
		kept := url.Values{}
		for _, name := range opts.QueryParams {
			if values, ok := query[name]; ok {
				kept[name] = values
			}
		}
		if encoded := kept.Encode(); encoded != "" {
			key += "?" + encoded
		}
	}
	if opts.KeyFunc != nil {
		if variant := opts.KeyFunc(c); variant != "" {
			key += "|" + variant
		}
	}
	return key
}

// PurgeHTTPCache drops every cached response.
func PurgeHTTPCache(ctx context.Context, store cache.Store) error {
	if store == nil {
		return nil
	}
	return store.Clear(ctx)
}

func readCachedResponse(ctx context.Context, store cache.Store, key string) (cachedHTTPResponse, bool) {
	raw, err := store.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		return cachedHTTPResponse{}, false
	}
	var payload cachedHTTPResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return cachedHTTPResponse{}, false
	}
	if payload.Status <= 0 {
		payload.Status = http.StatusOK
	}
	if payload.ContentType == "" {
		payload.ContentType = "application/json; charset=utf-8"
	}
	return payload, true
}

func shouldSkipCachePath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		p := strings.TrimSpace(pattern)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}
