package asset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/af-corp/media-delivery/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute
const redisKeyPrefix = "media:asset:"

// Source looks assets up in a backing catalogue. A missing asset is
// reported as (nil, nil).
type Source interface {
	FindByURL(ctx context.Context, url string) (*Asset, error)
	FindByID(ctx context.Context, id string) (*Asset, error)
}

// Resolver turns an asset ID or root-relative URL into an asset record.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (*Asset, error)
}

// CachedStore implements Resolver over a Source with an optional Redis cache.
type CachedStore struct {
	src     Source
	redis   *redis.Client
	ttl     time.Duration
	metrics *telemetry.Metrics
}

func NewCachedStore(src Source, rdb *redis.Client, ttl time.Duration, metrics *telemetry.Metrics) *CachedStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedStore{src: src, redis: rdb, ttl: ttl, metrics: metrics}
}

// Resolve accepts an asset ID ("container::path") or a URL. URLs are looked
// up with a leading slash and then retried as an ID. Unresolvable references
// return a *NotFoundError.
func (s *CachedStore) Resolve(ctx context.Context, ref string) (*Asset, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		s.record("not_found")
		return nil, &NotFoundError{Ref: ref}
	}

	// Check Redis cache first
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, redisKeyPrefix+ref).Bytes()
		if err == nil {
			var a Asset
			if err := json.Unmarshal(cached, &a); err == nil {
				s.record("cache_hit")
				return &a, nil
			}
		}
	}

	a, err := s.lookup(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			s.record("unavailable")
		} else {
			s.record("error")
		}
		return nil, err
	}
	if a == nil {
		s.record("not_found")
		return nil, &NotFoundError{Ref: ref}
	}
	a.normalize()

	// Cache in Redis
	if s.redis != nil {
		data, err := json.Marshal(a)
		if err == nil {
			s.redis.Set(ctx, redisKeyPrefix+ref, data, s.ttl)
		}
	}

	s.record("found")
	return a, nil
}

func (s *CachedStore) lookup(ctx context.Context, ref string) (*Asset, error) {
	if IsID(ref) {
		a, err := s.src.FindByID(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("find asset by id %s: %w", ref, err)
		}
		return a, nil
	}

	url := ref
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	a, err := s.src.FindByURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("find asset by url %s: %w", url, err)
	}
	if a != nil {
		return a, nil
	}

	a, err = s.src.FindByID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("find asset by id %s: %w", ref, err)
	}
	return a, nil
}

func (s *CachedStore) record(result string) {
	if s.metrics != nil {
		s.metrics.RecordAssetLookup(result)
	}
}
