package services

import (
	"context"
	"time"

	localCache "github.com/desmin2102/HostelApp/pkg/internal/cache"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
)

const locationCacheTag = "locations"

var LocationCacheTTL = 30 * time.Minute

// cacheMarshal is nil when no store was set up, every caller then reads through to the database.
func cacheMarshal() *marshaler.Marshaler {
	if localCache.S == nil {
		return nil
	}
	return marshaler.New(cache.New[any](localCache.S))
}

func cacheGet[T any](key string) (T, bool) {
	var out T
	marshal := cacheMarshal()
	if marshal == nil {
		return out, false
	}
	val, err := marshal.Get(context.Background(), key, new(T))
	if err != nil {
		return out, false
	}
	if ptr, ok := val.(*T); ok && ptr != nil {
		return *ptr, true
	}
	return out, false
}

func cacheSet(key string, value any, ttl time.Duration, tags ...string) {
	marshal := cacheMarshal()
	if marshal == nil {
		return
	}
	if err := marshal.Set(
		context.Background(),
		key,
		value,
		store.WithExpiration(ttl),
		store.WithTags(tags),
	); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Unable to write cache entry...")
	}
}

func cacheInvalidate(tags ...string) {
	marshal := cacheMarshal()
	if marshal == nil {
		return
	}
	if err := marshal.Invalidate(context.Background(), store.WithInvalidateTags(tags)); err != nil {
		log.Warn().Err(err).Strs("tags", tags).Msg("Unable to invalidate cache entries...")
	}
}

func cacheDelete(key string) {
	marshal := cacheMarshal()
	if marshal == nil {
		return
	}
	_ = marshal.Delete(context.Background(), key)
}
