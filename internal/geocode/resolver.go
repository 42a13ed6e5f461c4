package geocode

import (
	"context"
	"fmt"
	"time"
)

// DefaultDelay is the minimum spacing between external lookups. The public
// Nominatim endpoint allows at most one request per second.
const DefaultDelay = 1100 * time.Millisecond

// DefaultCountryBias is appended to the first lookup attempt for each
// location; the raw string is retried when the biased query finds nothing.
const DefaultCountryBias = "United Kingdom"

// Stats counts resolver activity for one build.
type Stats struct {
	Hits     int // answered from cache, no network call
	Resolved int // fresh lookups that found coordinates
	Failed   int // fresh lookups that stored the sentinel
}

// Lookups returns the number of external calls' worth of work performed,
// counting each fresh location once regardless of fallback attempts.
func (s Stats) Lookups() int {
	return s.Resolved + s.Failed
}

// Resolver answers location queries from the cache, falling back to the
// external geocoder for unseen keys. Lookups are strictly sequential with
// an enforced minimum delay between them, per the service's fair-use
// policy.
type Resolver struct {
	cache       *Cache
	geocoder    Geocoder
	delay       time.Duration
	countryBias string
	lastLookup  time.Time
}

// NewResolver wires a cache and a geocoder together. A zero delay uses
// DefaultDelay; an empty countryBias disables the biased first attempt.
func NewResolver(cache *Cache, geocoder Geocoder, delay time.Duration, countryBias string) *Resolver {
	if delay == 0 {
		delay = DefaultDelay
	}
	return &Resolver{
		cache:       cache,
		geocoder:    geocoder,
		delay:       delay,
		countryBias: countryBias,
	}
}

// Resolve returns the cache entry for a canonical location key, looking
// the location up externally when the key has never been seen. The
// returned bool reports whether the answer came from the cache. The only
// error returned is context cancellation; lookup failures become the
// cached sentinel.
func (r *Resolver) Resolve(ctx context.Context, key, original string) (Entry, bool, error) {
	if entry, ok := r.cache.Lookup(key); ok {
		return entry, true, nil
	}

	if err := r.throttle(ctx); err != nil {
		return Entry{}, false, err
	}

	result, err := r.lookup(ctx, original)
	if err != nil {
		if ctx.Err() != nil {
			return Entry{}, false, ctx.Err()
		}
		entry := SentinelEntry()
		r.cache.Put(key, entry)
		return entry, false, nil
	}

	entry := FoundEntry(result.Lat, result.Lon, result.DisplayName)
	r.cache.Put(key, entry)
	return entry, false, nil
}

// ResolveAll resolves a batch of distinct keys in order, accumulating
// stats. originals maps each key to the location text used for lookups.
func (r *Resolver) ResolveAll(ctx context.Context, keys []string, originals map[string]string) (Stats, error) {
	var stats Stats
	for _, key := range keys {
		entry, fromCache, err := r.Resolve(ctx, key, originals[key])
		if err != nil {
			return stats, err
		}
		switch {
		case fromCache:
			stats.Hits++
		case entry.Found():
			stats.Resolved++
		default:
			stats.Failed++
		}
	}
	return stats, nil
}

// lookup tries the country-biased query first, then falls back to the
// raw location string when the biased form finds nothing or errors.
func (r *Resolver) lookup(ctx context.Context, location string) (*Result, error) {
	if r.countryBias != "" {
		result, err := r.geocoder.Geocode(ctx, fmt.Sprintf("%s, %s", location, r.countryBias))
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return r.geocoder.Geocode(ctx, location)
}

// throttle sleeps out the remainder of the minimum spacing since the last
// external lookup. The first lookup of a build is not delayed.
func (r *Resolver) throttle(ctx context.Context) error {
	defer func() { r.lastLookup = time.Now() }()

	if r.lastLookup.IsZero() {
		return nil
	}
	wait := r.delay - time.Since(r.lastLookup)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
