package application

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/abdidvp/detectlint/internal/domain"
)

// DefaultCacheTTL is how long a memoized result stays valid.
const DefaultCacheTTL = 10 * time.Minute

// CachedValidator memoizes results by format and content. Precondition
// errors are never cached.
type CachedValidator struct {
	next     Validator
	cache    *gocache.Cache
	observer domain.ValidationObserver
}

// NewCachedValidator wraps next. observer, which may be nil, is told about
// cache hits; misses are reported by next itself.
func NewCachedValidator(next Validator, ttl time.Duration, observer domain.ValidationObserver) *CachedValidator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedValidator{next: next, cache: gocache.New(ttl, 2*ttl), observer: observer}
}

// ValidateOne returns a fresh copy of the cached result for identical
// content, re-stamped with a new id, the caller's detection id and the
// current time.
func (c *CachedValidator) ValidateOne(d domain.Detection) (*domain.ValidationResult, error) {
	start := time.Now()
	key := cacheKey(d)
	if v, ok := c.cache.Get(key); ok {
		r := v.(*domain.ValidationResult).Clone()
		r.ID = uuid.NewString()
		r.DetectionID = d.ID
		r.Restamp(start.UTC())
		if c.observer != nil {
			c.observer.ObserveValidation(r, time.Since(start))
		}
		return r, nil
	}

	r, err := c.next.ValidateOne(d)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, r.Clone())
	return r, nil
}

// Len reports the number of memoized results.
func (c *CachedValidator) Len() int { return c.cache.ItemCount() }

func cacheKey(d domain.Detection) string {
	h := sha256.New()
	h.Write([]byte(d.Format))
	h.Write([]byte{0})
	h.Write([]byte(d.Content))
	return hex.EncodeToString(h.Sum(nil))
}
