package odds

import (
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/hackbook/internal/models"
)

// Cache provides short-TTL in-memory caching of the latest priced records
// per prize. Reads tolerate staleness: the UI seeing odds a few seconds old
// is accepted behavior, settlement never consults this cache.
type Cache struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewCache creates an odds cache with the given TTL
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// SetPrize stores the latest records for a prize
func (c *Cache) SetPrize(prizeID uuid.UUID, records []*models.OddsRecord) {
	c.cache.Set(prizeID.String(), records, c.ttl)
}

// GetPrize retrieves the cached records for a prize, if fresh
func (c *Cache) GetPrize(prizeID uuid.UUID) ([]*models.OddsRecord, bool) {
	if value, found := c.cache.Get(prizeID.String()); found {
		if records, ok := value.([]*models.OddsRecord); ok {
			return records, true
		}
	}
	return nil, false
}

// Invalidate drops the cached records for a prize
func (c *Cache) Invalidate(prizeID uuid.UUID) {
	c.cache.Delete(prizeID.String())
}
