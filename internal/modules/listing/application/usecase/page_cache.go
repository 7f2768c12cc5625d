package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"guardpost/internal/modules/listing/application/port"
	"guardpost/internal/modules/listing/domain"
)

const (
	cacheKindList  = "list"
	cacheKindItem  = "item"
	cacheDelimiter = ":"
)

// pageCache keeps the last good page per resource and canonical query so a
// dashboard can keep showing data when a refresh fails. Entries are keyed by
// bearer token as well: upstream pages are scoped to the calling client, so
// one session's rows must never serve another.
type pageCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]*pageCacheEntry
}

type pageCacheEntry struct {
	resource  string
	key       string
	query     domain.PagedQuery
	result    *port.PageResult
	fetchedAt time.Time
}

func newPageCache() *pageCache {
	return &pageCache{entries: make(map[string]map[string]*pageCacheEntry)}
}

func (c *pageCache) set(token, resource string, query domain.PagedQuery, result *port.PageResult) {
	resource = strings.TrimSpace(resource)
	if resource == "" || result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[resource] == nil {
		c.entries[resource] = make(map[string]*pageCacheEntry)
	}
	key := cacheEntryKey(cacheKindList, token, query, "")
	c.entries[resource][key] = &pageCacheEntry{
		resource:  resource,
		key:       key,
		query:     query,
		result:    result,
		fetchedAt: time.Now().UTC(),
	}
}

func (c *pageCache) get(token, resource string, query domain.PagedQuery) (*port.PageResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := c.entries[strings.TrimSpace(resource)]
	if res == nil {
		return nil, false
	}
	entry, ok := res[cacheEntryKey(cacheKindList, token, query, "")]
	if !ok {
		return nil, false
	}
	return entry.result, true
}

func (c *pageCache) delete(token, resource string, query domain.PagedQuery) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if res := c.entries[resource]; res != nil {
		delete(res, cacheEntryKey(cacheKindList, token, query, ""))
		if len(res) == 0 {
			delete(c.entries, resource)
		}
	}
}

func (c *pageCache) invalidateResource(resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, strings.TrimSpace(resource))
}

func cacheEntryKey(kind, token string, query domain.PagedQuery, resourceID string) string {
	owner := tokenFingerprint(token)
	if kind == cacheKindItem {
		return cacheKindItem + cacheDelimiter + owner + cacheDelimiter + strings.TrimSpace(resourceID)
	}
	return cacheKindList + cacheDelimiter + owner + cacheDelimiter + query.CanonicalKey()
}

// tokenFingerprint hashes the bearer token so cache keys never hold the raw
// credential.
func tokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
