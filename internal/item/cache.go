package item

import "time"

const DefaultCacheTTL = 5 * time.Minute

// CacheKey is the read-cache key of a single item. Anything that changes the item must delete it.
func CacheKey(id string) string {
	return "item:" + id
}

// LockKey serializes quantity changes of one item.
func LockKey(id string) string {
	return "lock:item:" + id
}
