package dot

import "golang.org/x/crypto/blake2b"

// DefaultCapacity is the default number of fingerprints a Cache records.
const DefaultCapacity = 1024

// Fingerprint identifies a formatted statement.
type Fingerprint [blake2b.Size256]byte

// FingerprintOf returns the fingerprint of s.
func FingerprintOf(s string) Fingerprint {
	return Fingerprint(blake2b.Sum256([]byte(s)))
}

// Cache is a bounded set of fingerprints. Entries are never evicted.
type Cache struct {
	capacity int
	seen     map[Fingerprint]struct{}
}

// NewCache creates a cache holding at most capacity fingerprints.
// A capacity below 1 uses DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		seen:     make(map[Fingerprint]struct{}, capacity),
	}
}

// Seen reports whether fp was recorded.
func (c *Cache) Seen(fp Fingerprint) bool {
	_, ok := c.seen[fp]
	return ok
}

// Add records fp. It returns false when the cache is full and fp was dropped.
// Adding a fingerprint that is already present returns true.
func (c *Cache) Add(fp Fingerprint) bool {
	if c.Seen(fp) {
		return true
	}
	if c.Full() {
		return false
	}
	c.seen[fp] = struct{}{}
	return true
}

// Len returns the number of recorded fingerprints.
func (c *Cache) Len() int {
	return len(c.seen)
}

// Cap returns the capacity.
func (c *Cache) Cap() int {
	return c.capacity
}

// Full reports whether no more fingerprints can be recorded.
func (c *Cache) Full() bool {
	return len(c.seen) >= c.capacity
}
