package tiff

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// A CachePolicy selects which decoded blocks a directory retains.
type CachePolicy int

const (
	// CacheSingleBlock keeps the most recently decoded block only.
	CacheSingleBlock CachePolicy = iota
	// CacheDisabled decodes every block on every fetch.
	CacheDisabled
	// CacheFull keeps every decoded block for the lifetime of the directory.
	CacheFull
	// CacheLRU keeps a bounded number of recently used blocks.
	CacheLRU
)

// DefaultLRUCacheSize is the CacheLRU capacity used when none is given.
const DefaultLRUCacheSize = 64

func (p CachePolicy) String() string {
	switch p {
	case CacheSingleBlock:
		return "single-block"
	case CacheDisabled:
		return "disabled"
	case CacheFull:
		return "full"
	case CacheLRU:
		return "lru"
	}
	return fmt.Sprintf("CachePolicy(%d)", int(p))
}

// blockCache stores decoded blocks keyed by block index.
type blockCache interface {
	get(index int) ([]byte, bool)
	add(index int, block []byte)
	purge()
}

func newBlockCache(policy CachePolicy, size int) (blockCache, error) {
	switch policy {
	case CacheSingleBlock:
		return &singleBlockCache{index: -1}, nil
	case CacheDisabled:
		return noCache{}, nil
	case CacheFull:
		return fullCache{}, nil
	case CacheLRU:
		if size <= 0 {
			size = DefaultLRUCacheSize
		}
		c, err := lru.New(size)
		if err != nil {
			return nil, err
		}
		return &lruCache{c: c}, nil
	}
	return nil, UnsupportedError(fmt.Sprintf("cache policy %d", int(policy)))
}

type noCache struct{}

func (noCache) get(int) ([]byte, bool) { return nil, false }
func (noCache) add(int, []byte)        {}
func (noCache) purge()                 {}

type singleBlockCache struct {
	index int
	block []byte
}

func (c *singleBlockCache) get(index int) ([]byte, bool) {
	if c.index != index {
		return nil, false
	}
	return c.block, true
}

func (c *singleBlockCache) add(index int, block []byte) {
	c.index = index
	c.block = block
}

func (c *singleBlockCache) purge() {
	c.index = -1
	c.block = nil
}

type fullCache map[int][]byte

func (c fullCache) get(index int) ([]byte, bool) {
	b, ok := c[index]
	return b, ok
}

func (c fullCache) add(index int, block []byte) {
	c[index] = block
}

func (c fullCache) purge() {
	for k := range c {
		delete(c, k)
	}
}

type lruCache struct {
	c *lru.Cache // block index -> []byte
}

func (c *lruCache) get(index int) ([]byte, bool) {
	v, ok := c.c.Get(index)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (c *lruCache) add(index int, block []byte) {
	c.c.Add(index, block)
}

func (c *lruCache) purge() {
	c.c.Purge()
}
