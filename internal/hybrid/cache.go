package hybrid

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	badger "github.com/dgraph-io/badger/v4"
)

// EmbeddingCache is an optional on-disk cache for embedding vectors,
// consulted by CachedEmbedder before calling the wrapped Embedder. It is
// never required for correctness (spec §4.10's "optional external
// embedding cache" suspension point); callers that skip it just pay the
// embed cost again.
type EmbeddingCache struct {
	db      *badger.DB
	dir     string
	ownsDir bool
}

// CacheConfig controls where the cache lives on disk.
type CacheConfig struct {
	// Dir is the on-disk path. Empty creates a disposable temp dir that
	// Close removes.
	Dir string
}

// OpenEmbeddingCache opens (creating if absent) a Badger-backed
// embedding cache.
func OpenEmbeddingCache(cfg CacheConfig) (*EmbeddingCache, error) {
	dir := cfg.Dir
	ownsDir := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "ctxengine-embedcache-")
		if err != nil {
			return nil, fmt.Errorf("creating temp cache dir: %w", err)
		}
		dir = tmp
		ownsDir = true
	}

	db, err := badger.Open(badger.DefaultOptions(dir))
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	return &EmbeddingCache{db: db, dir: dir, ownsDir: ownsDir}, nil
}

// Close releases the database handle. If the cache owns a disposable
// temp dir, it is removed.
func (c *EmbeddingCache) Close() error {
	err := c.db.Close()
	if c.ownsDir {
		_ = os.RemoveAll(c.dir)
	}
	return err
}

func cacheKey(text string) []byte {
	return []byte("emb:" + text)
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

// Get returns the cached vector for text, if present.
func (c *EmbeddingCache) Get(text string) ([]float32, bool, error) {
	var vec []float32
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(text))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vec = decodeVector(val)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return vec, vec != nil, nil
}

// Put stores a computed vector for text.
func (c *EmbeddingCache) Put(text string, vec []float32) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(text), encodeVector(vec))
	})
}

// CachedEmbedder wraps an Embedder with a read-through EmbeddingCache.
type CachedEmbedder struct {
	Inner Embedder
	Cache *EmbeddingCache
}

// Embed returns the cached vector when present, otherwise delegates to
// Inner and stores the result.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, hit, err := c.Cache.Get(text); err != nil {
		return nil, err
	} else if hit {
		return vec, nil
	}
	vec, err := c.Inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Put(text, vec); err != nil {
		return nil, err
	}
	return vec, nil
}
