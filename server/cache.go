package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/waqaskhan137/fintips/flow"
)

// tipsCache remembers generated tips per identical request. A nil cache is a no-op.
type tipsCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func newTipsCache(maxEntries int64, ttl time.Duration) (*tipsCache, error) {
	if maxEntries <= 0 || ttl <= 0 {
		return nil, nil
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating tips cache: %w", err)
	}
	return &tipsCache{cache: cache, ttl: ttl}, nil
}

// cacheKey hashes the user ID and the canonical JSON of the input. Map keys
// marshal sorted.
func cacheKey(userID string, in flow.Input) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write(data)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:]), nil
}

func (t *tipsCache) get(key string) (*flow.Output, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.cache.Get(key)
	if !ok {
		return nil, false
	}
	out, ok := v.(*flow.Output)
	return out, ok
}

func (t *tipsCache) set(key string, out *flow.Output) {
	if t == nil {
		return
	}
	t.cache.SetWithTTL(key, out, 1, t.ttl)
}

// wait blocks until buffered writes are applied.
func (t *tipsCache) wait() {
	if t != nil {
		t.cache.Wait()
	}
}

func (t *tipsCache) close() {
	if t != nil {
		t.cache.Close()
	}
}
