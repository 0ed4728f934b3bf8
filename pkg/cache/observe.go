package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/spantower/pkg/observability"
)

// observed reports operations to the observability cache hooks.
type observed struct {
	Cache
}

// Observe wraps c so that hits, misses and writes reach
// [observability.Cache]. The key type reported to the hooks is the key
// prefix before the first colon ("layout", "doc").
func Observe(c Cache) Cache {
	if c == nil {
		return nil
	}
	return observed{c}
}

func (o observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (o observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

// keyType returns the last prefix segment of a key: "session:x:layout:<h>"
// reports "layout".
func keyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return "unknown"
	}
	head := key[:i]
	if j := strings.LastIndexByte(head, ':'); j >= 0 {
		return head[j+1:]
	}
	return head
}
