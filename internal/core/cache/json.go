package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetOrLoadJSON GetOrLoad 的 JSON 版本。
// 缓存内容解码失败（结构变更后的旧数据）时删除该 key 并回源一次。
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	fetch := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, fetch)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if json.Unmarshal(b, out) == nil {
		return out, nil
	}

	_ = c.RDB.Del(ctx, key).Err()
	if b, err = c.GetOrLoad(ctx, key, ttl, fetch); err != nil {
		return nil, err
	}
	out = new(T)
	if err := json.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", key, err)
	}
	return out, nil
}
