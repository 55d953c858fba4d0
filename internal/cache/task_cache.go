package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	dom "taskboard/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "taskboard:tasks:"
	keyGen    = keyPrefix + "gen"
	keyList   = keyPrefix + "list"
	keySearch = keyPrefix + "search:"
	keyTask   = keyPrefix + "id:"
)

// TaskCache caches the task list, search results and single tasks in Redis.
// A miss is reported as (nil, nil) for lists and (zero, false, nil) for tasks.
//
// Fills are guarded by a generation counter: a reader takes Generation before
// loading from the store and passes it to Set*. InvalidateAll bumps the counter,
// so a fill that raced with a write is dropped instead of caching stale data.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a cache whose entries expire after ttl.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// Generation returns the current invalidation generation, 0 if none was recorded yet.
func (c *TaskCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyGen).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetList returns the cached full task list.
func (c *TaskCache) GetList(ctx context.Context) ([]dom.Task, error) {
	return c.getList(ctx, keyList)
}

// SetList caches the full task list if no invalidation happened since gen.
func (c *TaskCache) SetList(ctx context.Context, gen int64, list []dom.Task) error {
	return c.set(ctx, gen, keyList, list)
}

// GetSearch returns cached results for the normalized query q.
func (c *TaskCache) GetSearch(ctx context.Context, q string) ([]dom.Task, error) {
	return c.getList(ctx, keySearch+NormalizeQuery(q))
}

// SetSearch caches results for q if no invalidation happened since gen.
func (c *TaskCache) SetSearch(ctx context.Context, gen int64, q string, list []dom.Task) error {
	return c.set(ctx, gen, keySearch+NormalizeQuery(q), list)
}

// GetTask returns the cached task with id.
func (c *TaskCache) GetTask(ctx context.Context, id string) (dom.Task, bool, error) {
	b, err := c.rdb.Get(ctx, keyTask+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return dom.Task{}, false, nil
	}
	if err != nil {
		return dom.Task{}, false, err
	}
	var t dom.Task
	if err := json.Unmarshal(b, &t); err != nil {
		return dom.Task{}, false, err
	}
	return t, true, nil
}

// SetTask caches t if no invalidation happened since gen.
func (c *TaskCache) SetTask(ctx context.Context, gen int64, t dom.Task) error {
	return c.set(ctx, gen, keyTask+t.ID, t)
}

// InvalidateAll bumps the generation, then drops every cached entry.
func (c *TaskCache) InvalidateAll(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, keyGen).Err(); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, keyList).Err(); err != nil {
		return err
	}
	for _, pattern := range []string{keySearch + "*", keyTask + "*"} {
		iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *TaskCache) getList(ctx context.Context, key string) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Task{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// set writes key inside a WATCH on the generation counter. A stale gen, or a
// bump between WATCH and EXEC, skips the write without error.
func (c *TaskCache) set(ctx context.Context, gen int64, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, keyGen).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, c.ttl)
			return nil
		})
		return err
	}, keyGen)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// NormalizeQuery lowercases and trims a search query so equivalent queries share a key.
func NormalizeQuery(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
