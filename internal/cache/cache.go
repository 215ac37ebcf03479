// Package cache keeps the computed tag list between article writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	TagsKey = "realworld:tags"
	// TagsGenKey counts invalidations of TagsKey.
	TagsGenKey = "realworld:tags:gen"
	TagsTTL    = 5 * time.Minute
)

// Tags caches the tag list. A reader that misses computes the list and
// hands it back to Set with the generation its Get returned; Set drops the
// list when Invalidate ran in between, so a list computed before a write
// never outlives it.
type Tags interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context) (tags []string, gen int64, ok bool, err error)
	// Set stores tags unless the generation moved past gen.
	Set(ctx context.Context, gen int64, tags []string) error
	Invalidate(ctx context.Context) error
}

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context) ([]string, int64, bool, error) { return nil, 0, false, nil }
func (Nop) Set(context.Context, int64, []string) error         { return nil }
func (Nop) Invalidate(context.Context) error                   { return nil }

type Redis struct {
	rdb    *redis.Client
	key    string
	genKey string
	ttl    time.Duration
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, key: TagsKey, genKey: TagsGenKey, ttl: TagsTTL}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()

		return nil, err
	}

	return rdb, nil
}

func (c *Redis) Get(ctx context.Context) ([]string, int64, bool, error) {
	var tagsCmd, genCmd *redis.StringCmd
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		tagsCmd = p.Get(ctx, c.key)
		genCmd = p.Get(ctx, c.genKey)

		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, err
	}

	gen, err := generation(genCmd)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := tagsCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, 0, false, err
	}

	return tags, gen, true, nil
}

func (c *Redis) Set(ctx context.Context, gen int64, tags []string) error {
	if tags == nil {
		tags = []string{}
	}

	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(tx.Get(ctx, c.genKey))
		if err != nil {
			return err
		}
		if cur != gen {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.key, raw, c.ttl)

			return nil
		})

		return err
	}, c.genKey)
	// The generation moved while watched: an invalidation won.
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}

	return err
}

func (c *Redis) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, c.genKey)
		p.Del(ctx, c.key)

		return nil
	})

	return err
}

// generation reads a counter that has never been incremented as zero.
func generation(cmd *redis.StringCmd) (int64, error) {
	gen, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	return gen, err
}

// Memory is an in-process Tags for a single instance.
type Memory struct {
	mu   sync.Mutex
	tags []string
	ok   bool
	gen  int64
}

func (m *Memory) Get(context.Context) ([]string, int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tags, m.gen, m.ok, nil
}

func (m *Memory) Set(_ context.Context, gen int64, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen == m.gen {
		m.tags, m.ok = tags, true
	}

	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.tags, m.ok = nil, false

	return nil
}

var (
	_ Tags = Nop{}
	_ Tags = (*Redis)(nil)
	_ Tags = (*Memory)(nil)
)
