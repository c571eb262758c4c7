package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the keys written by the loader.
const DefaultPrefix = "arbor:tree:"

// Loader implements ports.TreeLoader using Redis.
// Definitions are stored as plain strings; a sorted set indexes the stored IDs.
type Loader struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Loader)

// WithTTL sets the expiration for stored definitions.
func WithTTL(ttl time.Duration) Option {
	return func(l *Loader) {
		l.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored definitions.
func WithPrefix(prefix string) Option {
	return func(l *Loader) {
		l.prefix = prefix
	}
}

// New creates a new Redis loader with options.
func New(address, password string, db int, opts ...Option) *Loader {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis loader from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Loader {
	l := &Loader{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Loader) key(id string) string {
	return l.prefix + id
}

func (l *Loader) indexKey() string {
	return l.prefix + "index"
}

// Put stores the raw definition document declaring tree id.
func (l *Loader) Put(ctx context.Context, id string, data []byte) error {
	if id == "" {
		return fmt.Errorf("tree id cannot be empty")
	}

	pipe := l.client.Pipeline()

	// 1. Save definition with TTL (0 = no expiration)
	pipe.Set(ctx, l.key(id), data, l.ttl)

	// 2. Add to Index (ZSET), scored by expiration time
	score := float64(time.Now().Add(l.ttl).Unix())
	if l.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, l.indexKey(), backend.Z{
		Score:  score,
		Member: id,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// GetTree retrieves the raw definition stored for id.
func (l *Loader) GetTree(ctx context.Context, id string) ([]byte, error) {
	val, err := l.client.Get(ctx, l.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTreeNotFound, id)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Delete removes a stored definition.
func (l *Loader) Delete(ctx context.Context, id string) error {
	pipe := l.client.Pipeline()

	pipe.Del(ctx, l.key(id))
	pipe.ZRem(ctx, l.indexKey(), id)

	_, err := pipe.Exec(ctx)
	return err
}

// ListTrees returns the stored IDs, pruning expired ones from the index.
func (l *Loader) ListTrees(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := l.client.ZRemRangeByScore(ctx, l.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired trees: %w", err)
	}

	ids, err := l.client.ZRange(ctx, l.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (l *Loader) Close() error {
	return l.client.Close()
}
