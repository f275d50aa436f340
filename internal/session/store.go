// Package session persists consultation records keyed by their ID. Two
// drivers exist: an in-process memory store for single-node deployments
// and tests, and a Redis store for deployments that need sessions to
// survive restarts or be shared across replicas.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

var (
	ErrNotFound        = errors.New("consultation not found")
	ErrVersionConflict = errors.New("consultation was modified concurrently")
	ErrInvalidRecord   = errors.New("invalid consultation record")
)

// Store is the persistence surface for consultation state. Update performs
// an optimistic version check: the stored record must carry the version
// the caller read, otherwise ErrVersionConflict is returned.
type Store interface {
	Create(ctx context.Context, c *pkg.Consultation) error
	Get(ctx context.Context, id string) (*pkg.Consultation, error)
	Update(ctx context.Context, c *pkg.Consultation) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// StoreType selects a driver.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// Options collects driver configuration; set them with the With* helpers.
type Options struct {
	redisClient *redis.Client
	redisAddr   string
	ttl         time.Duration
}

type Option func(*Options)

// WithRedisClient supplies an existing Redis client. The store will not
// close a client it did not create.
func WithRedisClient(client *redis.Client) Option {
	return func(o *Options) { o.redisClient = client }
}

// WithRedisAddr sets the address used when no client is supplied.
func WithRedisAddr(addr string) Option {
	return func(o *Options) { o.redisAddr = addr }
}

// WithTTL sets how long an idle consultation survives. Redis counts
// idleness from the last read or write; the memory store counts from the
// last write. Zero leaves the memory store unbounded.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) { o.ttl = ttl }
}

// NewStore builds a store of the requested type.
func NewStore(t StoreType, opts ...Option) (Store, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	switch t {
	case StoreTypeMemory:
		return NewMemoryStore(opts...), nil
	case StoreTypeRedis:
		return NewRedisStore(o)
	default:
		return nil, fmt.Errorf("unknown session store type %q", t)
	}
}
