package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

const (
	keyPrefix  = "consult:"
	defaultTTL = 30 * time.Minute
)

// RedisStore persists consultations as JSON values with a sliding TTL.
// Updates use WATCH so two writers racing on the same record surface as
// ErrVersionConflict instead of silently losing a turn.
type RedisStore struct {
	client     *redis.Client
	ttl        time.Duration
	ownsClient bool
}

func NewRedisStore(o Options) (*RedisStore, error) {
	client := o.redisClient
	owns := false
	if client == nil {
		addr := o.redisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		client = redis.NewClient(&redis.Options{Addr: addr})
		owns = true
	}
	ttl := o.ttl
	if ttl <= 0 {
		ttl = defaultTTL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if owns {
			_ = client.Close()
		}
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl, ownsClient: owns}, nil
}

func key(id string) string { return keyPrefix + id }

func (s *RedisStore) Create(ctx context.Context, c *pkg.Consultation) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	c.Version = 1
	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal consultation: %w", err)
	}
	ok, err := s.client.SetNX(ctx, key(c.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("store consultation: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: consultation %s already exists", ErrInvalidRecord, c.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*pkg.Consultation, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load consultation: %w", err)
	}
	var c pkg.Consultation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	// Sliding expiry: reading a session keeps it alive.
	s.client.Expire(ctx, key(id), s.ttl)
	return &c, nil
}

func (s *RedisStore) Update(ctx context.Context, c *pkg.Consultation) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	k := key(c.ID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var existing pkg.Consultation
		if err := json.Unmarshal(cur, &existing); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		if existing.Version != c.Version {
			return ErrVersionConflict
		}

		next := c.Clone()
		next.Version = c.Version + 1
		next.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal consultation: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		c.Version = next.Version
		c.UpdatedAt = next.UpdatedAt
		return nil
	}, k)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete consultation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}
