package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

const maxUpdateRetries = 10

var ErrUpdateConflict = errors.New("value changed concurrently; update abandoned")

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// OpenRedis connects and pings the server so a bad address fails at start.
func OpenRedis(opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// RedisStore keeps each key as a Redis string under an optional prefix.
// Update uses WATCH/MULTI, so writers in other processes cause a retry
// instead of a silent overwrite.
type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) redisKey(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.client.Get(context.Background(), s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.Set(context.Background(), s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.Del(context.Background(), s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Update(key string, fn UpdateFunc) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	rk := s.redisKey(key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, rk).Bytes()
		ok := true
		if errors.Is(err, redis.Nil) {
			current, ok = nil, false
		} else if err != nil {
			return fmt.Errorf("read %q for update: %w", key, err)
		}
		next, write, err := fn(current, ok)
		if err != nil || !write {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, rk)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %q: %w", key, ErrUpdateConflict)
}

func (s *RedisStore) Stat(key string) (EntryInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.client.StrLen(context.Background(), s.redisKey(key)).Result()
	if err != nil {
		return EntryInfo{}, false, fmt.Errorf("stat %q: %w", key, err)
	}
	if n == 0 {
		exists, err := s.client.Exists(context.Background(), s.redisKey(key)).Result()
		if err != nil {
			return EntryInfo{}, false, fmt.Errorf("stat %q: %w", key, err)
		}
		if exists == 0 {
			return EntryInfo{}, false, nil
		}
	}
	return EntryInfo{SizeBytes: int(n)}, true, nil
}
