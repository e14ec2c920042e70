package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps, per name, a list of version ids, a hash per version and the active id
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = &RedisStore{}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "leanrl:weights:",
	}
}

func (s *RedisStore) versionsKey(name string) string {
	return s.prefix + name + ":versions"
}

func (s *RedisStore) versionKey(name, id string) string {
	return s.prefix + name + ":v:" + id
}

func (s *RedisStore) activeKey(name string) string {
	return s.prefix + name + ":active"
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Put(ctx context.Context, name string, blob []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.versionKey(name, id),
			"blob", blob,
			"hash", hashOf(blob),
			"size", len(blob),
			"created_at", time.Now().UTC().Format(time.RFC3339Nano),
		)
		pipe.RPush(ctx, s.versionsKey(name), id)
		pipe.Set(ctx, s.activeKey(name), id, 0)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", name, err)
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	id, err := s.client.Get(ctx, s.activeKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("weights %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get active: %w", err)
	}
	return s.GetVersion(ctx, name, id)
}

func (s *RedisStore) GetVersion(ctx context.Context, name, version string) ([]byte, error) {
	blob, err := s.client.HGet(ctx, s.versionKey(name, version), "blob").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("weights %s version %s: %w", name, version, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	return blob, nil
}

func (s *RedisStore) Versions(ctx context.Context, name string) ([]Version, error) {
	ids, err := s.client.LRange(ctx, s.versionsKey(name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("weights %s: %w", name, ErrNotFound)
	}
	active, err := s.client.Get(ctx, s.activeKey(name)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get active: %w", err)
	}
	versions := make([]Version, 0, len(ids))
	for _, id := range ids {
		fields, err := s.client.HMGet(ctx, s.versionKey(name, id), "hash", "size", "created_at").Result()
		if err != nil {
			return nil, fmt.Errorf("get version %s: %w", id, err)
		}
		v := Version{ID: id, Active: id == active}
		if h, ok := fields[0].(string); ok {
			v.Hash = h
		}
		if sz, ok := fields[1].(string); ok {
			v.Size, _ = strconv.Atoi(sz)
		}
		if c, ok := fields[2].(string); ok {
			v.CreatedAt, _ = time.Parse(time.RFC3339Nano, c)
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (s *RedisStore) Activate(ctx context.Context, name, version string) error {
	exists, err := s.client.Exists(ctx, s.versionKey(name, version)).Result()
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("weights %s version %s: %w", name, version, ErrNotFound)
	}
	return s.client.Set(ctx, s.activeKey(name), version, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
