package redis

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Store struct{ c *rdb.Client }

func New(addr, password string, db int) *Store {
	return &Store{c: rdb.NewClient(&rdb.Options{Addr: addr, Password: password, DB: db})}
}

func (r *Store) Get(ctx context.Context, k string) ([]byte, bool, error) {
	b, err := r.c.Get(ctx, k).Bytes()
	if err == rdb.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Store) Set(ctx context.Context, k string, v []byte, ttl time.Duration) error {
	return r.c.Set(ctx, k, v, ttl).Err()
}

func (r *Store) Add(ctx context.Context, k string, v []byte, ttl time.Duration) (bool, error) {
	return r.c.SetNX(ctx, k, v, ttl).Result()
}

func (r *Store) Delete(ctx context.Context, k string) error {
	return r.c.Del(ctx, k).Err()
}

func (r *Store) Close() error { return r.c.Close() }
