package memory

import (
	"context"
	"time"

	"github.com/ptec-dev/audit-management/internal/cache"

	gocache "github.com/patrickmn/go-cache"
)

type Mem struct{ c *gocache.Cache }

func New(defaultTTL time.Duration) cache.Store {
	return &Mem{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Mem) Get(_ context.Context, k string) ([]byte, bool, error) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	return b, true, nil
}

func (m *Mem) Set(_ context.Context, k string, v []byte, ttl time.Duration) error {
	m.c.Set(k, v, ttl)
	return nil
}

func (m *Mem) Add(_ context.Context, k string, v []byte, ttl time.Duration) (bool, error) {
	if err := m.c.Add(k, v, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *Mem) Delete(_ context.Context, k string) error {
	m.c.Delete(k)
	return nil
}

func (m *Mem) Close() error { return nil }
