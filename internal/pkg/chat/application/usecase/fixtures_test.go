package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	cacheport "github.com/FTYEDUCATION/FYBGram12341/internal/infrastructure/cache/port"
	chat "github.com/FTYEDUCATION/FYBGram12341/internal/pkg/chat/application/domain"
)

var errStoreDown = errors.New("store down")

// fakeCache is an in-memory Cache that records invalidations.
type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, key := range keys {
		c.deleted = append(c.deleted, key)
		if _, ok := c.values[key]; ok {
			delete(c.values, key)
			n++
		}
	}
	return n, nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }
func (c *fakeCache) Close() error               { return nil }

func (c *fakeCache) deletedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.deleted))
	copy(out, c.deleted)
	return out
}

// failingRepo errors on every operation.
type failingRepo struct{}

func (failingRepo) SaveMessage(context.Context, chat.Message) (chat.Message, error) {
	return chat.Message{}, errStoreDown
}

func (failingRepo) History(context.Context, string) ([]chat.Message, error) {
	return nil, errStoreDown
}

func (failingRepo) ReadCursor(context.Context, string) (chat.ReadCursor, error) {
	return chat.ReadCursor{}, errStoreDown
}

func (failingRepo) UpdateReadCursor(context.Context, string, int64, string) error {
	return errStoreDown
}

func (failingRepo) PurgeDeleted(context.Context, time.Time) (int64, error) {
	return 0, errStoreDown
}
