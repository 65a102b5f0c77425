package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryLog recuerda los svix-id ya aplicados para reconocer reentregas exactas.
type DeliveryLog interface {
	Seen(ctx context.Context, id string) (bool, error)
	Record(ctx context.Context, id string, ttl time.Duration) error
}

type memoryDeliveryLog struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryDeliveryLog() DeliveryLog {
	return &memoryDeliveryLog{
		items: make(map[string]time.Time),
	}
}

func (l *memoryDeliveryLog) Seen(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.items[id]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(exp) {
		delete(l.items, id)
		return false, nil
	}
	return true, nil
}

func (l *memoryDeliveryLog) Record(_ context.Context, id string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if strings.TrimSpace(id) == "" {
		return nil
	}
	now := time.Now().UTC()
	// Los svix-id casi nunca se vuelven a consultar; se purgan al escribir.
	for key, exp := range l.items {
		if now.After(exp) {
			delete(l.items, key)
		}
	}
	l.items[id] = now.Add(ttl)
	return nil
}

type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisDeliveryLog struct {
	client  redisKV
	prefix  string
	timeout time.Duration
}

func NewRedisDeliveryLog(client *redis.Client) DeliveryLog {
	if client == nil {
		return nil
	}
	return &redisDeliveryLog{
		client:  client,
		prefix:  "webhook:delivery:",
		timeout: 500 * time.Millisecond,
	}
}

func (l *redisDeliveryLog) Seen(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	n, err := l.client.Exists(ctx, l.prefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *redisDeliveryLog) Record(ctx context.Context, id string, ttl time.Duration) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.client.Set(ctx, l.prefix+id, time.Now().UTC().Unix(), ttl).Err()
}
