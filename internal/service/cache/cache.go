package cache

import (
	"context"
	"fmt"
	"time"
)

// BytesCache stores raw bytes with a TTL. A miss is (nil, false, nil).
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// ForecastKey identifies one forecast result. Histories change at most
// daily, so equal requests within the TTL share a result.
func ForecastKey(crypto, model string, horizon int) string {
	return fmt.Sprintf("forecast:%s:%s:%d", crypto, model, horizon)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) GetBytes(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) SetBytes(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Close() error { return nil }

var (
	_ BytesCache = Nop{}
	_ BytesCache = (*TTLCache)(nil)
	_ BytesCache = (*RedisCache)(nil)
)
