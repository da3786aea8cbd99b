package db

import (
	"context"
	"time"
)

// BlobStore is the durable key-value blob storage behind the embedding cache.
type BlobStore interface {
	Pinger
	KVStore
	Close()
}

// Pinger checks storage connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// ReadyWaiter is implemented by networked stores that may come up after the process.
type ReadyWaiter interface {
	WaitForReady(ctx context.Context, timeout time.Duration) error
}
