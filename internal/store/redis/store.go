package redis

import (
	"github.com/redis/go-redis/v9"
)

// Store persists category snapshots in Redis. It implements engine.Persister.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

func (s *Store) Name() string { return "redis" }
