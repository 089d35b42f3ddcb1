package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

// Init connects the shared client and pings the server.
func Init(addr, username, password string) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       0,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", addr).Msg("connected to redis")
	return nil
}

// markTTL keeps a fired mark past its own date so a tick straddling midnight
// still sees it, while guaranteeing it cannot stick forever.
const markTTL = 48 * time.Hour

// MarkStore records one-shot reminder marks keyed by (chat, prayer, date).
// Date qualification is what lets the same prayer remind again tomorrow.
type MarkStore struct {
	rdb *redis.Client
}

func NewMarkStore() *MarkStore {
	return &MarkStore{rdb: Rdb}
}

// TryMark atomically claims the reminder for (chatID, prayer, date).
// It returns true exactly once per key; later calls see the existing mark.
func (m *MarkStore) TryMark(ctx context.Context, chatID int64, prayer, date string) (bool, error) {
	key := fmt.Sprintf("reminder:%d:%s:%s", chatID, prayer, date)
	ok, err := m.rdb.SetNX(ctx, key, 1, markTTL).Result()
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("reminder mark failed")
		return false, err
	}
	return ok, nil
}
