package schedule

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/esports-bet-bot/internal/match"
)

const mirrorKey = "betbot:schedule"

// RedisMirror guarda o último calendário válido como JSON no Redis.
type RedisMirror struct {
	R   *redis.Client
	TTL time.Duration
}

func NewRedisMirror(r *redis.Client, ttl time.Duration) *RedisMirror {
	return &RedisMirror{R: r, TTL: ttl}
}

func (m *RedisMirror) Save(ctx context.Context, ms []match.Scheduled) error {
	b, err := json.Marshal(ms)
	if err != nil {
		return err
	}
	return m.R.Set(ctx, mirrorKey, b, m.TTL).Err()
}

// Load retorna nil, nil quando não existe cópia.
func (m *RedisMirror) Load(ctx context.Context) ([]match.Scheduled, error) {
	b, err := m.R.Get(ctx, mirrorKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ms []match.Scheduled
	return ms, json.Unmarshal(b, &ms)
}
