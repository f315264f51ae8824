package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/esports-bet-bot/pkg/contracts/events"
)

const DefaultAnnounceChannel = "betbot_announcements"

// RedisBroadcaster implementa bot.Announcer publicando no Pub/Sub do Redis.
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultAnnounceChannel
	}
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Channel() string { return b.channel }

func (b *RedisBroadcaster) Announce(ctx context.Context, text string) error {
	payload, err := json.Marshal(events.Announcement{Type: "settlement", Text: text, TsUnixMs: time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
