package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/pkg/contracts/events"
)

// StartRedisSubscriber escuta o canal de anúncios e repassa cada mensagem
// para os clientes do hub. A goroutine termina junto com ctx.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var a events.Announcement
				if err := json.Unmarshal([]byte(msg.Payload), &a); err != nil {
					log.Warn("ws subscriber unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast(a)
			}
		}
	}()
}
