// Package producer publica eventos de domínio no Kafka e anúncios no Redis.
package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/radieske/esports-bet-bot/internal/shared/kafka"
	"github.com/radieske/esports-bet-bot/pkg/contracts/events"
)

// KafkaPublisher tem um writer por tópico. A chave da mensagem é o
// usuário, para manter a ordem dos eventos de um mesmo jogador.
type KafkaPublisher struct {
	BetPlaced      kafka.MessageWriter
	PredictionMade kafka.MessageWriter
	MatchSettled   kafka.MessageWriter
	closers        []func() error
}

func NewKafkaPublisher(brokers, topicBets, topicPredictions, topicSettled string) *KafkaPublisher {
	bw := kafka.NewWriter(brokers, topicBets)
	pw := kafka.NewWriter(brokers, topicPredictions)
	sw := kafka.NewWriter(brokers, topicSettled)
	return &KafkaPublisher{
		BetPlaced:      bw,
		PredictionMade: pw,
		MatchSettled:   sw,
		closers:        []func() error{bw.Close, pw.Close, sw.Close},
	}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	return publish(ctx, p.BetPlaced, e.UserID, e)
}

func (p *KafkaPublisher) PublishPredictionMade(ctx context.Context, e events.PredictionMade) error {
	return publish(ctx, p.PredictionMade, e.UserID, e)
}

// PublishMatchSettled usa o EventID como chave.
func (p *KafkaPublisher) PublishMatchSettled(ctx context.Context, e events.MatchSettled) error {
	return publish(ctx, p.MatchSettled, e.EventID, e)
}

// Close finaliza os writers e libera recursos associados.
func (p *KafkaPublisher) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func publish(ctx context.Context, w kafka.MessageWriter, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return kafka.WriteJSON(ctx, w, key, b)
}
