// Package results consome o feed de resultados, que só cresce, e entrega
// apenas as partidas ainda não processadas.
package results

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/shared/clock"
	"github.com/radieske/esports-bet-bot/internal/team"
)

// A página de resultados não traz horário; o resultado recebe a hora da
// descoberta menos esta margem.
const discoveryOffset = 2 * time.Minute

// Row é um resultado cru do feed, na ordem publicada.
type Row struct {
	Victor string
	Loser  string
}

type Feed interface {
	FetchAllFinishedMatches(ctx context.Context) ([]Row, error)
}

// Tracker guarda quantas linhas do feed já foram processadas. Usado apenas
// pelo loop de polling.
type Tracker struct {
	feed      Feed
	processed int
	primed    bool
	clk       clock.Clock
	log       *zap.Logger
}

func NewTracker(feed Feed, clk clock.Clock, log *zap.Logger) *Tracker {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Tracker{feed: feed, clk: clk, log: log}
}

// Prime marca tudo o que o feed já publicou como processado.
func (t *Tracker) Prime(ctx context.Context) error {
	rows, err := t.feed.FetchAllFinishedMatches(ctx)
	if err != nil {
		return fmt.Errorf("prime results: %w", err)
	}
	t.processed = len(rows)
	t.primed = true
	return nil
}

func (t *Tracker) Processed() int { return t.processed }

func (t *Tracker) SetProcessed(n int) {
	t.processed = n
	t.primed = true
}

// Poll retorna os resultados novos desde a última chamada. Linhas com time
// desconhecido contam como processadas e são descartadas. Enquanto o Prime
// não tiver sucesso, Poll só tenta o Prime e não devolve resultados.
func (t *Tracker) Poll(ctx context.Context) ([]match.Finished, error) {
	if !t.primed {
		return nil, t.Prime(ctx)
	}
	rows, err := t.feed.FetchAllFinishedMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}
	if len(rows) < t.processed {
		t.log.Warn("results feed shrank, keeping processed count",
			zap.Int("processed", t.processed), zap.Int("feed_len", len(rows)))
		return nil, nil
	}
	fresh := rows[t.processed:]
	t.processed = len(rows)

	at := t.clk.Now().Add(-discoveryOffset)
	out := make([]match.Finished, 0, len(fresh))
	for _, r := range fresh {
		v, l := team.Parse(r.Victor), team.Parse(r.Loser)
		if v == team.Unknown || l == team.Unknown || v == l {
			t.log.Warn("skipping result row", zap.String("victor", r.Victor), zap.String("loser", r.Loser))
			continue
		}
		out = append(out, match.Finished{Victor: v, Loser: l, Time: at})
	}
	return out, nil
}
