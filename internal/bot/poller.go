package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/resolution"
	"github.com/radieske/esports-bet-bot/internal/results"
	"github.com/radieske/esports-bet-bot/internal/schedule"
	"github.com/radieske/esports-bet-bot/internal/shared/clock"
	"github.com/radieske/esports-bet-bot/internal/shared/metrics"
)

// Poller atualiza o calendário, busca resultados novos e liquida apostas.
// Hooks opcionais seguem o padrão dos workers: OnSettled e OnError.
type Poller struct {
	App       *App
	Schedule  *schedule.Cache
	Results   *results.Tracker
	Announcer Announcer
	Window    ActiveWindow
	Interval  time.Duration
	Clock     clock.Clock
	Metrics   *metrics.Bot
	Log       *zap.Logger

	OnSettled func(resolution.Settlement)
	OnError   func(stage string)
}

// PollOnce executa uma iteração e devolve as liquidações, sem entregá-las.
// Falha do calendário não impede a leitura de resultados.
func (p *Poller) PollOnce(ctx context.Context) ([]resolution.Settlement, error) {
	if err := p.Schedule.Refresh(ctx); err != nil {
		p.fail("schedule", err)
	}

	finished, err := p.Results.Poll(ctx)
	if err != nil {
		p.fail("results", err)
		return nil, err
	}
	if len(finished) > 0 {
		p.Log.Info("new results", zap.Int("count", len(finished)), zap.Int("processed", p.Results.Processed()))
	}
	return p.App.Settle(ctx, finished), nil
}

// Run roda até ctx ser cancelado. A primeira iteração acontece imediatamente.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if p.Window.Contains(clk.Now()) {
			p.tick(ctx)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	settlements, err := p.PollOnce(ctx)
	if err != nil {
		return
	}
	for _, s := range settlements {
		if p.OnSettled != nil {
			p.OnSettled(s)
		}
		if p.Announcer == nil {
			continue
		}
		if err := p.Announcer.Announce(ctx, s.Text); err != nil {
			p.fail("announce", err)
		}
	}
}

func (p *Poller) fail(stage string, err error) {
	p.Log.Warn("poll step failed", zap.String("stage", stage), zap.Error(err))
	p.Metrics.FeedError(stage)
	if p.OnError != nil {
		p.OnError(stage)
	}
}
