// Package bot liga os componentes do domínio: interpreta comandos do chat,
// executa o polling de resultados e expõe leituras consistentes dos ledgers.
package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/resolution"
	"github.com/radieske/esports-bet-bot/internal/schedule"
	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/shared/clock"
	"github.com/radieske/esports-bet-bot/internal/shared/metrics"
	"github.com/radieske/esports-bet-bot/internal/wager"
	"github.com/radieske/esports-bet-bot/pkg/contracts/events"
)

// Announcer entrega o texto de uma liquidação ao canal de anúncios.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// Announcers repassa o anúncio para todos; um erro não impede os demais.
type Announcers []Announcer

func (as Announcers) Announce(ctx context.Context, text string) error {
	var errs []error
	for _, a := range as {
		if a == nil {
			continue
		}
		if err := a.Announce(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EventPublisher recebe os eventos de domínio (Kafka em produção).
type EventPublisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishPredictionMade(ctx context.Context, e events.PredictionMade) error
	PublishMatchSettled(ctx context.Context, e events.MatchSettled) error
}

type Deps struct {
	Schedule  *schedule.Cache
	Ledger    *wager.Ledger
	Scores    *scoreboard.Scoreboard
	Window    match.Window
	BetBuffer time.Duration
	Clock     clock.Clock
	Events    EventPublisher
	Metrics   *metrics.Bot
	Log       *zap.Logger
}

// App é o contexto da aplicação. mu serializa toda leitura e mutação do
// ledger de apostas e do scoreboard, vindas de comandos, do polling ou da API.
type App struct {
	mu        sync.Mutex
	schedule  *schedule.Cache
	ledger    *wager.Ledger
	scores    *scoreboard.Scoreboard
	engine    *resolution.Engine
	betBuffer time.Duration

	clk     clock.Clock
	events  EventPublisher
	metrics *metrics.Bot
	log     *zap.Logger
}

func NewApp(d Deps) *App {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.BetBuffer == 0 {
		d.BetBuffer = 12 * time.Minute
	}
	return &App{
		schedule:  d.Schedule,
		ledger:    d.Ledger,
		scores:    d.Scores,
		engine:    resolution.NewEngine(d.Ledger, d.Scores, d.Window, d.Log),
		betBuffer: d.BetBuffer,
		clk:       d.Clock,
		events:    d.Events,
		metrics:   d.Metrics,
		log:       d.Log,
	}
}

// Settle liquida os resultados na ordem recebida. Cada resultado é
// aplicado sob o lock; os eventos são publicados depois de soltá-lo.
func (a *App) Settle(ctx context.Context, finished []match.Finished) []resolution.Settlement {
	var out []resolution.Settlement
	for _, f := range finished {
		a.mu.Lock()
		s, ok := a.engine.Resolve(f)
		a.observeLedger()
		a.mu.Unlock()
		if !ok {
			a.log.Debug("result had nothing outstanding", zap.Stringer("match", f))
			continue
		}
		a.metrics.Settled(paidOut(s))
		a.publish(ctx, "match_settled", func(p EventPublisher) error {
			return p.PublishMatchSettled(ctx, matchSettledEvent(s, a.clk.Now()))
		})
		out = append(out, s)
	}
	return out
}

func paidOut(s resolution.Settlement) float64 {
	total := scoreboard.PredictionAward.Mul(decimal.NewFromInt(int64(len(s.RightPredictions))))
	for _, b := range s.WinningBets {
		total = total.Add(b.Winnings())
	}
	f, _ := total.Float64()
	return f
}

// observeLedger atualiza o gauge; chamar com mu travado.
func (a *App) observeLedger() {
	bets, preds := a.ledger.Counts()
	a.metrics.OpenWagers(bets, preds)
}

func (a *App) publish(ctx context.Context, kind string, fn func(EventPublisher) error) {
	if a.events == nil {
		return
	}
	if err := fn(a.events); err != nil {
		a.log.Warn("publish event failed", zap.String("event", kind), zap.Error(err))
	}
}

// BetView é uma aposta com o nome do jogador, para listagens.
type BetView struct {
	wager.Bet
	PlayerName string `json:"player_name"`
}

type PredictionView struct {
	wager.Prediction
	PlayerName string `json:"player_name"`
}

// Leaderboard retorna o scoreboard ordenado por saldo.
func (a *App) Leaderboard() []scoreboard.PlayerScore {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scores.SortedByMoneyDescending()
}

func (a *App) OpenBets() []BetView {
	a.mu.Lock()
	defer a.mu.Unlock()
	bets := a.ledger.AllBets()
	out := make([]BetView, 0, len(bets))
	for _, b := range bets {
		out = append(out, BetView{Bet: b, PlayerName: a.scores.Name(b.PlayerID)})
	}
	return out
}

func (a *App) OpenPredictions() []PredictionView {
	a.mu.Lock()
	defer a.mu.Unlock()
	preds := a.ledger.AllPredictions()
	out := make([]PredictionView, 0, len(preds))
	for _, p := range preds {
		out = append(out, PredictionView{Prediction: p, PlayerName: a.scores.Name(p.PlayerID)})
	}
	return out
}

// Upcoming lista as próximas partidas do calendário.
func (a *App) Upcoming() []match.Scheduled {
	return a.schedule.Upcoming(scheduleLimit, scheduleGrace)
}

// PlayerDetail reúne o placar e as apostas em aberto de um jogador.
type PlayerDetail struct {
	Score       scoreboard.PlayerScore `json:"score"`
	Bets        []wager.Bet            `json:"bets"`
	Predictions []wager.Prediction     `json:"predictions"`
}

// Player retorna scoreboard.ErrUnknownPlayer para quem nunca enviou um comando.
func (a *App) Player(playerID string) (PlayerDetail, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, err := a.scores.Get(playerID)
	if err != nil {
		return PlayerDetail{}, err
	}
	return PlayerDetail{
		Score:       p,
		Bets:        a.ledger.BetsForPlayer(playerID),
		Predictions: a.ledger.PredictionsForPlayer(playerID),
	}, nil
}
