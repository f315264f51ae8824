package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Bot agrupa as métricas do bot. Um *Bot nil é válido e não registra nada,
// o que simplifica os testes.
type Bot struct {
	commands        *prometheus.CounterVec
	betsPlaced      prometheus.Counter
	predictionsMade prometheus.Counter
	settlements     prometheus.Counter
	payouts         prometheus.Counter
	feedErrors      *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	openWagers      *prometheus.GaugeVec
}

func NewBot(reg prometheus.Registerer) *Bot {
	m := &Bot{
		commands:        prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betbot_commands_total", Help: "comandos processados por comando e resultado"}, []string{"command", "outcome"}),
		betsPlaced:      prometheus.NewCounter(prometheus.CounterOpts{Name: "betbot_bets_placed_total", Help: "apostas criadas ou alteradas"}),
		predictionsMade: prometheus.NewCounter(prometheus.CounterOpts{Name: "betbot_predictions_made_total", Help: "palpites criados ou trocados"}),
		settlements:     prometheus.NewCounter(prometheus.CounterOpts{Name: "betbot_settlements_total", Help: "resultados que liquidaram ao menos um item"}),
		payouts:         prometheus.NewCounter(prometheus.CounterOpts{Name: "betbot_payout_dollars_total", Help: "valor pago em apostas e palpites"}),
		feedErrors:      prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betbot_feed_errors_total", Help: "falhas de feed por feed"}, []string{"feed"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "betbot_persist_failures_total", Help: "snapshots que esgotaram as tentativas"}, []string{"table"}),
		openWagers:      prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "betbot_open_wagers", Help: "apostas e palpites em aberto"}, []string{"kind"}),
	}
	reg.MustRegister(m.commands, m.betsPlaced, m.predictionsMade, m.settlements, m.payouts, m.feedErrors, m.persistFailures, m.openWagers)
	return m
}

func (m *Bot) Command(command, outcome string) {
	if m != nil {
		m.commands.WithLabelValues(command, outcome).Inc()
	}
}

func (m *Bot) BetPlaced() {
	if m != nil {
		m.betsPlaced.Inc()
	}
}

func (m *Bot) PredictionMade() {
	if m != nil {
		m.predictionsMade.Inc()
	}
}

func (m *Bot) Settled(paid float64) {
	if m != nil {
		m.settlements.Inc()
		m.payouts.Add(paid)
	}
}

func (m *Bot) FeedError(feed string) {
	if m != nil {
		m.feedErrors.WithLabelValues(feed).Inc()
	}
}

func (m *Bot) PersistFailure(table string) {
	if m != nil {
		m.persistFailures.WithLabelValues(table).Inc()
	}
}

func (m *Bot) OpenWagers(bets, predictions int) {
	if m != nil {
		m.openWagers.WithLabelValues("bet").Set(float64(bets))
		m.openWagers.WithLabelValues("prediction").Set(float64(predictions))
	}
}
