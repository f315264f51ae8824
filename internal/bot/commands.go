package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/shared/money"
	"github.com/radieske/esports-bet-bot/internal/team"
	"github.com/radieske/esports-bet-bot/internal/wager"
)

const (
	scheduleLimit = 5
	scheduleGrace = 10 * time.Minute
)

// Message é o que o gateway entrega para cada mensagem recebida.
type Message struct {
	AuthorID   string
	AuthorName string
	ChannelRef string
	Text       string
}

type outcome string

const (
	outcomeOK       outcome = "ok"
	outcomeUsage    outcome = "usage"
	outcomeRejected outcome = "rejected"
)

type handler func(a *App, ctx context.Context, playerID string, args []string) (string, outcome)

var commands = map[string]handler{}

func init() {
	register(handleBalance, "score", "money", "myscore", "balance")
	register(handleScoreboard, "scores", "allscores", "scoreboard", "leaderboard")
	register(handleSchedule, "games", "upcoming", "schedule")
	register(handleMyBets, "mybets", "bets")
	register(handleAllBets, "allbets")
	register(handleNext, "nextgame", "next")
	register(handlePredict, "predict")
	register(handleBet, "bet", "placebet", "makebet")
	register(handleHelp, "help")
}

func register(h handler, names ...string) {
	for _, n := range names {
		commands[n] = h
	}
}

// ParseCommand reconhece "!cmd args" ou "/cmd@bot args". O comando volta em
// minúsculas; ok é false quando o texto não é um comando.
func ParseCommand(text string) (cmd string, args []string, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" || (text[0] != '!' && text[0] != '/') {
		return "", nil, false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", nil, false
	}
	cmd, _, _ = strings.Cut(fields[0], "@")
	return strings.ToLower(cmd), fields[1:], cmd != ""
}

// ProcessMessage devolve a resposta para a mensagem, ou ok=false quando
// ela não é um comando conhecido e deve ser ignorada.
func (a *App) ProcessMessage(ctx context.Context, m Message) (reply string, ok bool) {
	cmd, args, ok := ParseCommand(m.Text)
	if !ok {
		return "", false
	}
	return a.HandleCommand(ctx, m.AuthorID, m.AuthorName, cmd, args)
}

// HandleCommand registra o jogador, se necessário, e executa o comando.
func (a *App) HandleCommand(ctx context.Context, playerID, name, cmd string, args []string) (string, bool) {
	h, ok := commands[strings.ToLower(cmd)]
	if !ok {
		return "", false
	}

	a.mu.Lock()
	if a.scores.Register(playerID, name) {
		a.log.Info("player registered", zap.String("player_id", playerID), zap.String("name", name))
	}
	a.mu.Unlock()

	reply, out := h(a, ctx, playerID, args)
	a.metrics.Command(cmd, string(out))
	return reply, true
}

func handleBalance(a *App, _ context.Context, playerID string, args []string) (string, outcome) {
	if len(args) != 0 {
		return "Usage: !balance", outcomeUsage
	}
	a.mu.Lock()
	p, err := a.scores.Get(playerID)
	a.mu.Unlock()
	if err != nil {
		return "Could not find your score.", outcomeRejected
	}
	return balanceReply(p), outcomeOK
}

func handleScoreboard(a *App, _ context.Context, _ string, args []string) (string, outcome) {
	if len(args) != 0 {
		return "Usage: !scoreboard", outcomeUsage
	}
	return scoreboardReply(a.Leaderboard()), outcomeOK
}

func handleSchedule(a *App, _ context.Context, _ string, args []string) (string, outcome) {
	if len(args) != 0 {
		return "Usage: !schedule", outcomeUsage
	}
	return scheduleReply(a.Upcoming()), outcomeOK
}

func handleMyBets(a *App, _ context.Context, playerID string, args []string) (string, outcome) {
	if len(args) != 0 {
		return "Usage: !mybets", outcomeUsage
	}
	a.mu.Lock()
	bets, preds := a.ledger.BetsForPlayer(playerID), a.ledger.PredictionsForPlayer(playerID)
	a.mu.Unlock()
	return myBetsReply(bets, preds), outcomeOK
}

func handleAllBets(a *App, _ context.Context, _ string, args []string) (string, outcome) {
	if len(args) != 0 {
		return "Usage: !allbets", outcomeUsage
	}
	return allBetsReply(a.OpenBets(), a.OpenPredictions()), outcomeOK
}

func handleHelp(_ *App, _ context.Context, _ string, _ []string) (string, outcome) {
	return helpText, outcomeOK
}

func handleNext(a *App, _ context.Context, _ string, args []string) (string, outcome) {
	switch len(args) {
	case 1:
		t := team.Parse(args[0])
		if t == team.Unknown {
			return unknownTeam(args[0]), outcomeRejected
		}
		m, ok := a.schedule.NextMatchForTeam(t)
		if !ok {
			return fmt.Sprintf("%s has no matches left in the season.", t), outcomeOK
		}
		return fmt.Sprintf("Next match for %s: %s", t, m), outcomeOK
	case 2:
		t1, t2 := team.Parse(args[0]), team.Parse(args[1])
		if t1 == team.Unknown {
			return unknownTeam(args[0]), outcomeRejected
		}
		if t2 == team.Unknown {
			return unknownTeam(args[1]), outcomeRejected
		}
		m, ok := a.schedule.NextMatchForMatchup(t1, t2)
		if !ok {
			return fmt.Sprintf("%s and %s are not playing each other for the rest of the season.", t1, t2), outcomeOK
		}
		return fmt.Sprintf("%s next plays %s at %s", t1, t2, m.Time.Format("3:04 PM 1/02")), outcomeOK
	}
	return "Usage: !next <Team> or !next <Team1> <Team2>", outcomeUsage
}

// resolvePick encontra a partida para "time" ou "time1 beat time2".
func (a *App) resolvePick(args []string) (victor, loser team.Team, m match.Scheduled, reply string) {
	victor = team.Parse(args[0])
	if victor == team.Unknown {
		return 0, 0, m, unknownTeam(args[0])
	}
	if len(args) == 1 {
		var ok bool
		if m, ok = a.schedule.NextMatchForTeam(victor); !ok {
			return 0, 0, m, fmt.Sprintf("Team %s has no games left in the season.", victor)
		}
		return victor, m.Opponent(victor), m, ""
	}

	loser = team.Parse(args[len(args)-1])
	if loser == team.Unknown {
		return 0, 0, m, unknownTeam(args[len(args)-1])
	}
	if loser == victor {
		return 0, 0, m, fmt.Sprintf("%s can't play against itself.", victor)
	}
	var ok bool
	if m, ok = a.schedule.NextMatchForMatchup(victor, loser); !ok {
		return 0, 0, m, fmt.Sprintf("%s has no upcoming games against %s.", victor, loser)
	}
	return victor, loser, m, ""
}

func handlePredict(a *App, ctx context.Context, playerID string, args []string) (string, outcome) {
	if len(args) != 1 && len(args) != 3 {
		return "Usage: !predict <Team> or !predict <Team1> beat <Team2>", outcomeUsage
	}
	victor, loser, m, reject := a.resolvePick(args)
	if reject != "" {
		return reject, outcomeRejected
	}
	if a.started(m) {
		return fmt.Sprintf("%s is currently playing! (%s) Wait until after the current match to make a prediction.", victor, m), outcomeRejected
	}

	a.mu.Lock()
	var (
		p       wager.Prediction
		updated bool
	)
	existing := a.ledger.PredictionsForPlayerAndMatch(playerID, m)
	switch {
	case len(existing) > 0 && existing[0].Victor == victor:
		a.mu.Unlock()
		return "You already predicted that " + existing[0].String(), outcomeOK
	case len(existing) > 0:
		var err error
		p, err = a.ledger.SwapPrediction(existing[0].ID, wager.Prediction{PlayerID: playerID, Victor: victor, Loser: loser, MatchTime: m.Time})
		if err != nil {
			a.mu.Unlock()
			a.log.Error("swap prediction", zap.Int("id", existing[0].ID), zap.Error(err))
			return "Something went wrong updating your prediction.", outcomeRejected
		}
		updated = true
	default:
		p = a.ledger.CreatePrediction(playerID, victor, loser, m.Time)
	}
	a.observeLedger()
	a.mu.Unlock()

	a.metrics.PredictionMade()
	a.publish(ctx, "prediction_made", func(pub EventPublisher) error {
		return pub.PublishPredictionMade(ctx, predictionMadeEvent(p, updated, a.clk.Now()))
	})
	if updated {
		return "Prediction swapped: " + p.String(), outcomeOK
	}
	return "Prediction made: " + p.String(), outcomeOK
}

func handleBet(a *App, ctx context.Context, playerID string, args []string) (string, outcome) {
	if len(args) != 2 && len(args) != 4 {
		return "Usage: !bet <Wager> <Team> or !bet <Wager> <Team1> beat <Team2>", outcomeUsage
	}
	amount, err := money.ParseWager(args[0])
	switch {
	case errors.Is(err, money.ErrNotPositive):
		return "Wager must be greater than $0.", outcomeRejected
	case err != nil:
		return "Please enter an amount of money, like !bet 20 TSM", outcomeRejected
	}
	victor, loser, m, reject := a.resolvePick(args[1:])
	if reject != "" {
		return reject, outcomeRejected
	}
	if a.started(m) {
		return fmt.Sprintf("%s is currently playing! (%s) Wait until after the current match to place a bet.", victor, m), outcomeRejected
	}

	a.mu.Lock()
	reply, b, updated, out := a.placeBet(playerID, victor, loser, m, amount)
	a.observeLedger()
	a.mu.Unlock()

	if out == outcomeOK && b.ID != 0 {
		a.metrics.BetPlaced()
		a.publish(ctx, "bet_placed", func(pub EventPublisher) error {
			return pub.PublishBetPlaced(ctx, betPlacedEvent(b, updated, a.clk.Now()))
		})
	}
	return reply, out
}

// started indica que m já passou do limite de BET_BUFFER após o início;
// vale para apostas e palpites.
func (a *App) started(m match.Scheduled) bool {
	return a.clk.Now().After(m.Time.Add(a.betBuffer))
}

// placeBet cria ou atualiza a aposta do jogador para a partida m.
// Chamar com mu travado.
func (a *App) placeBet(playerID string, victor, loser team.Team, m match.Scheduled, amount decimal.Decimal) (string, wager.Bet, bool, outcome) {
	next := wager.Bet{PlayerID: playerID, Victor: victor, Loser: loser, MatchTime: m.Time, Wager: amount}

	existing := a.ledger.BetsForPlayerAndMatch(playerID, m)
	if len(existing) == 0 {
		if err := a.scores.PlaceBet(playerID, amount); err != nil {
			return a.fundsReply("You can't bet that much.", playerID, err), wager.Bet{}, false, outcomeRejected
		}
		created := a.ledger.CreateBet(playerID, victor, loser, m.Time, amount)
		return "Bet created: " + created.String(), created, false, outcomeOK
	}

	old := existing[0]
	if old.Victor == victor && old.Wager.Equal(amount) {
		return "You already have an existing bet like that: " + old.String(), wager.Bet{}, false, outcomeOK
	}

	releaseScores, releaseLedger := a.scores.Hold(), a.ledger.Hold()
	defer releaseScores()
	defer releaseLedger()
	if err := a.scores.ChangeBet(playerID, old.Wager, amount); err != nil {
		return a.fundsReply("You can't change your bet by that much.", playerID, err), wager.Bet{}, false, outcomeRejected
	}
	b, err := a.ledger.SwapBet(old.ID, next)
	if err != nil {
		// desfaz o ajuste de saldo para não divergir do ledger
		_ = a.scores.GiveMoney(playerID, amount.Sub(old.Wager))
		a.log.Error("swap bet", zap.Int("id", old.ID), zap.Error(err))
		return "Something went wrong updating your bet.", wager.Bet{}, false, outcomeRejected
	}
	return "Bet changed: " + b.String(), b, true, outcomeOK
}

func (a *App) fundsReply(prefix, playerID string, err error) string {
	if !errors.Is(err, scoreboard.ErrInsufficientFunds) {
		a.log.Error("bet transfer failed", zap.String("player_id", playerID), zap.Error(err))
		return "Something went wrong placing your bet."
	}
	p, _ := a.scores.Get(playerID)
	return fmt.Sprintf("%s You have %s.", prefix, money.Format(p.Money))
}

func unknownTeam(s string) string { return fmt.Sprintf("Unknown LCS team '%s'", s) }
