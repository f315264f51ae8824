// Package resolution liquida apostas e palpites quando um resultado chega.
package resolution

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/shared/money"
	"github.com/radieske/esports-bet-bot/internal/wager"
)

// Settlement descreve tudo o que foi liquidado para um resultado.
type Settlement struct {
	Match            match.Finished
	RightPredictions []wager.Prediction
	WrongPredictions []wager.Prediction
	WinningBets      []wager.Bet
	LosingBets       []wager.Bet
	Text             string
}

// Engine não tem lock próprio; quem chama precisa deter o acesso exclusivo
// aos dois ledgers.
type Engine struct {
	ledger *wager.Ledger
	scores *scoreboard.Scoreboard
	window match.Window
	log    *zap.Logger
}

func NewEngine(l *wager.Ledger, s *scoreboard.Scoreboard, w match.Window, log *zap.Logger) *Engine {
	return &Engine{ledger: l, scores: s, window: w, log: log}
}

// Resolve aplica o resultado f. Retorna false quando nenhuma aposta ou
// palpite correspondia, caso em que nada é alterado nem anunciado. Cada
// item liquidado sai do ledger, então uma segunda chamada com o mesmo
// resultado não paga nada.
func (e *Engine) Resolve(f match.Finished) (Settlement, bool) {
	s := Settlement{Match: f}
	s.WinningBets, s.LosingBets = e.ledger.BetsForMatch(f, e.window)
	s.RightPredictions, s.WrongPredictions = e.ledger.PredictionsForMatch(f, e.window)
	if len(s.WinningBets)+len(s.LosingBets)+len(s.RightPredictions)+len(s.WrongPredictions) == 0 {
		return s, false
	}

	releaseScores := e.scores.Hold()
	releaseLedger := e.ledger.Hold()

	var b strings.Builder
	fmt.Fprintf(&b, "Results are in!\n%s beat %s.\n", f.Victor, f.Loser)

	if len(s.RightPredictions) > 0 {
		names := make([]string, 0, len(s.RightPredictions))
		for _, p := range s.RightPredictions {
			e.apply(e.scores.AwardCorrectPrediction(p.PlayerID), "award prediction", p.PlayerID)
			e.ledger.RemovePrediction(p.ID)
			names = append(names, e.scores.Name(p.PlayerID))
		}
		fmt.Fprintf(&b, "%s predicted that %s would win, which was correct! (+$%s)\n",
			JoinNames(names), f.Victor, scoreboard.PredictionAward.String())
	}

	if len(s.WrongPredictions) > 0 {
		names := make([]string, 0, len(s.WrongPredictions))
		for _, p := range s.WrongPredictions {
			e.apply(e.scores.AwardIncorrectPrediction(p.PlayerID), "record wrong prediction", p.PlayerID)
			e.ledger.RemovePrediction(p.ID)
			names = append(names, e.scores.Name(p.PlayerID))
		}
		fmt.Fprintf(&b, "%s predicted that %s would win, which was incorrect.\n", JoinNames(names), f.Loser)
	}

	for _, bet := range s.WinningBets {
		e.apply(e.scores.GiveMoney(bet.PlayerID, bet.Winnings()), "pay winnings", bet.PlayerID)
		e.ledger.RemoveBet(bet.ID)
		fmt.Fprintf(&b, "%s won %s by betting on %s!\n", e.scores.Name(bet.PlayerID), money.Format(bet.Winnings()), f.Victor)
	}

	// A aposta perdedora já foi debitada na criação.
	for _, bet := range s.LosingBets {
		e.ledger.RemoveBet(bet.ID)
		fmt.Fprintf(&b, "%s lost %s by betting on %s.\n", e.scores.Name(bet.PlayerID), money.Format(bet.Wager), f.Loser)
	}

	releaseLedger()
	releaseScores()

	s.Text = strings.TrimSuffix(b.String(), "\n")
	e.log.Info("match settled",
		zap.Stringer("match", f),
		zap.Int("winning_bets", len(s.WinningBets)),
		zap.Int("losing_bets", len(s.LosingBets)),
		zap.Int("right_predictions", len(s.RightPredictions)),
		zap.Int("wrong_predictions", len(s.WrongPredictions)))
	return s, true
}

func (e *Engine) apply(err error, op, playerID string) {
	if err != nil {
		e.log.Warn("settlement step failed", zap.String("op", op), zap.String("player_id", playerID), zap.Error(err))
	}
}

// JoinNames junta nomes no formato "A, B and C".
func JoinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
