package wager

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/team"
)

var ErrNotFound = errors.New("wager not found")

// Persister recebe o snapshot completo após cada mutação.
type Persister interface {
	PersistLedger(Snapshot)
}

// Ledger mantém apostas e palpites com ids crescentes e nunca reutilizados.
// Não é seguro para uso concorrente: quem o compartilha serializa o acesso.
type Ledger struct {
	bets        []Bet
	predictions []Prediction
	nextBetID   int
	nextPredID  int

	persist Persister
	holds   int
	dirty   bool
}

func NewLedger(p Persister) *Ledger {
	return &Ledger{nextBetID: 1, nextPredID: 1, persist: p}
}

// Restore substitui o conteúdo pelo snapshot carregado do store. Os
// próximos ids continuam do maior entre o marcador salvo e o maior id
// encontrado. Não persiste.
func (l *Ledger) Restore(s Snapshot) {
	l.bets = append([]Bet(nil), s.Bets...)
	l.predictions = append([]Prediction(nil), s.Predictions...)
	l.nextBetID, l.nextPredID = max(s.NextBetID, 1), max(s.NextPredictionID, 1)
	for _, b := range l.bets {
		if b.ID >= l.nextBetID {
			l.nextBetID = b.ID + 1
		}
	}
	for _, p := range l.predictions {
		if p.ID >= l.nextPredID {
			l.nextPredID = p.ID + 1
		}
	}
}

// Snapshot devolve cópias independentes das coleções.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		Bets:             append([]Bet(nil), l.bets...),
		Predictions:      append([]Prediction(nil), l.predictions...),
		NextBetID:        l.nextBetID,
		NextPredictionID: l.nextPredID,
	}
}

// Hold adia a persistência até a função retornada ser chamada; várias
// mutações dentro do hold geram um único snapshot.
func (l *Ledger) Hold() (release func()) {
	l.holds++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		l.holds--
		if l.holds == 0 && l.dirty {
			l.flush()
		}
	}
}

func (l *Ledger) changed() {
	if l.holds > 0 {
		l.dirty = true
		return
	}
	l.flush()
}

func (l *Ledger) flush() {
	l.dirty = false
	if l.persist != nil {
		l.persist.PersistLedger(l.Snapshot())
	}
}

func (l *Ledger) CreateBet(playerID string, victor, loser team.Team, matchTime time.Time, wager decimal.Decimal) Bet {
	b := Bet{ID: l.nextBetID, PlayerID: playerID, Victor: victor, Loser: loser, MatchTime: matchTime, Wager: wager}
	l.nextBetID++
	l.bets = append(l.bets, b)
	l.changed()
	return b
}

func (l *Ledger) CreatePrediction(playerID string, victor, loser team.Team, matchTime time.Time) Prediction {
	p := Prediction{ID: l.nextPredID, PlayerID: playerID, Victor: victor, Loser: loser, MatchTime: matchTime}
	l.nextPredID++
	l.predictions = append(l.predictions, p)
	l.changed()
	return p
}

// SwapBet substitui a aposta id mantendo o mesmo id e a mesma posição.
// O ID de b é ignorado.
func (l *Ledger) SwapBet(id int, b Bet) (Bet, error) {
	for i := range l.bets {
		if l.bets[i].ID == id {
			b.ID = id
			l.bets[i] = b
			l.changed()
			return b, nil
		}
	}
	return Bet{}, ErrNotFound
}

// SwapPrediction segue o mesmo contrato de SwapBet.
func (l *Ledger) SwapPrediction(id int, p Prediction) (Prediction, error) {
	for i := range l.predictions {
		if l.predictions[i].ID == id {
			p.ID = id
			l.predictions[i] = p
			l.changed()
			return p, nil
		}
	}
	return Prediction{}, ErrNotFound
}

// RemoveBet é idempotente: id ausente não altera nada nem persiste.
func (l *Ledger) RemoveBet(id int) {
	for i := range l.bets {
		if l.bets[i].ID == id {
			l.bets = append(l.bets[:i], l.bets[i+1:]...)
			l.changed()
			return
		}
	}
}

func (l *Ledger) RemovePrediction(id int) {
	for i := range l.predictions {
		if l.predictions[i].ID == id {
			l.predictions = append(l.predictions[:i], l.predictions[i+1:]...)
			l.changed()
			return
		}
	}
}

func (l *Ledger) AllBets() []Bet { return append([]Bet(nil), l.bets...) }

func (l *Ledger) AllPredictions() []Prediction { return append([]Prediction(nil), l.predictions...) }

func (l *Ledger) BetsForPlayer(playerID string) []Bet {
	var out []Bet
	for _, b := range l.bets {
		if b.PlayerID == playerID {
			out = append(out, b)
		}
	}
	return out
}

func (l *Ledger) PredictionsForPlayer(playerID string) []Prediction {
	var out []Prediction
	for _, p := range l.predictions {
		if p.PlayerID == playerID {
			out = append(out, p)
		}
	}
	return out
}

// BetsForPlayerAndMatch compara o par de times, sem ordem, e o horário da
// partida. A revanche do mesmo par é outra partida.
func (l *Ledger) BetsForPlayerAndMatch(playerID string, m match.Scheduled) []Bet {
	var out []Bet
	for _, b := range l.bets {
		if b.PlayerID == playerID && m.IsMatchup(b.Victor, b.Loser) && b.MatchTime.Equal(m.Time) {
			out = append(out, b)
		}
	}
	return out
}

func (l *Ledger) PredictionsForPlayerAndMatch(playerID string, m match.Scheduled) []Prediction {
	var out []Prediction
	for _, p := range l.predictions {
		if p.PlayerID == playerID && m.IsMatchup(p.Victor, p.Loser) && p.MatchTime.Equal(m.Time) {
			out = append(out, p)
		}
	}
	return out
}

// BetsForMatch separa as apostas correlacionadas ao resultado em vencedoras
// e perdedoras, preservando a ordem do ledger.
func (l *Ledger) BetsForMatch(f match.Finished, w match.Window) (winning, losing []Bet) {
	for _, b := range l.bets {
		switch w.Judge(b.Victor, b.Loser, b.MatchTime, f) {
		case match.Won:
			winning = append(winning, b)
		case match.Lost:
			losing = append(losing, b)
		}
	}
	return winning, losing
}

func (l *Ledger) PredictionsForMatch(f match.Finished, w match.Window) (right, wrong []Prediction) {
	for _, p := range l.predictions {
		switch w.Judge(p.Victor, p.Loser, p.MatchTime, f) {
		case match.Won:
			right = append(right, p)
		case match.Lost:
			wrong = append(wrong, p)
		}
	}
	return right, wrong
}

// Counts retorna a quantidade de apostas e palpites em aberto.
func (l *Ledger) Counts() (bets, predictions int) { return len(l.bets), len(l.predictions) }
