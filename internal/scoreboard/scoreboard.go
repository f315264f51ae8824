// Package scoreboard mantém o saldo e as estatísticas de cada jogador.
package scoreboard

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/radieske/esports-bet-bot/internal/shared/money"
)

var (
	StartingMoney   = decimal.NewFromInt(100)
	PredictionAward = decimal.NewFromInt(10)
)

var (
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

type PlayerScore struct {
	PlayerID         string          `json:"player_id"`
	Name             string          `json:"name"`
	Money            decimal.Decimal `json:"money"`
	BetCount         int             `json:"bet_count"`
	PredictionsRight int             `json:"predictions_right"`
	PredictionsWrong int             `json:"predictions_wrong"`
}

func (p PlayerScore) MoneyFromPredictions() decimal.Decimal {
	return PredictionAward.Mul(decimal.NewFromInt(int64(p.PredictionsRight)))
}

func (p PlayerScore) MoneyFromBets() decimal.Decimal {
	return p.Money.Sub(p.MoneyFromPredictions()).Sub(StartingMoney)
}

func (p PlayerScore) String() string {
	return fmt.Sprintf("%s after %d bets (%s). Prediction record: %d - %d (+$%s)",
		money.Format(p.Money), p.BetCount, money.FormatSigned(p.MoneyFromBets()),
		p.PredictionsRight, p.PredictionsWrong, p.MoneyFromPredictions().String())
}

// Persister recebe todas as linhas, na ordem de registro, após cada mutação.
type Persister interface {
	PersistScores([]PlayerScore)
}

// Scoreboard não é seguro para uso concorrente; bot.App serializa o acesso.
type Scoreboard struct {
	players map[string]*PlayerScore
	order   []string

	persist Persister
	holds   int
	dirty   bool
}

func New(p Persister) *Scoreboard {
	return &Scoreboard{players: map[string]*PlayerScore{}, persist: p}
}

// Restore carrega as linhas do store sem persistir.
func (s *Scoreboard) Restore(rows []PlayerScore) {
	s.players = make(map[string]*PlayerScore, len(rows))
	s.order = s.order[:0]
	for _, r := range rows {
		if _, dup := s.players[r.PlayerID]; dup {
			continue
		}
		r := r
		s.players[r.PlayerID] = &r
		s.order = append(s.order, r.PlayerID)
	}
}

// Hold adia a persistência até a função retornada ser chamada.
func (s *Scoreboard) Hold() (release func()) {
	s.holds++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		s.holds--
		if s.holds == 0 && s.dirty {
			s.flush()
		}
	}
}

func (s *Scoreboard) changed() {
	if s.holds > 0 {
		s.dirty = true
		return
	}
	s.flush()
}

func (s *Scoreboard) flush() {
	s.dirty = false
	if s.persist != nil {
		s.persist.PersistScores(s.All())
	}
}

// Register cria o jogador com StartingMoney se ainda não existe.
// Retorna true quando o jogador foi criado agora.
func (s *Scoreboard) Register(playerID, name string) bool {
	if _, ok := s.players[playerID]; ok {
		return false
	}
	s.players[playerID] = &PlayerScore{PlayerID: playerID, Name: name, Money: StartingMoney}
	s.order = append(s.order, playerID)
	s.changed()
	return true
}

func (s *Scoreboard) Get(playerID string) (PlayerScore, error) {
	p, ok := s.players[playerID]
	if !ok {
		return PlayerScore{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	return *p, nil
}

// Name retorna o nome do jogador ou o próprio id se ele não existe.
func (s *Scoreboard) Name(playerID string) string {
	if p, ok := s.players[playerID]; ok && p.Name != "" {
		return p.Name
	}
	return playerID
}

func (s *Scoreboard) mutate(playerID string, fn func(p *PlayerScore) error) error {
	p, ok := s.players[playerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if err := fn(p); err != nil {
		return err
	}
	s.changed()
	return nil
}

// GiveMoney credita sem nenhuma verificação.
func (s *Scoreboard) GiveMoney(playerID string, amount decimal.Decimal) error {
	return s.mutate(playerID, func(p *PlayerScore) error {
		p.Money = p.Money.Add(amount)
		return nil
	})
}

// TakeMoney debita sem verificar saldo; o saldo pode ficar negativo.
func (s *Scoreboard) TakeMoney(playerID string, amount decimal.Decimal) error {
	return s.mutate(playerID, func(p *PlayerScore) error {
		p.Money = p.Money.Sub(amount)
		return nil
	})
}

func (s *Scoreboard) RecordBetPlaced(playerID string, wager decimal.Decimal) error {
	return s.mutate(playerID, func(p *PlayerScore) error {
		p.Money = p.Money.Sub(wager)
		p.BetCount++
		return nil
	})
}

// PlaceBet é o débito com verificação de saldo usado pelo interpretador.
// Com saldo insuficiente retorna ErrInsufficientFunds e nada muda.
func (s *Scoreboard) PlaceBet(playerID string, wager decimal.Decimal) error {
	return s.mutate(playerID, func(p *PlayerScore) error {
		if p.Money.LessThan(wager) {
			return ErrInsufficientFunds
		}
		p.Money = p.Money.Sub(wager)
		p.BetCount++
		return nil
	})
}

// ChangeBet devolve oldWager e debita newWager numa única mutação. O
// contador de apostas não muda. Falha se money+oldWager < newWager.
func (s *Scoreboard) ChangeBet(playerID string, oldWager, newWager decimal.Decimal) error {
	return s.mutate(playerID, func(p *PlayerScore) error {
		if p.Money.Add(oldWager).LessThan(newWager) {
			return ErrInsufficientFunds
		}
		p.Money = p.Money.Add(oldWager).Sub(newWager)
		return nil
	})
}

func (s *Scoreboard) AwardCorrectPrediction(playerID string) error {
	return s.mutate(playerID, func(p *PlayerScore) error {
		p.Money = p.Money.Add(PredictionAward)
		p.PredictionsRight++
		return nil
	})
}

func (s *Scoreboard) AwardIncorrectPrediction(playerID string) error {
	return s.mutate(playerID, func(p *PlayerScore) error {
		p.PredictionsWrong++
		return nil
	})
}

// All retorna cópias na ordem de registro.
func (s *Scoreboard) All() []PlayerScore {
	out := make([]PlayerScore, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.players[id])
	}
	return out
}

// SortedByMoneyDescending ordena de forma estável; empates mantêm a ordem
// de registro.
func (s *Scoreboard) SortedByMoneyDescending() []PlayerScore {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Money.GreaterThan(out[j].Money) })
	return out
}

func (s *Scoreboard) Len() int { return len(s.order) }
