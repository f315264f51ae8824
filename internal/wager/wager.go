// Package wager guarda as apostas e palpites em aberto.
package wager

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/esports-bet-bot/internal/shared/money"
	"github.com/radieske/esports-bet-bot/internal/team"
)

// Layout usado ao exibir o horário da partida de uma aposta.
const matchTimeLayout = "Mon 3:04 PM 01/02"

// Bet é uma aposta com dinheiro fictício, paga em dobro (even money).
type Bet struct {
	ID        int             `json:"id"`
	PlayerID  string          `json:"player_id"`
	Victor    team.Team       `json:"victor"`
	Loser     team.Team       `json:"loser"`
	MatchTime time.Time       `json:"match_time"`
	Wager     decimal.Decimal `json:"wager"`
}

// Winnings é o valor creditado quando a aposta vence.
func (b Bet) Winnings() decimal.Decimal { return b.Wager.Add(b.Wager) }

func (b Bet) String() string {
	return fmt.Sprintf("%s on %s beating %s %s", money.Format(b.Wager), b.Victor, b.Loser, b.MatchTime.Format(matchTimeLayout))
}

// Prediction é um palpite sem dinheiro em jogo.
type Prediction struct {
	ID        int       `json:"id"`
	PlayerID  string    `json:"player_id"`
	Victor    team.Team `json:"victor"`
	Loser     team.Team `json:"loser"`
	MatchTime time.Time `json:"match_time"`
}

func (p Prediction) String() string {
	return fmt.Sprintf("%s will beat %s %s", p.Victor, p.Loser, p.MatchTime.Format(matchTimeLayout))
}

// Snapshot é o estado completo do ledger, usado para persistência.
// NextBetID e NextPredictionID guardam o próximo id a ser emitido, para que
// ids de apostas já resolvidas não voltem depois de um restart. Zero
// significa desconhecido (arquivos antigos).
type Snapshot struct {
	Bets             []Bet
	Predictions      []Prediction
	NextBetID        int
	NextPredictionID int
}
