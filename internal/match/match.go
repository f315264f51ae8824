// Package match contém os tipos de valor de partidas agendadas e finalizadas
// e a regra que correlaciona uma aposta a um resultado.
package match

import (
	"fmt"
	"time"

	"github.com/radieske/esports-bet-bot/internal/team"
)

// Scheduled é uma partida futura vinda do feed de calendário. É copiada por
// valor para dentro de apostas e palpites.
type Scheduled struct {
	Team1 team.Team `json:"team1"`
	Team2 team.Team `json:"team2"`
	Time  time.Time `json:"time"`
}

// Finished é um resultado já decidido.
type Finished struct {
	Victor team.Team `json:"victor"`
	Loser  team.Team `json:"loser"`
	Time   time.Time `json:"time"`
}

// SamePair compara dois pares de times sem considerar a ordem.
func SamePair(a1, a2, b1, b2 team.Team) bool {
	return (a1 == b1 && a2 == b2) || (a1 == b2 && a2 == b1)
}

// Involves informa se o time joga esta partida.
func (m Scheduled) Involves(t team.Team) bool { return m.Team1 == t || m.Team2 == t }

// IsMatchup informa se a partida é entre a e b, em qualquer ordem.
func (m Scheduled) IsMatchup(a, b team.Team) bool { return SamePair(m.Team1, m.Team2, a, b) }

// Opponent retorna o adversário de t, ou Unknown se t não joga.
func (m Scheduled) Opponent(t team.Team) team.Team {
	switch t {
	case m.Team1:
		return m.Team2
	case m.Team2:
		return m.Team1
	}
	return team.Unknown
}

func (m Scheduled) String() string {
	return fmt.Sprintf("%s vs %s - %s", m.Team1, m.Team2, m.Time.Format("Mon 1/02 3:04 PM"))
}

func (f Finished) String() string {
	return fmt.Sprintf("%s beat %s", f.Victor, f.Loser)
}

// Outcome é o veredito de um resultado sobre uma aposta ou palpite.
type Outcome int

const (
	NoMatch Outcome = iota
	Won
	Lost
)

// Window define a tolerância de horário para correlacionar uma aposta ao
// resultado: result.Time-Lookback <= matchTime <= result.Time+Lead.
type Window struct {
	Lookback time.Duration
	Lead     time.Duration
}

func (w Window) Contains(matchTime, resultTime time.Time) bool {
	return !matchTime.Before(resultTime.Add(-w.Lookback)) && !matchTime.After(resultTime.Add(w.Lead))
}

// Judge decide se quem escolheu victor contra loser numa partida em
// matchTime acertou, errou ou não tem relação com o resultado f.
// A janela de horário vale para as duas orientações.
func (w Window) Judge(victor, loser team.Team, matchTime time.Time, f Finished) Outcome {
	if !SamePair(victor, loser, f.Victor, f.Loser) || !w.Contains(matchTime, f.Time) {
		return NoMatch
	}
	if victor == f.Victor {
		return Won
	}
	return Lost
}
