package resolution

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/team"
	"github.com/radieske/esports-bet-bot/internal/wager"
)

type counter struct{ ledger, scores int }

func (c *counter) PersistLedger(wager.Snapshot)          { c.ledger++ }
func (c *counter) PersistScores([]scoreboard.PlayerScore) { c.scores++ }

var kickoff = time.Date(2020, 6, 13, 15, 0, 0, 0, time.UTC)

type fixture struct {
	ledger *wager.Ledger
	scores *scoreboard.Scoreboard
	engine *Engine
	writes *counter
}

func newFixture() *fixture {
	c := &counter{}
	l := wager.NewLedger(c)
	s := scoreboard.New(c)
	w := match.Window{Lookback: 7 * 24 * time.Hour, Lead: time.Hour}
	return &fixture{ledger: l, scores: s, engine: NewEngine(l, s, w, zap.NewNop()), writes: c}
}

func usd(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func result(v, l team.Team) match.Finished {
	return match.Finished{Victor: v, Loser: l, Time: kickoff.Add(2 * time.Hour)}
}

func balance(t *testing.T, s *scoreboard.Scoreboard, id string) decimal.Decimal {
	t.Helper()
	p, err := s.Get(id)
	require.NoError(t, err)
	return p.Money
}

func TestResolve_WinningBetPaysDouble(t *testing.T) {
	f := newFixture()
	f.scores.Register("u1", "Alice")
	require.NoError(t, f.scores.PlaceBet("u1", usd(30)))
	f.ledger.CreateBet("u1", team.TSM, team.C9, kickoff, usd(30))

	s, ok := f.engine.Resolve(result(team.TSM, team.C9))
	require.True(t, ok)
	assert.True(t, balance(t, f.scores, "u1").Equal(usd(130)))
	p, _ := f.scores.Get("u1")
	assert.Equal(t, 1, p.BetCount)
	assert.Empty(t, f.ledger.AllBets())
	assert.Equal(t, "Results are in!\nTSM beat C9.\nAlice won $60.00 by betting on TSM!", s.Text)
}

func TestResolve_LosingBetKeepsDebit(t *testing.T) {
	f := newFixture()
	f.scores.Register("u1", "Alice")
	require.NoError(t, f.scores.PlaceBet("u1", usd(10)))
	f.ledger.CreateBet("u1", team.C9, team.TSM, kickoff, usd(10))

	s, ok := f.engine.Resolve(result(team.TSM, team.C9))
	require.True(t, ok)
	assert.True(t, balance(t, f.scores, "u1").Equal(usd(90)))
	assert.Contains(t, s.Text, "Alice lost $10.00 by betting on C9.")
	assert.Len(t, s.LosingBets, 1)
}

func TestResolve_PredictionsCondensed(t *testing.T) {
	f := newFixture()
	for _, id := range []string{"a", "b", "c", "d"} {
		f.scores.Register(id, map[string]string{"a": "Alice", "b": "Bob", "c": "Carol", "d": "Dan"}[id])
	}
	f.ledger.CreatePrediction("a", team.TSM, team.C9, kickoff)
	f.ledger.CreatePrediction("b", team.TSM, team.C9, kickoff)
	f.ledger.CreatePrediction("c", team.C9, team.TSM, kickoff)
	f.ledger.CreatePrediction("d", team.TL, team.EG, kickoff)

	s, ok := f.engine.Resolve(result(team.TSM, team.C9))
	require.True(t, ok)
	assert.Equal(t,
		"Results are in!\nTSM beat C9.\n"+
			"Alice and Bob predicted that TSM would win, which was correct! (+$10)\n"+
			"Carol predicted that C9 would win, which was incorrect.",
		s.Text)

	assert.True(t, balance(t, f.scores, "a").Equal(usd(110)))
	assert.True(t, balance(t, f.scores, "c").Equal(usd(100)))
	carol, _ := f.scores.Get("c")
	assert.Equal(t, 1, carol.PredictionsWrong)
	require.Len(t, f.ledger.AllPredictions(), 1)
	assert.Equal(t, "d", f.ledger.AllPredictions()[0].PlayerID)
}

func TestResolve_IsIdempotent(t *testing.T) {
	f := newFixture()
	f.scores.Register("u1", "Alice")
	require.NoError(t, f.scores.PlaceBet("u1", usd(30)))
	f.ledger.CreateBet("u1", team.TSM, team.C9, kickoff, usd(30))
	f.ledger.CreatePrediction("u1", team.TSM, team.C9, kickoff)

	_, ok := f.engine.Resolve(result(team.TSM, team.C9))
	require.True(t, ok)
	_, ok = f.engine.Resolve(result(team.TSM, team.C9))
	assert.False(t, ok)
	assert.True(t, balance(t, f.scores, "u1").Equal(usd(140)))
}

func TestResolve_NothingOutstanding(t *testing.T) {
	f := newFixture()
	f.scores.Register("u1", "Alice")
	f.ledger.CreateBet("u1", team.TL, team.EG, kickoff, usd(5))
	before := *f.writes

	s, ok := f.engine.Resolve(result(team.TSM, team.C9))
	assert.False(t, ok)
	assert.Empty(t, s.Text)
	assert.Equal(t, before, *f.writes)
}

func TestResolve_PersistsOncePerTable(t *testing.T) {
	f := newFixture()
	f.scores.Register("u1", "Alice")
	f.scores.Register("u2", "Bob")
	f.ledger.CreateBet("u1", team.TSM, team.C9, kickoff, usd(5))
	f.ledger.CreateBet("u2", team.C9, team.TSM, kickoff, usd(5))
	f.ledger.CreatePrediction("u2", team.TSM, team.C9, kickoff)
	before := *f.writes

	_, ok := f.engine.Resolve(result(team.TSM, team.C9))
	require.True(t, ok)
	assert.Equal(t, before.ledger+1, f.writes.ledger)
	assert.Equal(t, before.scores+1, f.writes.scores)
}

func TestResolve_OutsideWindowIgnored(t *testing.T) {
	f := newFixture()
	f.scores.Register("u1", "Alice")
	f.ledger.CreateBet("u1", team.C9, team.TSM, kickoff.Add(-10*24*time.Hour), usd(5))

	_, ok := f.engine.Resolve(result(team.TSM, team.C9))
	assert.False(t, ok)
	assert.Len(t, f.ledger.AllBets(), 1)
}

func TestResolve_UnknownPlayerStillRemoved(t *testing.T) {
	f := newFixture()
	f.ledger.CreateBet("ghost", team.TSM, team.C9, kickoff, usd(5))

	s, ok := f.engine.Resolve(result(team.TSM, team.C9))
	require.True(t, ok)
	assert.Empty(t, f.ledger.AllBets())
	assert.Contains(t, s.Text, "ghost won $10.00 by betting on TSM!")
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "", JoinNames(nil))
	assert.Equal(t, "Alice", JoinNames([]string{"Alice"}))
	assert.Equal(t, "Alice and Bob", JoinNames([]string{"Alice", "Bob"}))
	assert.Equal(t, "A, B and C", JoinNames([]string{"A", "B", "C"}))
}
