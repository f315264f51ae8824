package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/shared/clock"
	"github.com/radieske/esports-bet-bot/internal/team"
)

type stubFeed struct {
	rows []Row
	err  error
}

func (s *stubFeed) FetchSchedule(context.Context) ([]Row, error) { return s.rows, s.err }

type memMirror struct {
	saved []match.Scheduled
	err   error
}

func (m *memMirror) Save(_ context.Context, ms []match.Scheduled) error {
	m.saved = ms
	return m.err
}

func (m *memMirror) Load(context.Context) ([]match.Scheduled, error) { return m.saved, m.err }

func rows() []Row {
	return []Row{
		{Team1: "TSM", Team2: "C9", Year: 2020, Month: 6, Day: 13, Hour: 20, Minute: 0},
		{Team1: "TL", Team2: "EG", Year: 2020, Month: 6, Day: 13, Hour: 21, Minute: 0},
		{Team1: "C9", Team2: "TL", Year: 2020, Month: 6, Day: 14, Hour: 20, Minute: 0},
		{Team1: "TSM", Team2: "C9", Year: 2020, Month: 7, Day: 18, Hour: 20, Minute: 0},
	}
}

func newCache(t *testing.T, feed Feed, now time.Time, mirror Mirror) (*Cache, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(now)
	c := NewCache(feed, Options{Location: time.UTC, FutureBuffer: 30 * time.Minute, Clock: clk, Mirror: mirror}, zap.NewNop())
	return c, clk
}

func TestRefresh_ConvertsRows(t *testing.T) {
	loc := time.FixedZone("PDT", -7*3600)
	c := NewCache(&stubFeed{rows: rows()[:1]}, Options{Location: loc}, zap.NewNop())
	require.NoError(t, c.Refresh(context.Background()))

	all := c.All()
	require.Len(t, all, 1)
	assert.Equal(t, team.TSM, all[0].Team1)
	assert.Equal(t, 13, all[0].Time.Hour())
	assert.Equal(t, loc, all[0].Time.Location())
}

func TestRefresh_EmptyOrFailedKeepsPrevious(t *testing.T) {
	feed := &stubFeed{rows: rows()}
	c, _ := newCache(t, feed, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, c.Refresh(context.Background()))

	feed.rows = nil
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrEmptySchedule)
	assert.Len(t, c.All(), 4)

	feed.rows = []Row{{Team1: "g2", Team2: "fnc", Year: 2020, Month: 6, Day: 1}}
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrEmptySchedule)

	feed.err = errors.New("boom")
	assert.Error(t, c.Refresh(context.Background()))
	assert.Len(t, c.All(), 4)
}

func TestNextMatchForTeam_HonoursFutureBuffer(t *testing.T) {
	c, clk := newCache(t, &stubFeed{rows: rows()}, time.Date(2020, 6, 13, 20, 29, 0, 0, time.UTC), nil)
	require.NoError(t, c.Refresh(context.Background()))

	m, ok := c.NextMatchForTeam(team.TSM)
	require.True(t, ok)
	assert.Equal(t, 13, m.Time.Day())

	clk.Set(time.Date(2020, 6, 13, 20, 30, 0, 0, time.UTC))
	m, ok = c.NextMatchForTeam(team.TSM)
	require.True(t, ok)
	assert.Equal(t, time.July, m.Time.Month())

	clk.Set(time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC))
	_, ok = c.NextMatchForTeam(team.TSM)
	assert.False(t, ok)
}

func TestNextMatchForMatchup_Unordered(t *testing.T) {
	c, _ := newCache(t, &stubFeed{rows: rows()}, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, c.Refresh(context.Background()))

	m, ok := c.NextMatchForMatchup(team.TL, team.C9)
	require.True(t, ok)
	assert.Equal(t, 14, m.Time.Day())

	_, ok = c.NextMatchForMatchup(team.EG, team.C9)
	assert.False(t, ok)
}

func TestUpcoming(t *testing.T) {
	c, _ := newCache(t, &stubFeed{rows: rows()}, time.Date(2020, 6, 13, 20, 5, 0, 0, time.UTC), nil)
	require.NoError(t, c.Refresh(context.Background()))

	up := c.Upcoming(5, 10*time.Minute)
	assert.Len(t, up, 4)
	assert.Len(t, c.Upcoming(2, 10*time.Minute), 2)

	c2, _ := newCache(t, &stubFeed{rows: rows()}, time.Date(2020, 6, 13, 20, 11, 0, 0, time.UTC), nil)
	require.NoError(t, c2.Refresh(context.Background()))
	assert.Len(t, c2.Upcoming(5, 10*time.Minute), 3)
}

func TestMirror_SaveAndWarm(t *testing.T) {
	mirror := &memMirror{}
	c, _ := newCache(t, &stubFeed{rows: rows()}, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), mirror)
	require.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, mirror.saved, 4)

	cold, _ := newCache(t, &stubFeed{err: errors.New("down")}, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), mirror)
	require.NoError(t, cold.Warm(context.Background()))
	assert.Len(t, cold.All(), 4)

	empty, _ := newCache(t, &stubFeed{}, time.Now(), &memMirror{})
	assert.ErrorIs(t, empty.Warm(context.Background()), ErrEmptySchedule)
}
