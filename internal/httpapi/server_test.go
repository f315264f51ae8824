package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/bot"
	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/schedule"
	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/shared/clock"
	"github.com/radieske/esports-bet-bot/internal/wager"
	"github.com/radieske/esports-bet-bot/internal/ws"
	"github.com/radieske/esports-bet-bot/pkg/contracts/events"
)

type staticFeed []schedule.Row

func (f staticFeed) FetchSchedule(context.Context) ([]schedule.Row, error) { return f, nil }

func newServer(t *testing.T) (*bot.App, *ws.Hub, *httptest.Server) {
	t.Helper()
	clk := clock.NewFake(time.Date(2020, 6, 13, 12, 0, 0, 0, time.UTC))
	sched := schedule.NewCache(staticFeed{
		{Team1: "TSM", Team2: "C9", Year: 2020, Month: 6, Day: 13, Hour: 20},
	}, schedule.Options{Location: time.UTC, Clock: clk}, zap.NewNop())
	require.NoError(t, sched.Refresh(context.Background()))

	app := bot.NewApp(bot.Deps{
		Schedule: sched,
		Ledger:   wager.NewLedger(nil),
		Scores:   scoreboard.New(nil),
		Window:   match.Window{Lookback: 7 * 24 * time.Hour, Lead: time.Hour},
		Clock:    clk,
	})
	hub := ws.NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer((&API{App: app, Hub: hub}).Router())
	t.Cleanup(srv.Close)
	return app, hub, srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestAPI_ReadEndpoints(t *testing.T) {
	app, _, srv := newServer(t)
	_, ok := app.ProcessMessage(context.Background(), bot.Message{AuthorID: "u1", AuthorName: "Alice", Text: "!bet 30 tsm"})
	require.True(t, ok)

	var board []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/scoreboard", &board))
	require.Len(t, board, 1)
	assert.Equal(t, "Alice", board[0]["name"])
	assert.Equal(t, "70", board[0]["money"])

	var bets []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/bets", &bets))
	require.Len(t, bets, 1)
	assert.Equal(t, "TSM", bets[0]["victor"])
	assert.Equal(t, "C9", bets[0]["loser"])
	assert.Equal(t, "Alice", bets[0]["player_name"])

	var preds []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/predictions", &preds))
	assert.Empty(t, preds)

	var sched []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/schedule", &sched))
	require.Len(t, sched, 1)
	assert.Equal(t, "TSM", sched[0]["team1"])

	var detail map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/players/u1", &detail))
	assert.Len(t, detail["bets"], 1)
}

func TestAPI_UnknownPlayer(t *testing.T) {
	_, _, srv := newServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/v1/players/nobody", &body))
	assert.Equal(t, "not found", body["error"])
}

func TestAPI_StreamDeliversAnnouncements(t *testing.T) {
	_, hub, srv := newServer(t)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/stream", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Announce(context.Background(), "Results are in!"))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got events.Announcement
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "Results are in!", got.Text)
}
