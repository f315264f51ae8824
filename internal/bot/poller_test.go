package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/resolution"
)

func TestActiveWindow(t *testing.T) {
	w := ActiveWindow{Days: []time.Weekday{time.Friday, time.Saturday, time.Sunday}, FromHour: 4, ToHour: 22, Location: time.UTC}

	assert.True(t, w.Contains(time.Date(2020, 6, 12, 10, 0, 0, 0, time.UTC)))   // sexta
	assert.False(t, w.Contains(time.Date(2020, 6, 11, 10, 0, 0, 0, time.UTC)))  // quinta
	assert.True(t, w.Contains(time.Date(2020, 6, 13, 4, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2020, 6, 13, 3, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2020, 6, 14, 22, 0, 0, 0, time.UTC)))
	assert.True(t, Always.Contains(time.Date(2020, 6, 11, 23, 0, 0, 0, time.UTC)))
}

func TestPollOnce_ResultsErrorSurfaces(t *testing.T) {
	f := newFixture(t)
	f.results.err = errors.New("gamepedia down")
	var stages []string
	p := &Poller{App: f.app, Schedule: f.sched, Results: f.tracker, Log: zap.NewNop(),
		OnError: func(stage string) { stages = append(stages, stage) }}

	_, err := p.PollOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"results"}, stages)
}

func TestRun_AnnouncesAndStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tracker.Prime(context.Background()))
	f.say(t, "u1", "!bet 10 tsm")
	f.clk.Set(time.Date(2020, 6, 13, 21, 0, 0, 0, time.UTC))
	f.results.add("TSM", "C9")

	announced := make(chan string, 1)
	var settled atomic.Int32
	p := &Poller{
		App: f.app, Schedule: f.sched, Results: f.tracker, Log: zap.NewNop(),
		Window:   Always,
		Interval: 10 * time.Millisecond,
		Clock:    f.clk,
		Announcer: announcerFunc(func(_ context.Context, text string) error {
			announced <- text
			return nil
		}),
		OnSettled: func(resolution.Settlement) { settled.Add(1) },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case text := <-announced:
		assert.Contains(t, text, "Alice won $20.00 by betting on TSM!")
	case <-time.After(2 * time.Second):
		t.Fatal("no announcement")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, int32(1), settled.Load())
}

func TestRun_OutsideWindowDoesNotPoll(t *testing.T) {
	f := newFixture(t)
	f.results.err = errors.New("must not be called")
	var errs atomic.Int32
	p := &Poller{
		App: f.app, Schedule: f.sched, Results: f.tracker, Log: zap.NewNop(),
		Window:   ActiveWindow{Days: []time.Weekday{time.Monday}, FromHour: 0, ToHour: 24},
		Interval: 5 * time.Millisecond,
		Clock:    f.clk,
		OnError:  func(string) { errs.Add(1) },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Run(ctx), context.DeadlineExceeded)
	assert.Zero(t, errs.Load())
}
