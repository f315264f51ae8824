package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/shared/metrics"
	"github.com/radieske/esports-bet-bot/internal/wager"
)

const (
	tableScores = "scores"
	tableLedger = "ledger_entries"

	maxAttempts = 3
)

var ErrPending = errors.New("snapshots still pending")

// Writer tira a escrita do caminho dos comandos: PersistScores e
// PersistLedger só guardam o snapshot mais recente e acordam o loop de Run.
// Um snapshot que esgota as tentativas continua pendente até a próxima
// mutação ou o Flush.
type Writer struct {
	store   Store
	log     *zap.Logger
	metrics *metrics.Bot
	backoff func(attempt int) time.Duration

	mu     sync.Mutex
	scores []scoreboard.PlayerScore
	ledger *wager.Snapshot
	wake   chan struct{}

	saveMu sync.Mutex
}

func NewWriter(s Store, log *zap.Logger, m *metrics.Bot) *Writer {
	return &Writer{
		store:   s,
		log:     log,
		metrics: m,
		backoff: func(i int) time.Duration { return time.Duration(300*(i+1)) * time.Millisecond },
		wake:    make(chan struct{}, 1),
	}
}

func (w *Writer) PersistScores(rows []scoreboard.PlayerScore) {
	if rows == nil {
		rows = []scoreboard.PlayerScore{}
	}
	w.mu.Lock()
	w.scores = rows
	w.mu.Unlock()
	w.signal()
}

func (w *Writer) PersistLedger(s wager.Snapshot) {
	w.mu.Lock()
	w.ledger = &s
	w.mu.Unlock()
	w.signal()
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run grava os snapshots pendentes até ctx ser cancelado.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.wake:
			w.drain(ctx)
		}
	}
}

// Flush grava o que estiver pendente de forma síncrona. Usado no shutdown.
func (w *Writer) Flush(ctx context.Context) error {
	w.drain(ctx)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.scores != nil || w.ledger != nil {
		return ErrPending
	}
	return nil
}

func (w *Writer) drain(ctx context.Context) {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.Lock()
	scores, ledger := w.scores, w.ledger
	w.scores, w.ledger = nil, nil
	w.mu.Unlock()

	if scores != nil {
		if err := w.retry(ctx, func() error { return w.store.SaveScores(ctx, scores) }); err != nil {
			w.fail(tableScores, err)
			w.mu.Lock()
			if w.scores == nil {
				w.scores = scores
			}
			w.mu.Unlock()
		}
	}
	if ledger != nil {
		if err := w.retry(ctx, func() error { return w.store.SaveLedger(ctx, *ledger) }); err != nil {
			w.fail(tableLedger, err)
			w.mu.Lock()
			if w.ledger == nil {
				w.ledger = ledger
			}
			w.mu.Unlock()
		}
	}
}

// retry tenta maxAttempts vezes com backoff linear (300ms, 600ms, ...).
func (w *Writer) retry(ctx context.Context, save func() error) error {
	var err error
	for i := 0; i < maxAttempts; i++ {
		if err = save(); err == nil {
			return nil
		}
		if i == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(w.backoff(i)):
		}
	}
	return err
}

func (w *Writer) fail(table string, err error) {
	w.log.Error("persist snapshot failed, memory and storage diverge until the next write",
		zap.String("table", table), zap.Int("attempts", maxAttempts), zap.Error(err))
	w.metrics.PersistFailure(table)
}
