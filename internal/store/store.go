// Package store persiste o scoreboard e o ledger de apostas, em arquivos CSV
// ou no Postgres.
package store

import (
	"context"
	"errors"

	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/wager"
)

var ErrCorruptRow = errors.New("corrupt row")

// Store é implementado por CSV e Postgres. Cada Save reescreve a tabela inteira.
type Store interface {
	LoadScores(ctx context.Context) ([]scoreboard.PlayerScore, error)
	SaveScores(ctx context.Context, rows []scoreboard.PlayerScore) error
	LoadLedger(ctx context.Context) (wager.Snapshot, error)
	SaveLedger(ctx context.Context, s wager.Snapshot) error
}
