package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/shared/clock"
	"github.com/radieske/esports-bet-bot/internal/wager"
)

// CSV grava uma linha por jogador e uma linha por aposta/palpite.
// Arquivo inexistente é lido como tabela vazia.
type CSV struct {
	ScoresPath string
	LedgerPath string
	Location   *time.Location
	Clock      clock.Clock
}

func NewCSV(scoresPath, ledgerPath string, loc *time.Location, clk clock.Clock) *CSV {
	if loc == nil {
		loc = time.Local
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &CSV{ScoresPath: scoresPath, LedgerPath: ledgerPath, Location: loc, Clock: clk}
}

func (c *CSV) LoadScores(_ context.Context) ([]scoreboard.PlayerScore, error) {
	var out []scoreboard.PlayerScore
	err := readRecords(c.ScoresPath, 6, func(line int, rec []string) error {
		p, err := parseScoreRecord(rec)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", c.ScoresPath, line, err)
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func (c *CSV) SaveScores(_ context.Context, rows []scoreboard.PlayerScore) error {
	recs := make([][]string, 0, len(rows))
	for _, p := range rows {
		recs = append(recs, scoreRecord(p))
	}
	return writeRecords(c.ScoresPath, recs)
}

func (c *CSV) LoadLedger(_ context.Context) (wager.Snapshot, error) {
	var s wager.Snapshot
	now := c.Clock.Now()
	err := readRecords(c.LedgerPath, -1, func(line int, rec []string) error {
		if err := parseLedgerRecord(rec, &s, c.Location, now); err != nil {
			return fmt.Errorf("%s:%d: %w", c.LedgerPath, line, err)
		}
		return nil
	})
	if err != nil {
		return wager.Snapshot{}, err
	}
	return s, nil
}

func (c *CSV) SaveLedger(_ context.Context, s wager.Snapshot) error {
	recs := make([][]string, 0, len(s.Bets)+len(s.Predictions)+1)
	if s.NextBetID > 0 || s.NextPredictionID > 0 {
		recs = append(recs, nextIDsRecord(s))
	}
	for _, b := range s.Bets {
		recs = append(recs, betRecord(b, c.Location))
	}
	for _, p := range s.Predictions {
		recs = append(recs, predictionRecord(p, c.Location))
	}
	return writeRecords(c.LedgerPath, recs)
}

func readRecords(path string, fields int, fn func(line int, rec []string) error) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s:%d: %w: %v", path, line, ErrCorruptRow, err)
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

// writeRecords grava num arquivo temporário e renomeia, para que uma falha
// no meio da escrita não deixe o arquivo truncado.
func writeRecords(path string, recs [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(recs); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
