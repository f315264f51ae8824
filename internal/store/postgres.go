package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/team"
	"github.com/radieske/esports-bet-bot/internal/wager"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
	position          INT NOT NULL,
	user_id           TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	money             NUMERIC(14,2) NOT NULL,
	predictions_right INT NOT NULL DEFAULT 0,
	predictions_wrong INT NOT NULL DEFAULT 0,
	bet_count         INT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS ledger_entries (
	kind       CHAR(1) NOT NULL,
	id         INT NOT NULL,
	user_id    TEXT NOT NULL,
	victor     TEXT NOT NULL,
	loser      TEXT NOT NULL,
	match_time TIMESTAMPTZ NOT NULL,
	wager      NUMERIC(14,2),
	PRIMARY KEY (kind, id)
);
CREATE TABLE IF NOT EXISTS ledger_next_ids (
	kind    CHAR(1) PRIMARY KEY,
	next_id INT NOT NULL
);`

// Postgres implementa Store sobre duas tabelas. Cada Save é uma transação
// que apaga e reinsere a tabela inteira.
type Postgres struct {
	db  *sql.DB
	loc *time.Location
}

func NewPostgres(db *sql.DB, loc *time.Location) *Postgres {
	if loc == nil {
		loc = time.Local
	}
	return &Postgres{db: db, loc: loc}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) LoadScores(ctx context.Context) ([]scoreboard.PlayerScore, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT user_id, name, money, predictions_right, predictions_wrong, bet_count
		FROM scores ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []scoreboard.PlayerScore
	for rows.Next() {
		var s scoreboard.PlayerScore
		if err := rows.Scan(&s.PlayerID, &s.Name, &s.Money, &s.PredictionsRight, &s.PredictionsWrong, &s.BetCount); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveScores(ctx context.Context, list []scoreboard.PlayerScore) error {
	return p.rewrite(ctx, tableScores, func(tx *sql.Tx) error {
		for i, s := range list {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO scores(position, user_id, name, money, predictions_right, predictions_wrong, bet_count)
				VALUES($1,$2,$3,$4,$5,$6,$7)`,
				i, s.PlayerID, s.Name, s.Money, s.PredictionsRight, s.PredictionsWrong, s.BetCount); err != nil {
				return fmt.Errorf("insert score %s: %w", s.PlayerID, err)
			}
		}
		return nil
	})
}

func (p *Postgres) LoadLedger(ctx context.Context) (wager.Snapshot, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT kind, id, user_id, victor, loser, match_time, wager
		FROM ledger_entries ORDER BY kind, id`)
	if err != nil {
		return wager.Snapshot{}, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var s wager.Snapshot
	for rows.Next() {
		var (
			kind, userID, victor, loser string
			id                          int
			at                          time.Time
			amount                      decimal.NullDecimal
		)
		if err := rows.Scan(&kind, &id, &userID, &victor, &loser, &at, &amount); err != nil {
			return wager.Snapshot{}, fmt.Errorf("scan ledger entry: %w", err)
		}
		v, l := team.Parse(victor), team.Parse(loser)
		if v == team.Unknown || l == team.Unknown {
			return wager.Snapshot{}, fmt.Errorf("%w: %s#%d teams %q/%q", ErrCorruptRow, kind, id, victor, loser)
		}
		at = at.In(p.loc)
		switch kind {
		case kindBet:
			if !amount.Valid {
				return wager.Snapshot{}, fmt.Errorf("%w: bet %d without wager", ErrCorruptRow, id)
			}
			s.Bets = append(s.Bets, wager.Bet{ID: id, PlayerID: userID, Victor: v, Loser: l, MatchTime: at, Wager: amount.Decimal})
		case kindPrediction:
			s.Predictions = append(s.Predictions, wager.Prediction{ID: id, PlayerID: userID, Victor: v, Loser: l, MatchTime: at})
		default:
			return wager.Snapshot{}, fmt.Errorf("%w: unknown kind %q", ErrCorruptRow, kind)
		}
	}
	if err := rows.Err(); err != nil {
		return wager.Snapshot{}, err
	}
	if err := p.loadNextIDs(ctx, &s); err != nil {
		return wager.Snapshot{}, err
	}
	return s, nil
}

func (p *Postgres) loadNextIDs(ctx context.Context, s *wager.Snapshot) error {
	rows, err := p.db.QueryContext(ctx, `SELECT kind, next_id FROM ledger_next_ids`)
	if err != nil {
		return fmt.Errorf("query next ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind string
			next int
		)
		if err := rows.Scan(&kind, &next); err != nil {
			return fmt.Errorf("scan next id: %w", err)
		}
		switch kind {
		case kindBet:
			s.NextBetID = next
		case kindPrediction:
			s.NextPredictionID = next
		}
	}
	return rows.Err()
}

func (p *Postgres) SaveLedger(ctx context.Context, s wager.Snapshot) error {
	return p.rewrite(ctx, tableLedger, func(tx *sql.Tx) error {
		const insert = `
			INSERT INTO ledger_entries(kind, id, user_id, victor, loser, match_time, wager)
			VALUES($1,$2,$3,$4,$5,$6,$7)`
		for _, b := range s.Bets {
			if _, err := tx.ExecContext(ctx, insert, kindBet, b.ID, b.PlayerID, b.Victor.String(), b.Loser.String(), b.MatchTime, b.Wager); err != nil {
				return fmt.Errorf("insert bet %d: %w", b.ID, err)
			}
		}
		for _, pr := range s.Predictions {
			if _, err := tx.ExecContext(ctx, insert, kindPrediction, pr.ID, pr.PlayerID, pr.Victor.String(), pr.Loser.String(), pr.MatchTime, nil); err != nil {
				return fmt.Errorf("insert prediction %d: %w", pr.ID, err)
			}
		}

		const upsert = `
			INSERT INTO ledger_next_ids(kind, next_id) VALUES($1,$2)
			ON CONFLICT (kind) DO UPDATE SET next_id = EXCLUDED.next_id`
		for _, n := range []struct {
			kind string
			next int
		}{{kindBet, s.NextBetID}, {kindPrediction, s.NextPredictionID}} {
			if n.next <= 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx, upsert, n.kind, n.next); err != nil {
				return fmt.Errorf("save next %s id: %w", n.kind, err)
			}
		}
		return nil
	})
}

// rewrite apaga a tabela e executa fill na mesma transação.
func (p *Postgres) rewrite(ctx context.Context, table string, fill func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// table vem de constantes deste pacote
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := fill(tx); err != nil {
		return err
	}
	return tx.Commit()
}
