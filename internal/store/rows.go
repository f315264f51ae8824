package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/team"
	"github.com/radieske/esports-bet-bot/internal/wager"
)

const (
	timeLayout       = "1/2/2006 15:04"
	legacyTimeLayout = "1/2 15:04"

	kindBet        = "b"
	kindPrediction = "p"
	kindNextIDs    = "n" // n,<próximo id de aposta>,<próximo id de palpite>
)

// formatTime grava com ano; segundos são descartados.
func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(timeLayout)
}

// parseTime aceita também o formato antigo sem ano, assumindo o ano de now.
func parseTime(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation(timeLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(now.In(loc).Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

func scoreRecord(p scoreboard.PlayerScore) []string {
	return []string{
		p.PlayerID,
		p.Name,
		p.Money.StringFixed(2),
		strconv.Itoa(p.PredictionsRight),
		strconv.Itoa(p.PredictionsWrong),
		strconv.Itoa(p.BetCount),
	}
}

func parseScoreRecord(rec []string) (scoreboard.PlayerScore, error) {
	if len(rec) != 6 {
		return scoreboard.PlayerScore{}, fmt.Errorf("%w: want 6 fields, got %d", ErrCorruptRow, len(rec))
	}
	m, err := decimal.NewFromString(rec[2])
	if err != nil {
		return scoreboard.PlayerScore{}, fmt.Errorf("%w: money %q", ErrCorruptRow, rec[2])
	}
	ints, err := atois(rec[3:6])
	if err != nil {
		return scoreboard.PlayerScore{}, err
	}
	return scoreboard.PlayerScore{
		PlayerID:         rec[0],
		Name:             rec[1],
		Money:            m,
		PredictionsRight: ints[0],
		PredictionsWrong: ints[1],
		BetCount:         ints[2],
	}, nil
}

func betRecord(b wager.Bet, loc *time.Location) []string {
	return []string{kindBet, strconv.Itoa(b.ID), b.PlayerID, b.Victor.String(), b.Loser.String(), formatTime(b.MatchTime, loc), b.Wager.StringFixed(2)}
}

func predictionRecord(p wager.Prediction, loc *time.Location) []string {
	return []string{kindPrediction, strconv.Itoa(p.ID), p.PlayerID, p.Victor.String(), p.Loser.String(), formatTime(p.MatchTime, loc)}
}

func nextIDsRecord(s wager.Snapshot) []string {
	return []string{kindNextIDs, strconv.Itoa(s.NextBetID), strconv.Itoa(s.NextPredictionID)}
}

// parseLedgerRecord adiciona a linha ao snapshot conforme o tipo.
func parseLedgerRecord(rec []string, s *wager.Snapshot, loc *time.Location, now time.Time) error {
	if len(rec) > 0 && strings.EqualFold(rec[0], kindNextIDs) {
		if len(rec) != 3 {
			return fmt.Errorf("%w: next ids want 3 fields, got %d", ErrCorruptRow, len(rec))
		}
		ids, err := atois(rec[1:])
		if err != nil {
			return err
		}
		s.NextBetID, s.NextPredictionID = ids[0], ids[1]
		return nil
	}
	if len(rec) < 6 {
		return fmt.Errorf("%w: want at least 6 fields, got %d", ErrCorruptRow, len(rec))
	}
	id, err := strconv.Atoi(rec[1])
	if err != nil {
		return fmt.Errorf("%w: id %q", ErrCorruptRow, rec[1])
	}
	victor, loser := team.Parse(rec[3]), team.Parse(rec[4])
	if victor == team.Unknown || loser == team.Unknown {
		return fmt.Errorf("%w: teams %q/%q", ErrCorruptRow, rec[3], rec[4])
	}
	at, err := parseTime(rec[5], loc, now)
	if err != nil {
		return fmt.Errorf("%w: time %q", ErrCorruptRow, rec[5])
	}

	switch strings.ToLower(rec[0]) {
	case kindBet:
		if len(rec) != 7 {
			return fmt.Errorf("%w: bet wants 7 fields, got %d", ErrCorruptRow, len(rec))
		}
		w, err := decimal.NewFromString(rec[6])
		if err != nil {
			return fmt.Errorf("%w: wager %q", ErrCorruptRow, rec[6])
		}
		s.Bets = append(s.Bets, wager.Bet{ID: id, PlayerID: rec[2], Victor: victor, Loser: loser, MatchTime: at, Wager: w})
	case kindPrediction:
		s.Predictions = append(s.Predictions, wager.Prediction{ID: id, PlayerID: rec[2], Victor: victor, Loser: loser, MatchTime: at})
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrCorruptRow, rec[0])
	}
	return nil
}

func atois(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%w: counter %q", ErrCorruptRow, f)
		}
		out[i] = n
	}
	return out, nil
}
