package bot

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/esports-bet-bot/internal/resolution"
	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/wager"
	"github.com/radieske/esports-bet-bot/pkg/contracts/events"
)

var hundred = decimal.NewFromInt(100)

func cents(d decimal.Decimal) int64 { return d.Mul(hundred).Round(0).IntPart() }

func betPlacedEvent(b wager.Bet, updated bool, now time.Time) events.BetPlaced {
	return events.BetPlaced{
		EventID:    uuid.NewString(),
		BetID:      b.ID,
		UserID:     b.PlayerID,
		Victor:     b.Victor.String(),
		Loser:      b.Loser.String(),
		MatchTime:  b.MatchTime.Format(time.RFC3339),
		WagerCents: cents(b.Wager),
		Updated:    updated,
		TsUnixMs:   now.UnixMilli(),
	}
}

func predictionMadeEvent(p wager.Prediction, updated bool, now time.Time) events.PredictionMade {
	return events.PredictionMade{
		EventID:      uuid.NewString(),
		PredictionID: p.ID,
		UserID:       p.PlayerID,
		Victor:       p.Victor.String(),
		Loser:        p.Loser.String(),
		MatchTime:    p.MatchTime.Format(time.RFC3339),
		Updated:      updated,
		TsUnixMs:     now.UnixMilli(),
	}
}

func matchSettledEvent(s resolution.Settlement, now time.Time) events.MatchSettled {
	e := events.MatchSettled{
		EventID:      uuid.NewString(),
		Victor:       s.Match.Victor.String(),
		Loser:        s.Match.Loser.String(),
		ResultTime:   s.Match.Time.Format(time.RFC3339),
		Announcement: s.Text,
		TsUnixMs:     now.UnixMilli(),
	}
	for _, p := range s.RightPredictions {
		e.Payouts = append(e.Payouts, events.Payout{Kind: "prediction", Outcome: "won", ID: p.ID, UserID: p.PlayerID, AmountCents: cents(scoreboard.PredictionAward)})
	}
	for _, p := range s.WrongPredictions {
		e.Payouts = append(e.Payouts, events.Payout{Kind: "prediction", Outcome: "lost", ID: p.ID, UserID: p.PlayerID})
	}
	for _, b := range s.WinningBets {
		e.Payouts = append(e.Payouts, events.Payout{Kind: "bet", Outcome: "won", ID: b.ID, UserID: b.PlayerID, AmountCents: cents(b.Winnings())})
	}
	for _, b := range s.LosingBets {
		e.Payouts = append(e.Payouts, events.Payout{Kind: "bet", Outcome: "lost", ID: b.ID, UserID: b.PlayerID})
	}
	return e
}
