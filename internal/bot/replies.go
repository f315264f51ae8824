package bot

import (
	"fmt"
	"strings"

	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/wager"
)

const helpText = `Commands:
!balance - your money and prediction record
!scoreboard - everyone's money
!schedule - upcoming LCS games
!next <Team> or !next <Team1> <Team2> - next match for a team or matchup
!predict <Team> or !predict <Team1> beat <Team2> - free prediction, +$10 if right
!bet <Wager> <Team> or !bet <Wager> <Team1> beat <Team2> - bet money, pays double
!mybets - your open bets and predictions
!allbets - everyone's open bets and predictions`

func balanceReply(p scoreboard.PlayerScore) string {
	return fmt.Sprintf("Score for %s:\n%s", p.Name, p)
}

func scoreboardReply(rows []scoreboard.PlayerScore) string {
	if len(rows) == 0 {
		return "The scoreboard is empty - there are no registered players yet."
	}
	var b strings.Builder
	b.WriteString("Scoreboard:")
	for i, p := range rows {
		fmt.Fprintf(&b, "\n%d. %s: %s", i+1, p.Name, p)
	}
	return b.String()
}

func scheduleReply(ms []match.Scheduled) string {
	if len(ms) == 0 {
		return "There are no games left in the season."
	}
	var b strings.Builder
	b.WriteString("Upcoming LCS games:")
	for _, m := range ms {
		b.WriteString("\n" + m.String())
	}
	return b.String()
}

func myBetsReply(bets []wager.Bet, preds []wager.Prediction) string {
	if len(bets) == 0 && len(preds) == 0 {
		return "You do not have any active bets or predictions."
	}
	var parts []string
	if len(bets) > 0 {
		lines := []string{"Your active bets:"}
		for _, bt := range bets {
			lines = append(lines, bt.String())
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	if len(preds) > 0 {
		lines := []string{"Your predictions:"}
		for _, p := range preds {
			lines = append(lines, p.String())
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n")
}

func allBetsReply(bets []BetView, preds []PredictionView) string {
	if len(bets) == 0 && len(preds) == 0 {
		return "There are no active bets or predictions."
	}
	var parts []string
	if len(bets) > 0 {
		lines := []string{"All active bets:"}
		for _, bt := range bets {
			lines = append(lines, fmt.Sprintf("%s bet %s", bt.PlayerName, bt.Bet))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	if len(preds) > 0 {
		lines := []string{"Active predictions:"}
		for _, p := range preds {
			lines = append(lines, fmt.Sprintf("%s thinks %s", p.PlayerName, p.Prediction))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n")
}
