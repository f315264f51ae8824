package topics

const (
	// Ledger
	BetPlaced      = "bet_placed"
	PredictionMade = "prediction_made"

	// Resolução
	MatchSettled = "match_settled"
)
