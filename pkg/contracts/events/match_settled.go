package events

// Evento publicado no tópico "match_settled" após a liquidação de um resultado.
type MatchSettled struct {
	EventID      string   `json:"event_id"`
	Victor       string   `json:"victor"`
	Loser        string   `json:"loser"`
	ResultTime   string   `json:"result_time"`
	Payouts      []Payout `json:"payouts"`
	Announcement string   `json:"announcement"`
	TsUnixMs     int64    `json:"ts_unix_ms"`
}

// Payout descreve o efeito da liquidação sobre um item do ledger.
type Payout struct {
	Kind        string `json:"kind"`    // "bet" | "prediction"
	Outcome     string `json:"outcome"` // "won" | "lost"
	ID          int    `json:"id"`
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"` // creditado; 0 para derrotas
}
