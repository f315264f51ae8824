package events

// Evento emitido quando uma aposta é criada ou alterada.
type BetPlaced struct {
	EventID    string `json:"event_id"`
	BetID      int    `json:"bet_id"`
	UserID     string `json:"user_id"`
	Victor     string `json:"victor"`
	Loser      string `json:"loser"`
	MatchTime  string `json:"match_time"` // RFC3339
	WagerCents int64  `json:"wager_cents"`
	Updated    bool   `json:"updated"` // true quando substitui uma aposta existente
	TsUnixMs   int64  `json:"ts_unix_ms"`
}
