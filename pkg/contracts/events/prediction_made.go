package events

// Evento emitido quando um palpite é criado ou trocado.
type PredictionMade struct {
	EventID      string `json:"event_id"`
	PredictionID int    `json:"prediction_id"`
	UserID       string `json:"user_id"`
	Victor       string `json:"victor"`
	Loser        string `json:"loser"`
	MatchTime    string `json:"match_time"`
	Updated      bool   `json:"updated"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
