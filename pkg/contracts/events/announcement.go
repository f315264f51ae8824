package events

// Announcement é o texto de liquidação repassado via Redis Pub/Sub e websocket.
type Announcement struct {
	Type     string `json:"type"` // "settlement"
	Text     string `json:"text"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}
