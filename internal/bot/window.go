package bot

import "time"

// ActiveWindow limita o polling aos dias e horas em que há transmissão.
// Horas no intervalo [FromHour, ToHour) no fuso Location.
type ActiveWindow struct {
	Days     []time.Weekday
	FromHour int
	ToHour   int
	Location *time.Location
}

// Always é a janela sem restrição.
var Always = ActiveWindow{FromHour: 0, ToHour: 24}

func (w ActiveWindow) Contains(t time.Time) bool {
	if w.Location != nil {
		t = t.In(w.Location)
	}
	if len(w.Days) > 0 {
		found := false
		for _, d := range w.Days {
			if d == t.Weekday() {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	h := t.Hour()
	return h >= w.FromHour && h < w.ToHour
}
