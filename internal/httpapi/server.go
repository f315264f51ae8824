package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/esports-bet-bot/internal/bot"
	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/ws"
)

// API expõe leituras do bot em JSON e o stream de anúncios.
type API struct {
	App *bot.App
	Hub *ws.Hub // opcional
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/scoreboard", a.scoreboard)
	r.Get("/v1/players/{id}", a.player)
	r.Get("/v1/bets", a.bets)
	r.Get("/v1/predictions", a.predictions)
	r.Get("/v1/schedule", a.schedule)
	if a.Hub != nil {
		r.Get("/v1/stream", a.Hub.HandleWS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) scoreboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.App.Leaderboard())
}

func (a *API) player(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := a.App.Player(id)
	if err != nil {
		if errors.Is(err, scoreboard.ErrUnknownPlayer) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) bets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.App.OpenBets())
}

func (a *API) predictions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.App.OpenPredictions())
}

func (a *API) schedule(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.App.Upcoming())
}
