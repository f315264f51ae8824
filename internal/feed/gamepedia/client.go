// Package gamepedia busca o calendário e os resultados do LCS nas páginas
// da wiki Gamepedia.
package gamepedia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/radieske/esports-bet-bot/internal/results"
	"github.com/radieske/esports-bet-bot/internal/schedule"
	"github.com/radieske/esports-bet-bot/internal/team"
)

const userAgent = "esports-bet-bot/1.0 (+https://github.com/radieske/esports-bet-bot)"

// Linha do export de calendário: "- TSM vs C9,2020,6,13,20,0" (UTC).
var scheduleLine = regexp.MustCompile(`- ([\w\d]{1,3}) vs ([\w\d]{1,3}),(\d{4}),(\d{1,2}),(\d{1,2}),(\d{1,2}),(\d{1,2})`)

// Client implementa schedule.Feed e results.Feed. As requisições passam por
// um limitador compartilhado para não martelar a wiki.
type Client struct {
	HTTP        *http.Client
	ScheduleURL string
	ResultsURL  string
	limiter     *rate.Limiter
}

func New(scheduleURL, resultsURL string, minInterval time.Duration) *Client {
	lim := rate.NewLimiter(rate.Inf, 1)
	if minInterval > 0 {
		lim = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return &Client{
		HTTP:        &http.Client{Timeout: 15 * time.Second},
		ScheduleURL: scheduleURL,
		ResultsURL:  resultsURL,
		limiter:     lim,
	}
}

func (c *Client) FetchSchedule(ctx context.Context) ([]schedule.Row, error) {
	var rows []schedule.Row
	err := c.get(ctx, c.ScheduleURL, func(body io.Reader) error {
		var err error
		rows, err = ParseSchedule(body)
		return err
	})
	return rows, err
}

func (c *Client) FetchAllFinishedMatches(ctx context.Context) ([]results.Row, error) {
	var rows []results.Row
	err := c.get(ctx, c.ResultsURL, func(body io.Reader) error {
		var err error
		rows, err = ParseResults(body)
		return err
	})
	return rows, err
}

func (c *Client) get(ctx context.Context, url string, parse func(io.Reader) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	return parse(resp.Body)
}

// ParseSchedule extrai as partidas do texto da página de export.
func ParseSchedule(r io.Reader) ([]schedule.Row, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse schedule page: %w", err)
	}
	var out []schedule.Row
	for _, m := range scheduleLine.FindAllStringSubmatch(doc.Text(), -1) {
		n := make([]int, 5)
		for i := range n {
			n[i], _ = strconv.Atoi(m[3+i])
		}
		out = append(out, schedule.Row{Team1: m[1], Team2: m[2], Year: n[0], Month: n[1], Day: n[2], Hour: n[3], Minute: n[4]})
	}
	return out, nil
}

// ParseResults lê a tabela de partidas e devolve, na ordem da página, as que
// já têm vencedor identificado.
func ParseResults(r io.Reader) ([]results.Row, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}
	var out []results.Row
	doc.Find(`tr[class*="mdv-allweeks mdv-week"]`).Each(func(_ int, row *goquery.Selection) {
		names := row.Find("span.teamname")
		if names.Length() < 2 {
			return
		}
		n1, n2 := strings.TrimSpace(names.Eq(0).Text()), strings.TrimSpace(names.Eq(1).Text())
		t1, t2 := team.Parse(n1), team.Parse(n2)
		if t1 == team.Unknown || t2 == team.Unknown {
			return
		}
		win := row.Find("td.md-winner")
		if win.Length() == 0 {
			return
		}
		switch team.Parse(win.First().Text()) {
		case t1:
			out = append(out, results.Row{Victor: n1, Loser: n2})
		case t2:
			out = append(out, results.Row{Victor: n2, Loser: n1})
		}
	})
	return out, nil
}
