// Package schedule mantém o calendário de partidas futuras.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/shared/clock"
	"github.com/radieske/esports-bet-bot/internal/team"
)

var ErrEmptySchedule = errors.New("schedule feed returned no matches")

// Row é uma linha crua do feed de calendário, com horário em UTC.
type Row struct {
	Team1, Team2 string
	Year         int
	Month        int
	Day          int
	Hour         int
	Minute       int
}

// Feed busca o calendário completo da temporada.
type Feed interface {
	FetchSchedule(ctx context.Context) ([]Row, error)
}

// Mirror guarda a última versão boa do calendário fora do processo.
type Mirror interface {
	Save(ctx context.Context, ms []match.Scheduled) error
	Load(ctx context.Context) ([]match.Scheduled, error)
}

type Options struct {
	Location     *time.Location
	FutureBuffer time.Duration
	Clock        clock.Clock
	Mirror       Mirror
}

// Cache é seguro para uso concorrente. O calendário é trocado inteiro a
// cada Refresh; partidas já copiadas por quem chamou continuam válidas.
type Cache struct {
	mu      sync.RWMutex
	matches []match.Scheduled

	feed   Feed
	loc    *time.Location
	buffer time.Duration
	clk    clock.Clock
	mirror Mirror
	log    *zap.Logger
}

func NewCache(feed Feed, opts Options, log *zap.Logger) *Cache {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.FutureBuffer == 0 {
		opts.FutureBuffer = 30 * time.Minute
	}
	return &Cache{feed: feed, loc: opts.Location, buffer: opts.FutureBuffer, clk: opts.Clock, mirror: opts.Mirror, log: log}
}

// Refresh substitui o calendário pelo conteúdo do feed. Em caso de erro ou
// resultado vazio o calendário anterior é mantido.
func (c *Cache) Refresh(ctx context.Context) error {
	rows, err := c.feed.FetchSchedule(ctx)
	if err != nil {
		return fmt.Errorf("fetch schedule: %w", err)
	}
	ms := c.convert(rows)
	if len(ms) == 0 {
		return ErrEmptySchedule
	}
	c.Set(ms)
	if c.mirror != nil {
		if err := c.mirror.Save(ctx, ms); err != nil {
			c.log.Warn("schedule mirror save failed", zap.Error(err))
		}
	}
	return nil
}

// Warm carrega o calendário do mirror; usado quando o feed está fora no startup.
func (c *Cache) Warm(ctx context.Context) error {
	if c.mirror == nil {
		return nil
	}
	ms, err := c.mirror.Load(ctx)
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		return ErrEmptySchedule
	}
	c.Set(ms)
	return nil
}

func (c *Cache) convert(rows []Row) []match.Scheduled {
	out := make([]match.Scheduled, 0, len(rows))
	for _, r := range rows {
		t1, t2 := team.Parse(r.Team1), team.Parse(r.Team2)
		if t1 == team.Unknown || t2 == team.Unknown {
			c.log.Warn("skipping schedule row with unknown team", zap.String("team1", r.Team1), zap.String("team2", r.Team2))
			continue
		}
		at := time.Date(r.Year, time.Month(r.Month), r.Day, r.Hour, r.Minute, 0, 0, time.UTC).In(c.loc)
		out = append(out, match.Scheduled{Team1: t1, Team2: t2, Time: at})
	}
	return out
}

func (c *Cache) Set(ms []match.Scheduled) {
	cp := append([]match.Scheduled(nil), ms...)
	c.mu.Lock()
	c.matches = cp
	c.mu.Unlock()
}

func (c *Cache) All() []match.Scheduled {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]match.Scheduled(nil), c.matches...)
}

func (c *Cache) relevant(m match.Scheduled, now time.Time, grace time.Duration) bool {
	return now.Before(m.Time.Add(grace))
}

// NextMatchForTeam retorna a primeira partida relevante do time.
func (c *Cache) NextMatchForTeam(t team.Team) (match.Scheduled, bool) {
	now := c.clk.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.matches {
		if m.Involves(t) && c.relevant(m, now, c.buffer) {
			return m, true
		}
	}
	return match.Scheduled{}, false
}

// NextMatchForMatchup retorna a primeira partida relevante entre a e b.
func (c *Cache) NextMatchForMatchup(a, b team.Team) (match.Scheduled, bool) {
	now := c.clk.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.matches {
		if m.IsMatchup(a, b) && c.relevant(m, now, c.buffer) {
			return m, true
		}
	}
	return match.Scheduled{}, false
}

// Upcoming lista até limit partidas que começaram há menos de grace.
func (c *Cache) Upcoming(limit int, grace time.Duration) []match.Scheduled {
	now := c.clk.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []match.Scheduled
	for _, m := range c.matches {
		if len(out) == limit {
			break
		}
		if c.relevant(m, now, grace) {
			out = append(out, m)
		}
	}
	return out
}
