package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/bot"
	"github.com/radieske/esports-bet-bot/internal/feed/gamepedia"
	"github.com/radieske/esports-bet-bot/internal/gateway/telegram"
	"github.com/radieske/esports-bet-bot/internal/httpapi"
	"github.com/radieske/esports-bet-bot/internal/match"
	"github.com/radieske/esports-bet-bot/internal/producer"
	"github.com/radieske/esports-bet-bot/internal/resolution"
	"github.com/radieske/esports-bet-bot/internal/results"
	"github.com/radieske/esports-bet-bot/internal/schedule"
	"github.com/radieske/esports-bet-bot/internal/scoreboard"
	"github.com/radieske/esports-bet-bot/internal/shared/cache"
	"github.com/radieske/esports-bet-bot/internal/shared/clock"
	"github.com/radieske/esports-bet-bot/internal/shared/config"
	"github.com/radieske/esports-bet-bot/internal/shared/db"
	"github.com/radieske/esports-bet-bot/internal/shared/logger"
	"github.com/radieske/esports-bet-bot/internal/shared/metrics"
	"github.com/radieske/esports-bet-bot/internal/store"
	"github.com/radieske/esports-bet-bot/internal/wager"
	"github.com/radieske/esports-bet-bot/internal/ws"
)

// quanto tempo o último calendário bom fica no Redis
const scheduleMirrorTTL = 7 * 24 * time.Hour

func main() {
	// carrega config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewBot(prometheus.DefaultRegisterer)
	clk := clock.Real{}

	// store dos ledgers
	var pg *sql.DB
	var st store.Store
	switch cfg.LedgerBackend {
	case "postgres":
		pg, err = db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		p := store.NewPostgres(pg, cfg.Location)
		if err := p.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to create schema", zap.Error(err))
		}
		st = p
		log.Info("postgres connected")
	default:
		st = store.NewCSV(cfg.ScoresFile, cfg.BetsFile, cfg.Location, clk)
		log.Info("csv store", zap.String("scores", cfg.ScoresFile), zap.String("bets", cfg.BetsFile))
	}

	// Redis é opcional: sem ele não há mirror do calendário nem fan-out de anúncios
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, continuing without it", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("redis connected")
		}
	}

	writer := store.NewWriter(st, log, m)
	scores := scoreboard.New(writer)
	ledger := wager.NewLedger(writer)
	if err := restore(ctx, st, scores, ledger, log); err != nil {
		log.Fatal("failed to load scoreboard", zap.Error(err))
	}

	writerCtx, stopWriter := context.WithCancel(context.Background())
	writerDone := make(chan struct{})
	go func() {
		writer.Run(writerCtx)
		close(writerDone)
	}()

	feed := gamepedia.New(cfg.ScheduleURL, cfg.ResultsURL, cfg.FeedRequestInterval)
	opts := schedule.Options{Location: cfg.Location, FutureBuffer: cfg.FutureBuffer, Clock: clk}
	if redisClient != nil {
		opts.Mirror = schedule.NewRedisMirror(redisClient, scheduleMirrorTTL)
	}
	sched := schedule.NewCache(feed, opts, log)
	if err := sched.Refresh(ctx); err != nil {
		log.Warn("schedule refresh failed at startup", zap.Error(err))
		m.FeedError("schedule")
		if err := sched.Warm(ctx); err != nil {
			log.Warn("schedule mirror unavailable", zap.Error(err))
		}
	}
	log.Info("schedule loaded", zap.Int("matches", len(sched.All())))

	tracker := results.NewTracker(feed, clk, log)
	if err := tracker.Prime(ctx); err != nil {
		// o próximo Poll tenta de novo antes de liquidar qualquer coisa
		log.Warn("results prime failed", zap.Error(err))
		m.FeedError("results")
	}

	var events bot.EventPublisher
	if cfg.KafkaBrokers != "" {
		kp := producer.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicBetPlaced, cfg.TopicPredictionMade, cfg.TopicMatchSettled)
		defer kp.Close()
		events = kp
		log.Info("kafka writers ready",
			zap.Strings("topics", []string{cfg.TopicBetPlaced, cfg.TopicPredictionMade, cfg.TopicMatchSettled}))
	}

	app := bot.NewApp(bot.Deps{
		Schedule:  sched,
		Ledger:    ledger,
		Scores:    scores,
		Window:    match.Window{Lookback: cfg.ResultLookback, Lead: cfg.ResultLead},
		BetBuffer: cfg.BetBuffer,
		Clock:     clk,
		Events:    events,
		Metrics:   m,
		Log:       log,
	})

	hub := ws.NewHub(func(*http.Request) bool { return true })
	var announcers bot.Announcers
	if redisClient != nil {
		rb := producer.NewRedisBroadcaster(redisClient, cfg.RedisAnnounceChannel)
		ws.StartRedisSubscriber(ctx, redisClient, rb.Channel(), hub, log)
		announcers = append(announcers, rb)
	} else {
		announcers = append(announcers, hub)
	}

	var wg sync.WaitGroup
	if cfg.TelegramToken != "" {
		gw, err := telegram.New(cfg.TelegramToken, cfg.AnnounceChatID, log)
		if err != nil {
			log.Fatal("failed to start telegram gateway", zap.Error(err))
		}
		announcers = append(announcers, gw)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gw.Run(ctx, app); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("telegram gateway stopped", zap.Error(err))
			}
		}()
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN empty, chat gateway disabled")
	}

	poller := &bot.Poller{
		App:       app,
		Schedule:  sched,
		Results:   tracker,
		Announcer: announcers,
		Window: bot.ActiveWindow{
			Days:     cfg.PollDays,
			FromHour: cfg.PollHourFrom,
			ToHour:   cfg.PollHourTo,
			Location: cfg.Location,
		},
		Interval: cfg.PollInterval,
		Clock:    clk,
		Metrics:  m,
		Log:      log,
		OnSettled: func(s resolution.Settlement) {
			log.Info("match settled",
				zap.Stringer("match", s.Match),
				zap.Int("winning_bets", len(s.WinningBets)),
				zap.Int("losing_bets", len(s.LosingBets)),
				zap.Int("right_predictions", len(s.RightPredictions)),
				zap.Int("wrong_predictions", len(s.WrongPredictions)))
		},
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = poller.Run(ctx)
	}()

	// sobe servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if pg != nil {
			if err := pg.PingContext(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	})
	log.Info("metrics/health server starting", zap.String("addr", metricsSrv.Addr))

	api := &httpapi.API{App: app, Hub: hub}
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http api starting", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http api failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	wg.Wait()

	// grava o que ainda estiver pendente antes de sair
	stopWriter()
	<-writerDone
	if err := writer.Flush(shutdownCtx); err != nil {
		log.Error("final flush failed", zap.Error(err))
	}
	log.Info("bye")
}

// restore carrega os ledgers. Um scoreboard ilegível impede o startup;
// um ledger ilegível começa vazio.
func restore(ctx context.Context, st store.Store, scores *scoreboard.Scoreboard, ledger *wager.Ledger, log *zap.Logger) error {
	rows, err := st.LoadScores(ctx)
	if err != nil {
		return err
	}
	scores.Restore(rows)

	snap, err := st.LoadLedger(ctx)
	if err != nil {
		log.Error("failed to load ledger, starting empty", zap.Error(err))
		snap = wager.Snapshot{}
	}
	ledger.Restore(snap)
	log.Info("ledgers restored",
		zap.Int("players", scores.Len()),
		zap.Int("bets", len(snap.Bets)),
		zap.Int("predictions", len(snap.Predictions)))
	return nil
}
