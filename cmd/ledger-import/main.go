// ledger-import copia o scoreboard e o ledger dos arquivos CSV para o Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/radieske/esports-bet-bot/internal/shared/clock"
	"github.com/radieske/esports-bet-bot/internal/shared/config"
	"github.com/radieske/esports-bet-bot/internal/shared/db"
	"github.com/radieske/esports-bet-bot/internal/shared/logger"
	"github.com/radieske/esports-bet-bot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}

	scoresPath := flag.String("scores", cfg.ScoresFile, "scoreboard CSV")
	betsPath := flag.String("bets", cfg.BetsFile, "bets/predictions CSV")
	dsn := flag.String("dsn", cfg.PostgresDSN, "target Postgres DSN")
	flag.Parse()

	log, err := logger.New("ledger-import", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *scoresPath, *betsPath, *dsn, cfg, log); err != nil {
		log.Fatal("import failed", zap.Error(err))
	}
}

func run(ctx context.Context, scoresPath, betsPath, dsn string, cfg config.Config, log *zap.Logger) error {
	src := store.NewCSV(scoresPath, betsPath, cfg.Location, clock.Real{})
	scores, err := src.LoadScores(ctx)
	if err != nil {
		return fmt.Errorf("read scores: %w", err)
	}
	ledger, err := src.LoadLedger(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	pg, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		return err
	}
	defer pg.Close()

	dst := store.NewPostgres(pg, cfg.Location)
	if err := dst.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := dst.SaveScores(ctx, scores); err != nil {
		return err
	}
	if err := dst.SaveLedger(ctx, ledger); err != nil {
		return err
	}

	log.Info("import done",
		zap.Int("players", len(scores)),
		zap.Int("bets", len(ledger.Bets)),
		zap.Int("predictions", len(ledger.Predictions)))
	return nil
}
