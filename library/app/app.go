package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/library/config"
	"github.com/libertine-io/library-backend/library/internal/handler"
	"github.com/libertine-io/library-backend/library/internal/repository"
	"github.com/libertine-io/library-backend/library/internal/server"
	"github.com/libertine-io/library-backend/library/internal/service"
	"github.com/libertine-io/library-backend/library/migrations"
	"github.com/libertine-io/library-backend/pkg/kafka"
	"github.com/libertine-io/library-backend/pkg/logger"
	"github.com/libertine-io/library-backend/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "library")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %w", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo init %w", err)
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("kafka.NewProducer %w", err)
	}

	borrowingSvc := service.NewBorrowingService(repo, service.NewEnqueuer(producer), service.Policy{
		MaxBooksPerUser:  cfg.Policy.MaxBooksPerUser,
		DailyPenaltyRate: cfg.Policy.DailyPenaltyRate,
		MaxBorrowDays:    cfg.Policy.MaxBorrowDays,
	}, log)
	catalogSvc := service.NewCatalogService(repo, log)
	h := handler.New(borrowingSvc, catalogSvc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	if err = producer.Close(); err != nil {
		log.Error("producer.Close", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
