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

	"github.com/libertine-io/library-backend/notifier/config"
	"github.com/libertine-io/library-backend/notifier/internal/handler"
	"github.com/libertine-io/library-backend/notifier/internal/mail"
	"github.com/libertine-io/library-backend/notifier/internal/repository"
	"github.com/libertine-io/library-backend/notifier/internal/server"
	"github.com/libertine-io/library-backend/notifier/internal/service"
	"github.com/libertine-io/library-backend/pkg/kafka"
	"github.com/libertine-io/library-backend/pkg/logger"
	"github.com/libertine-io/library-backend/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "notifier")
	pool, err := postgres.NewPgxPool(context.Background(), &cfg.Database)
	if err != nil {
		return fmt.Errorf("db init %w", err)
	}
	repo, err := repository.NewRepository(pool, log)
	if err != nil {
		return fmt.Errorf("repo init %w", err)
	}
	svc := service.NewService(repo, mail.NewSender(cfg.Mail), cfg.Reminder.DaysAhead, log)

	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.NotifierConsumerGroup)
	if err != nil {
		return fmt.Errorf("kafka.NewConsumer %w", err)
	}
	consumeCtx, stopConsume := context.WithCancel(context.Background())
	go kafka.Consume(consumeCtx, consumer, handler.NewConsumer(svc.BorrowConfirmed, log), log, kafka.BorrowingsTopic)

	h := handler.New(svc, log)
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
	stopConsume()
	if err = consumer.Close(); err != nil {
		log.Error("consumer.Close", zap.Error(err))
	}
	pool.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
