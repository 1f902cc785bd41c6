package handler

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/libertine-io/library-backend/pkg/kafka"
)

type borrowConfirmed func(ctx context.Context, event kafka.BorrowConfirmed) error

type Consumer struct {
	confirmHandler borrowConfirmed
	log            *zap.Logger
	ready          chan bool
}

func NewConsumer(confirm borrowConfirmed, log *zap.Logger) *Consumer {
	return &Consumer{
		confirmHandler: confirm,
		log:            log.Named("consumer"),
		ready:          make(chan bool),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	// Mark the consumer as ready
	close(consumer.ready)
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var event kafka.BorrowConfirmed
			if err := json.Unmarshal(message.Value, &event); err != nil {
				consumer.log.Error("unmarshal confirmation", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			// A failed message is skipped without marking. It is redelivered
			// only if the session ends before a later offset is committed;
			// marking a later message commits past it.
			if err := consumer.confirmHandler(context.Background(), event); err != nil {
				consumer.log.Error("consumer.confirmHandler", zap.Error(err))
				continue
			}

			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
