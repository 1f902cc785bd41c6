package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type Config struct {
	Addrs []string `yaml:"addrs" envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
}

const (
	// BorrowingsTopic carries borrow confirmations published after a
	// successful borrow commit.
	BorrowingsTopic = "borrowings.confirmed"

	NotifierConsumerGroup = "notifier"
)

// BorrowConfirmed is the wire contract on BorrowingsTopic.
type BorrowConfirmed struct {
	MessageID string  `json:"messageId"`
	UserName  string  `json:"username"`
	RecordIDs []int64 `json:"recordIds"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume runs the consumer-group session loop until ctx is done.
// Consume must be re-entered after every rebalance, hence the loop.
func Consume(ctx context.Context, cg sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, log *zap.Logger, topics ...string) {
	for {
		if err := cg.Consume(ctx, topics, handler); err != nil {
			log.Error("consumer group session", zap.Error(err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}
