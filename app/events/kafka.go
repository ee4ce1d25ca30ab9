package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/sportcore/catalog/app/config"
	"go.uber.org/zap"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

// NewPublisher returns a Kafka-backed publisher, or a NopPublisher when no
// brokers are configured.
func NewPublisher(cfg config.Kafka, logger *zap.Logger) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		logger.Info("kafka brokers not configured, catalog events disabled")
		return NopPublisher{}, nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = cfg.ClientID
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized", zap.Strings("brokers", cfg.Brokers))
	return NewKafkaPublisher(producer, logger), nil
}

func NewKafkaPublisher(producer sarama.SyncProducer, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger}
}

// Publish writes the event to the topic named by its type, keyed by the
// entity id so that changes to one entity stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", event.Type, err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     event.Type,
		Key:       sarama.StringEncoder(strconv.FormatUint(uint64(event.ID), 10)),
		Value:     sarama.ByteEncoder(data),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("sending %s event: %w", event.Type, err)
	}

	p.logger.Debug("published catalog event",
		zap.String("topic", event.Type),
		zap.Uint("id", event.ID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
