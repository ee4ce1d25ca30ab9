package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/sportcore/catalog/app/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKafkaPublisherPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, ProductCreated, msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "42", string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(value, &got))
		assert.Equal(t, ProductCreated, got["type"])
		assert.Equal(t, float64(42), got["id"])
		assert.Equal(t, "Whey Protein Isolate", got["data"].(map[string]any)["name"])
		return nil
	})

	publisher := NewKafkaPublisher(producer, zap.NewNop())
	err := publisher.Publish(context.Background(), New(ProductCreated, 42, map[string]string{"name": "Whey Protein Isolate"}))
	assert.NoError(t, err)
	assert.NoError(t, publisher.Close())
}

func TestKafkaPublisherPublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	publisher := NewKafkaPublisher(producer, zap.NewNop())
	err := publisher.Publish(context.Background(), New(CategoryDeleted, 7, nil))
	assert.ErrorContains(t, err, "sending category.deleted event")
	assert.NoError(t, publisher.Close())
}

func TestNewPublisherWithoutBrokers(t *testing.T) {
	publisher, err := NewPublisher(config.Kafka{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, publisher)
	assert.NoError(t, publisher.Publish(context.Background(), New(ProductDeleted, 1, nil)))
	assert.NoError(t, publisher.Close())
}
