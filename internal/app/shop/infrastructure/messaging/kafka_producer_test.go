package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaProducer(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:9092"}, "shop_events")

	require.NotNil(t, producer)
	require.NotNil(t, producer.writer)
	assert.Equal(t, "shop_events", producer.topic)
	assert.Equal(t, "shop_events", producer.writer.Topic)
}

func TestNewKafkaProducer_BatchTimeoutKeepsMutationsFast(t *testing.T) {
	// Публикация синхронная на пути мутаций: таймаут батча
	// не должен заметно задерживать ответ клиенту
	producer := NewKafkaProducer([]string{"localhost:9092"}, "shop_events")

	assert.LessOrEqual(t, producer.writer.BatchTimeout, 100*time.Millisecond)
}

func TestKafkaProducer_Close(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:9092"}, "shop_events")

	assert.NoError(t, producer.Close())
}
