package messaging

import (
	"context"
	"fmt"
	"time"

	"junomarket/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const serviceName = "shop-service"

// KafkaProducer отправляет события изменения данных в Kafka
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer создает producer для топика событий магазина.
// BatchTimeout маленький: события публикуются синхронно на пути мутаций,
// и ожидание набора батча задержало бы ответ клиенту
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

// PublishMessage отправляет одно сообщение
// Key - это ID сущности для партиционирования
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	start := time.Now()

	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		metrics.RecordKafkaError(serviceName, p.topic, "produce")
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	metrics.RecordKafkaMessageProduced(serviceName, p.topic, time.Since(start))

	return nil
}

// Close закрывает writer
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
