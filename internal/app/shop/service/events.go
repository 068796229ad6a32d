package service

import (
	"context"
	"encoding/json"
	"time"

	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/infrastructure"
	"junomarket/pkg/logger"
)

// publishEvent отправляет событие изменения данных в Kafka best-effort
// Мутация хранилища уже применена, проблемы с Kafka не критичны.
// Key сообщения - ID сущности для партиционирования
func publishEvent(ctx context.Context, producer infrastructure.MessagePublisher, eventType, entityID, userID string) {
	event := entity.ShopEvent{
		EventType: eventType,
		EntityID:  entityID,
		UserID:    userID,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal event")
		return
	}

	if err := producer.PublishMessage(ctx, entityID, data); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish event")
	}
}
