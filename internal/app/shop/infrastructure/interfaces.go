package infrastructure

import (
	"context"
	"io"

	"junomarket/internal/app/shop/entity"
)

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// ImageStore интерфейс внешнего сервиса хранения изображений
// Принимает содержимое файла, возвращает URL и public_id;
// удаление по public_id
type ImageStore interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*entity.Photo, error)
	Destroy(ctx context.Context, publicID string) error
}
