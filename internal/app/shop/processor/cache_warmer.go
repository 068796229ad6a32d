package processor

import (
	"context"
	"log"

	"junomarket/internal/app/shop/service"
	"junomarket/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CacheWarmer периодически прогревает горячие ключи кеша каталога,
// чтобы после инвалидации первые запросы не упирались в MongoDB
type CacheWarmer struct {
	cron       *cron.Cron
	productSvc service.ProductServiceInterface
}

// NewCacheWarmer создает новый прогреватель кеша
func NewCacheWarmer(productSvc service.ProductServiceInterface) *CacheWarmer {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &CacheWarmer{
		cron:       c,
		productSvc: productSvc,
	}
}

// Start запускает прогрев по расписанию и сразу выполняет первый проход
func (w *CacheWarmer) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Запуск прогрева кеша")

	_, err := w.cron.AddFunc(schedule, func() {
		w.warm(ctx)
	})
	if err != nil {
		return err
	}

	w.cron.Start()

	w.warm(ctx)

	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего прохода
func (w *CacheWarmer) Stop() {
	logger.Info().Msg("Остановка прогрева кеша")
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// warm выполняет чтения, которые через read-through заполняют кеш
func (w *CacheWarmer) warm(ctx context.Context) {
	if _, err := w.productSvc.GetLatestProducts(ctx); err != nil {
		logger.Warn().Err(err).Msg("Прогрев latest-products не удался")
	}

	if _, err := w.productSvc.GetAllProducts(ctx); err != nil {
		logger.Warn().Err(err).Msg("Прогрев all-products не удался")
	}

	if _, err := w.productSvc.GetCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Прогрев categories не удался")
	}

	logger.Debug().Msg("Проход прогрева кеша завершен")
}
