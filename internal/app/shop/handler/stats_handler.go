package handler

import (
	"net/http"

	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/service"
	"junomarket/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StatsHandler обрабатывает запросы админской панели
type StatsHandler struct {
	statsService service.StatsServiceInterface
}

// NewStatsHandler создает новый обработчик статистики
func NewStatsHandler(statsService service.StatsServiceInterface) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetDashboardStats обрабатывает GET /admin/stats (только админ)
func (h *StatsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.statsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка получения статистики")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.StatsResponse{
		Success: true,
		Stats:   stats,
	})
}
