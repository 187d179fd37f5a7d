package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory_backend/services"
)

// StatisticsAPI представляет API для сводной статистики инвентаря
type StatisticsAPI struct {
	Maintenance *services.MaintenanceService
}

// NewStatisticsAPI создает новый экземпляр StatisticsAPI
func NewStatisticsAPI(maintenance *services.MaintenanceService) *StatisticsAPI {
	return &StatisticsAPI{Maintenance: maintenance}
}

// GetInventoryStatistics возвращает сводную статистику: количество по
// статусам и категориям и процент готовности
func (api *StatisticsAPI) GetInventoryStatistics(c *gin.Context) {
	stats, err := api.Maintenance.GetInventoryStatistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
