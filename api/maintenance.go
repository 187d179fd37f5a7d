package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory_backend/models"
	"inventory_backend/services"
)

// MaintenanceAPI представляет API для графика и журнала обслуживания
type MaintenanceAPI struct {
	Inventory   *services.InventoryService
	Maintenance *services.MaintenanceService
}

// NewMaintenanceAPI создает новый экземпляр MaintenanceAPI
func NewMaintenanceAPI(inventory *services.InventoryService, maintenance *services.MaintenanceService) *MaintenanceAPI {
	return &MaintenanceAPI{Inventory: inventory, Maintenance: maintenance}
}

// GetMaintenanceSchedule возвращает график обслуживания: просроченное
// оборудование и оборудование со сроком в ближайшие 30 дней
func (api *MaintenanceAPI) GetMaintenanceSchedule(c *gin.Context) {
	schedule, err := api.Maintenance.GetMaintenanceSchedule(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// CreateMaintenanceLog добавляет запись в журнал обслуживания и переносит
// срок следующего обслуживания
func (api *MaintenanceAPI) CreateMaintenanceLog(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var entry models.MaintenanceLog
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}
	entry.EquipmentID = id

	if err := api.Inventory.CreateMaintenanceLog(c.Request.Context(), &entry); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Запись об обслуживании добавлена",
		"data":    entry,
	})
}

// GetMaintenanceLogs возвращает журнал обслуживания оборудования
func (api *MaintenanceAPI) GetMaintenanceLogs(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	logs, err := api.Inventory.GetMaintenanceLogs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  logs,
		"total": len(logs),
	})
}
