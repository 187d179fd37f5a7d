package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory_backend/models"
	"inventory_backend/services"
)

// EquipmentAPI представляет API для работы с оборудованием
type EquipmentAPI struct {
	Inventory *services.InventoryService
}

// NewEquipmentAPI создает новый экземпляр EquipmentAPI
func NewEquipmentAPI(inventory *services.InventoryService) *EquipmentAPI {
	return &EquipmentAPI{Inventory: inventory}
}

// CreateEquipment создает новое оборудование
func (api *EquipmentAPI) CreateEquipment(c *gin.Context) {
	var equipment models.Equipment
	if err := c.ShouldBindJSON(&equipment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := api.Inventory.CreateEquipment(c.Request.Context(), &equipment); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Оборудование успешно создано",
		"data":    equipment,
	})
}

// GetEquipmentList возвращает список оборудования с фильтрацией и пагинацией
func (api *EquipmentAPI) GetEquipmentList(c *gin.Context) {
	skip, limit := parsePagination(c)
	filter := services.EquipmentFilter{
		Skip:           skip,
		Limit:          limit,
		Status:         c.Query("status"),
		Category:       c.Query("category"),
		Classification: c.Query("classification_level"),
	}

	page, err := api.Inventory.ListEquipment(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetEquipmentByID возвращает оборудование по ID
func (api *EquipmentAPI) GetEquipmentByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	equipment, err := api.Inventory.GetEquipment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": equipment})
}

// UpdateEquipment частично обновляет оборудование
func (api *EquipmentAPI) UpdateEquipment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var update services.EquipmentUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	equipment, err := api.Inventory.UpdateEquipment(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Оборудование успешно обновлено",
		"data":    equipment,
	})
}

// DeleteEquipment удаляет оборудование вместе с журналом обслуживания
func (api *EquipmentAPI) DeleteEquipment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := api.Inventory.DeleteEquipment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Оборудование успешно удалено"})
}

// SearchEquipment ищет оборудование по названию, категории и серийному номеру
func (api *EquipmentAPI) SearchEquipment(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Параметр q обязателен"})
		return
	}

	results, err := api.Inventory.SearchEquipment(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  results,
		"total": len(results),
	})
}

// assignRequest тело запроса на назначение оборудования
type assignRequest struct {
	AssignedUnit      *string `json:"assigned_unit"`
	AssignedPersonnel *string `json:"assigned_personnel"`
}

// AssignEquipment назначает оборудование подразделению и сотруднику
func (api *EquipmentAPI) AssignEquipment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	equipment, err := api.Inventory.AssignEquipment(c.Request.Context(), id, req.AssignedUnit, req.AssignedPersonnel)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Оборудование успешно назначено",
		"data":    equipment,
	})
}

// GetEquipmentByUnit возвращает оборудование подразделения
func (api *EquipmentAPI) GetEquipmentByUnit(c *gin.Context) {
	unit := c.Param("unit")
	if unit == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Подразделение не указано"})
		return
	}

	skip, limit := parsePagination(c)
	equipment, err := api.Inventory.GetEquipmentByUnit(c.Request.Context(), unit, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  equipment,
		"total": len(equipment),
	})
}

// GetUnits возвращает список подразделений, за которыми числится оборудование
func (api *EquipmentAPI) GetUnits(c *gin.Context) {
	units, err := api.Inventory.GetDistinctUnits(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": units})
}
