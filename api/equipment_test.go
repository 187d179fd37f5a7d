package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"inventory_backend/models"
	"inventory_backend/services"
	"inventory_backend/testutils"
)

func setupEquipmentTestAPI(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()

	db := testutils.SetupTestDB(t)
	cache, _ := testutils.SetupTestCache(t)

	inventory := services.NewInventoryService(db, cache, nil)
	maintenance := services.NewMaintenanceService(db, cache, nil, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	equipmentAPI := NewEquipmentAPI(inventory)
	maintenanceAPI := NewMaintenanceAPI(inventory, maintenance)
	statisticsAPI := NewStatisticsAPI(maintenance)

	api := router.Group("/api")
	{
		api.GET("/equipment", equipmentAPI.GetEquipmentList)
		api.POST("/equipment", equipmentAPI.CreateEquipment)
		api.GET("/equipment/search", equipmentAPI.SearchEquipment)
		api.GET("/equipment/units", equipmentAPI.GetUnits)
		api.GET("/equipment/unit/:unit", equipmentAPI.GetEquipmentByUnit)
		api.GET("/equipment/:id", equipmentAPI.GetEquipmentByID)
		api.PUT("/equipment/:id", equipmentAPI.UpdateEquipment)
		api.DELETE("/equipment/:id", equipmentAPI.DeleteEquipment)
		api.POST("/equipment/:id/assign", equipmentAPI.AssignEquipment)
		api.POST("/equipment/:id/maintenance", maintenanceAPI.CreateMaintenanceLog)
		api.GET("/equipment/:id/maintenance", maintenanceAPI.GetMaintenanceLogs)
		api.GET("/maintenance/schedule", maintenanceAPI.GetMaintenanceSchedule)
		api.GET("/statistics", statisticsAPI.GetInventoryStatistics)
	}

	return db, router
}

func mustParseDate(value string) (t time.Time) {
	t, _ = time.Parse("2006-01-02", value)
	return t
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateEquipmentEndpoint(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	w := performRequest(router, "POST", "/api/equipment", gin.H{
		"name":     "АК-74",
		"category": "weapons",
		"status":   "operational",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Data models.Equipment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotZero(t, response.Data.ID)
	assert.Equal(t, "АК-74", response.Data.Name)
	assert.Equal(t, models.ClassificationUnclassified, response.Data.ClassificationLevel)
}

func TestCreateEquipmentEndpoint_ValidationError(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	w := performRequest(router, "POST", "/api/equipment", gin.H{
		"name":     "Стол",
		"category": "furniture",
		"status":   "operational",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateEquipmentEndpoint_DuplicateSerial(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	body := gin.H{
		"name":          "Рация",
		"category":      "communications",
		"status":        "operational",
		"serial_number": "SN-DUP",
	}

	w := performRequest(router, "POST", "/api/equipment", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, "POST", "/api/equipment", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetEquipmentEndpoint_NotFound(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	w := performRequest(router, "GET", "/api/equipment/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEquipmentEndpoint_BadID(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	w := performRequest(router, "GET", "/api/equipment/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEquipmentListEndpoint(t *testing.T) {
	db, router := setupEquipmentTestAPI(t)

	for i := 1; i <= 3; i++ {
		serial := fmt.Sprintf("SN-%d", i)
		require.NoError(t, db.Create(&models.Equipment{
			Name:                fmt.Sprintf("Оборудование %d", i),
			Category:            models.CategoryElectronics,
			Status:              models.StatusOperational,
			ClassificationLevel: models.ClassificationUnclassified,
			SerialNumber:        &serial,
		}).Error)
	}

	w := performRequest(router, "GET", "/api/equipment?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page services.EquipmentPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.PageSize)
}

func TestUpdateEquipmentEndpoint(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	w := performRequest(router, "POST", "/api/equipment", gin.H{
		"name":     "Генератор",
		"category": "electronics",
		"status":   "operational",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Equipment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = performRequest(router, "PUT", fmt.Sprintf("/api/equipment/%d", created.Data.ID), gin.H{
		"status": "maintenance",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Data models.Equipment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.StatusMaintenance, updated.Data.Status)
	// Непереданные поля не изменились
	assert.Equal(t, "Генератор", updated.Data.Name)
}

func TestDeleteEquipmentEndpoint(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	w := performRequest(router, "POST", "/api/equipment", gin.H{
		"name":     "Палатка",
		"category": "protective-gear",
		"status":   "operational",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Equipment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = performRequest(router, "DELETE", fmt.Sprintf("/api/equipment/%d", created.Data.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "GET", fmt.Sprintf("/api/equipment/%d", created.Data.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchEquipmentEndpoint(t *testing.T) {
	db, router := setupEquipmentTestAPI(t)

	require.NoError(t, db.Create(&models.Equipment{
		Name:                "Generator Unit",
		Category:            models.CategoryElectronics,
		Status:              models.StatusOperational,
		ClassificationLevel: models.ClassificationUnclassified,
	}).Error)

	w := performRequest(router, "GET", "/api/equipment/search?q=generator", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data  []models.Equipment `json:"data"`
		Total int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Total)

	// Без параметра q — ошибка запроса
	w = performRequest(router, "GET", "/api/equipment/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignEquipmentEndpoint(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	w := performRequest(router, "POST", "/api/equipment", gin.H{
		"name":     "Ноутбук",
		"category": "electronics",
		"status":   "operational",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Equipment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = performRequest(router, "POST", fmt.Sprintf("/api/equipment/%d/assign", created.Data.ID), gin.H{
		"assigned_unit":      "Alpha",
		"assigned_personnel": "Иванов И.И.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Оборудование видно в представлении подразделения
	w = performRequest(router, "GET", "/api/equipment/unit/Alpha", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var unitResponse struct {
		Data  []models.Equipment `json:"data"`
		Total int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unitResponse))
	assert.Equal(t, 1, unitResponse.Total)

	// И в списке подразделений
	w = performRequest(router, "GET", "/api/equipment/units", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var unitsResponse struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unitsResponse))
	assert.Equal(t, []string{"Alpha"}, unitsResponse.Data)
}

func TestMaintenanceLogEndpoints(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	w := performRequest(router, "POST", "/api/equipment", gin.H{
		"name":     "БТР-80",
		"category": "vehicles",
		"status":   "operational",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Equipment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = performRequest(router, "POST", fmt.Sprintf("/api/equipment/%d/maintenance", created.Data.ID), gin.H{
		"maintenance_date": "2025-06-01T00:00:00Z",
		"maintenance_type": "плановое",
		"description":      "замена масла",
		"performed_by":     "Петров П.П.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Даты обслуживания сдвинулись
	w = performRequest(router, "GET", fmt.Sprintf("/api/equipment/%d", created.Data.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Data models.Equipment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.NotNil(t, detail.Data.NextMaintenanceDue)

	// Журнал доступен
	w = performRequest(router, "GET", fmt.Sprintf("/api/equipment/%d/maintenance", created.Data.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var logs struct {
		Data  []models.MaintenanceLog `json:"data"`
		Total int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Equal(t, 1, logs.Total)
}

func TestMaintenanceLogEndpoint_MissingEquipment(t *testing.T) {
	_, router := setupEquipmentTestAPI(t)

	w := performRequest(router, "POST", "/api/equipment/9999/maintenance", gin.H{
		"maintenance_date": "2025-06-01T00:00:00Z",
		"maintenance_type": "плановое",
		"description":      "осмотр",
		"performed_by":     "Петров П.П.",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	db, router := setupEquipmentTestAPI(t)

	require.NoError(t, db.Create(&models.Equipment{
		Name:                "А",
		Category:            models.CategoryWeapons,
		Status:              models.StatusOperational,
		ClassificationLevel: models.ClassificationUnclassified,
	}).Error)
	require.NoError(t, db.Create(&models.Equipment{
		Name:                "Б",
		Category:            models.CategoryWeapons,
		Status:              models.StatusDamaged,
		ClassificationLevel: models.ClassificationUnclassified,
	}).Error)

	w := performRequest(router, "GET", "/api/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats services.InventoryStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(2), stats.TotalEquipment)
	assert.Equal(t, 50.0, stats.ReadinessPercentage)
}

func TestMaintenanceScheduleEndpoint(t *testing.T) {
	db, router := setupEquipmentTestAPI(t)

	// Заведомо просроченная дата
	due := mustParseDate("2020-01-01")
	require.NoError(t, db.Create(&models.Equipment{
		Name:                "Просроченное",
		Category:            models.CategoryElectronics,
		Status:              models.StatusOperational,
		ClassificationLevel: models.ClassificationUnclassified,
		NextMaintenanceDue:  &due,
	}).Error)

	w := performRequest(router, "GET", "/api/maintenance/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var schedule services.MaintenanceScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schedule))
	assert.Equal(t, 1, schedule.Total)
	assert.Equal(t, "Просроченное", schedule.Data[0].Name)
}
