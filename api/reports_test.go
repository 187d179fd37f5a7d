package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory_backend/models"
	"inventory_backend/services"
	"inventory_backend/testutils"
)

func setupReportsTestAPI(t *testing.T) *gin.Engine {
	t.Helper()

	db := testutils.SetupTestDB(t)

	require.NoError(t, db.Create(&models.Equipment{
		Name:                "Generator",
		Category:            models.CategoryElectronics,
		Status:              models.StatusOperational,
		ClassificationLevel: models.ClassificationUnclassified,
	}).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	reportsAPI := NewReportsAPI(services.NewReportService(db))
	router.GET("/api/reports/inventory", reportsAPI.ExportInventoryReport)

	return router
}

func TestExportInventoryReport_DefaultCSV(t *testing.T) {
	router := setupReportsTestAPI(t)

	w := performRequest(router, "GET", "/api/reports/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Generator")
}

func TestExportInventoryReport_Excel(t *testing.T) {
	router := setupReportsTestAPI(t)

	w := performRequest(router, "GET", "/api/reports/inventory?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
}

func TestExportInventoryReport_UnknownFormat(t *testing.T) {
	router := setupReportsTestAPI(t)

	w := performRequest(router, "GET", "/api/reports/inventory?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
