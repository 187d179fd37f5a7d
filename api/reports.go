package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory_backend/services"
)

// ReportsAPI представляет API для экспорта отчетов по инвентарю
type ReportsAPI struct {
	Reports *services.ReportService
}

// NewReportsAPI создает новый экземпляр ReportsAPI
func NewReportsAPI(reports *services.ReportService) *ReportsAPI {
	return &ReportsAPI{Reports: reports}
}

// ExportInventoryReport выгружает отчет по инвентарю в формате csv, xlsx или pdf
func (api *ReportsAPI) ExportInventoryReport(c *gin.Context) {
	format := c.DefaultQuery("format", services.ReportFormatCSV)

	file, err := api.Reports.GenerateInventoryReport(c.Request.Context(), format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.FileName)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
