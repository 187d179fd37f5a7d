package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"inventory_backend/models"
)

// Поддерживаемые форматы отчетов
const (
	ReportFormatCSV   = "csv"
	ReportFormatExcel = "xlsx"
	ReportFormatPDF   = "pdf"
)

// ReportFile сгенерированный файл отчета
type ReportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ReportService генерирует выгрузки инвентаря в CSV, Excel и PDF
type ReportService struct {
	DB *gorm.DB
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

var inventoryReportHeaders = []string{
	"ID", "Название", "Категория", "Статус", "Серийный номер",
	"Подразделение", "Последнее обслуживание", "Следующее обслуживание", "Состояние",
}

// inventoryReportRows собирает строки отчета из снимка инвентаря
func (rs *ReportService) inventoryReportRows(ctx context.Context) ([][]string, error) {
	var equipment []models.Equipment
	if err := rs.DB.WithContext(ctx).Order("id").Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("ошибка при выборке оборудования для отчета: %w", err)
	}

	if err := normalizeAll(equipment); err != nil {
		return nil, err
	}

	formatDate := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("02.01.2006")
	}

	rows := make([][]string, 0, len(equipment))
	for _, item := range equipment {
		serial := ""
		if item.SerialNumber != nil {
			serial = *item.SerialNumber
		}
		unit := ""
		if item.AssignedUnit != nil {
			unit = *item.AssignedUnit
		}
		rating := ""
		if item.ConditionRating != nil {
			rating = fmt.Sprintf("%d", *item.ConditionRating)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ID),
			item.Name,
			string(item.Category),
			string(item.Status),
			serial,
			unit,
			formatDate(item.LastMaintenance),
			formatDate(item.NextMaintenanceDue),
			rating,
		})
	}

	return rows, nil
}

// GenerateInventoryReport генерирует выгрузку инвентаря в указанном формате
func (rs *ReportService) GenerateInventoryReport(ctx context.Context, format string) (*ReportFile, error) {
	rows, err := rs.inventoryReportRows(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102_150405")
	fileName := fmt.Sprintf("inventory_%s.%s", timestamp, format)

	switch format {
	case ReportFormatCSV:
		data, err := rs.generateCSV(rows)
		if err != nil {
			return nil, err
		}
		return &ReportFile{FileName: fileName, ContentType: "text/csv", Data: data}, nil
	case ReportFormatExcel:
		data, err := rs.generateExcel(rows)
		if err != nil {
			return nil, err
		}
		return &ReportFile{
			FileName:    fileName,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case ReportFormatPDF:
		data, err := rs.generatePDF(rows)
		if err != nil {
			return nil, err
		}
		return &ReportFile{FileName: fileName, ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, &ValidationError{Field: "format", Message: "неподдерживаемый формат: " + format}
	}
}

// generateCSV генерирует CSV выгрузку
func (rs *ReportService) generateCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(inventoryReportHeaders); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// generateExcel генерирует Excel выгрузку
func (rs *ReportService) generateExcel(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Ошибка при закрытии Excel файла: %v", err)
		}
	}()

	sheetName := "Инвентарь"
	f.SetSheetName("Sheet1", sheetName)

	for i, header := range inventoryReportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Добавляем автофильтр
	endCell, _ := excelize.CoordinatesToCellName(len(inventoryReportHeaders), len(rows)+1)
	f.AutoFilter(sheetName, "A1:"+endCell, []excelize.AutoFilterOptions{})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// generatePDF генерирует PDF выгрузку
func (rs *ReportService) generatePDF(rows [][]string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)

	pdf.Cell(60, 10, "Inventory Report")
	pdf.Ln(15)

	pdf.SetFont("Arial", "", 8)

	for _, header := range inventoryReportHeaders {
		pdf.Cell(30, 8, header)
	}
	pdf.Ln(8)

	// Ограничиваем количество строк для PDF
	maxRows := 50
	for i, row := range rows {
		if i >= maxRows {
			pdf.Cell(30, 8, fmt.Sprintf("... и еще %d записей", len(rows)-maxRows))
			break
		}

		for _, value := range row {
			pdf.Cell(30, 8, fmt.Sprintf("%.18s", value))
		}
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
