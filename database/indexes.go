package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// DatabaseIndex представляет индекс базы данных
type DatabaseIndex struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// PerformanceIndexes композитные индексы для частых запросов инвентаря
var PerformanceIndexes = []DatabaseIndex{
	// Фильтрация списка по статусу и категории
	{
		Name:    "idx_equipment_status_category",
		Table:   "equipment",
		Columns: []string{"status", "category"},
	},
	// График обслуживания
	{
		Name:    "idx_equipment_maintenance",
		Table:   "equipment",
		Columns: []string{"next_maintenance_due", "status"},
	},
	// Выборка оборудования подразделения
	{
		Name:    "idx_equipment_unit_category",
		Table:   "equipment",
		Columns: []string{"assigned_unit", "category"},
	},
	// История обслуживания конкретного оборудования
	{
		Name:    "idx_maintenance_equipment_date",
		Table:   "maintenance_log",
		Columns: []string{"equipment_id", "maintenance_date"},
	},
}

// CreatePerformanceIndexes создает индексы для оптимизации производительности
func CreatePerformanceIndexes(db *gorm.DB) error {
	log.Println("Создание индексов производительности...")

	for _, index := range PerformanceIndexes {
		if err := CreateIndex(db, index); err != nil {
			log.Printf("Не удалось создать индекс %s: %v", index.Name, err)
			// Продолжаем создание других индексов даже если один упал
			continue
		}
	}

	log.Println("Создание индексов производительности завершено")
	return nil
}

// CreateIndex создает отдельный B-tree индекс
func CreateIndex(db *gorm.DB, index DatabaseIndex) error {
	uniqueStr := ""
	if index.Unique {
		uniqueStr = "UNIQUE "
	}

	sql := fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		uniqueStr, index.Name, index.Table, strings.Join(index.Columns, ", "),
	)

	return db.Exec(sql).Error
}

// DropIndex удаляет индекс
func DropIndex(db *gorm.DB, indexName string) error {
	sql := fmt.Sprintf("DROP INDEX IF EXISTS %s", indexName)
	return db.Exec(sql).Error
}
