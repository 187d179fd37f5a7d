package testutils

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inventory_backend/models"
)

// SetupTestDB создает тестовую базу данных в памяти.
// Эта функция должна использоваться во всех тестах для обеспечения консистентности.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Не удалось открыть тестовую базу данных: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Equipment{},
		&models.MaintenanceLog{},
	); err != nil {
		t.Fatalf("Не удалось выполнить миграции: %v", err)
	}

	return db
}
