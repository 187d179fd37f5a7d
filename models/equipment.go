package models

import (
	"time"
)

// Equipment представляет единицу оборудования в инвентаре
type Equipment struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Основные характеристики
	Name     string              `json:"name" gorm:"not null;index;type:varchar(200)"`
	Category EquipmentCategory   `json:"category" gorm:"not null;index;type:varchar(50)"`
	Status   EquipmentStatus     `json:"status" gorm:"not null;index;type:varchar(20)"`
	Location *string             `json:"location" gorm:"index;type:varchar(200)"`

	// Серийный номер уникален по всему инвентарю
	SerialNumber *string `json:"serial_number" gorm:"uniqueIndex;type:varchar(100)"`

	// Секретность и назначение
	ClassificationLevel ClassificationLevel `json:"classification_level" gorm:"default:'unclassified';type:varchar(20)"`
	AssignedUnit        *string             `json:"assigned_unit" gorm:"index;type:varchar(100)"`
	AssignedPersonnel   *string             `json:"assigned_personnel" gorm:"type:varchar(200)"`

	// Даты жизненного цикла
	PurchaseDate       *time.Time `json:"purchase_date" gorm:"type:date"`
	LastMaintenance    *time.Time `json:"last_maintenance" gorm:"type:date"`
	NextMaintenanceDue *time.Time `json:"next_maintenance_due" gorm:"index;type:date"`

	// Состояние от 1 до 5
	ConditionRating *int `json:"condition_rating"`

	// Связи
	MaintenanceLogs []MaintenanceLog `json:"maintenance_logs,omitempty" gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE"`
}

// TableName задает имя таблицы для модели Equipment
func (Equipment) TableName() string {
	return "equipment"
}

// NormalizeEnums приводит категориальные поля к каноническому виду.
// Значение, не соответствующее ни одному члену перечисления, означает
// расхождение данных и возвращается как ConversionError.
func (e *Equipment) NormalizeEnums() error {
	category, err := e.Category.Normalize()
	if err != nil {
		return err
	}
	e.Category = category

	status, err := e.Status.Normalize()
	if err != nil {
		return err
	}
	e.Status = status

	if e.ClassificationLevel != "" {
		level, err := e.ClassificationLevel.Normalize()
		if err != nil {
			return err
		}
		e.ClassificationLevel = level
	}

	return nil
}

// IsMaintainable проверяет, учитывается ли оборудование в графике
// обслуживания (списанное и поврежденное не учитывается)
func (e *Equipment) IsMaintainable() bool {
	return e.Status == StatusOperational || e.Status == StatusMaintenance
}

// IsOverdue проверяет, просрочено ли обслуживание на дату today
func (e *Equipment) IsOverdue(today time.Time) bool {
	if e.NextMaintenanceDue == nil || !e.IsMaintainable() {
		return false
	}
	return e.NextMaintenanceDue.Before(today)
}

// MaintenanceLog представляет запись журнала обслуживания оборудования
type MaintenanceLog struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`

	EquipmentID uint       `json:"equipment_id" gorm:"not null;index"`
	Equipment   *Equipment `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE"`

	MaintenanceDate time.Time `json:"maintenance_date" gorm:"not null;type:date"`
	MaintenanceType string    `json:"maintenance_type" gorm:"not null;type:varchar(100)"`
	Description     string    `json:"description" gorm:"not null;type:text"`
	PerformedBy     string    `json:"performed_by" gorm:"not null;type:varchar(200)"`
	Notes           *string   `json:"notes" gorm:"type:text"`
}

// TableName задает имя таблицы для модели MaintenanceLog
func (MaintenanceLog) TableName() string {
	return "maintenance_log"
}
