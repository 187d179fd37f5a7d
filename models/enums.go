package models

import (
	"fmt"
	"strings"
)

// EquipmentCategory категория оборудования
type EquipmentCategory string

// EquipmentStatus статус оборудования
type EquipmentStatus string

// ClassificationLevel уровень секретности оборудования
type ClassificationLevel string

const (
	CategoryWeapons        EquipmentCategory = "weapons"
	CategoryVehicles       EquipmentCategory = "vehicles"
	CategoryCommunications EquipmentCategory = "communications"
	CategoryProtectiveGear EquipmentCategory = "protective-gear"
	CategoryMedical        EquipmentCategory = "medical"
	CategoryElectronics    EquipmentCategory = "electronics"

	StatusOperational    EquipmentStatus = "operational"
	StatusMaintenance    EquipmentStatus = "maintenance"
	StatusDamaged        EquipmentStatus = "damaged"
	StatusDecommissioned EquipmentStatus = "decommissioned"

	ClassificationUnclassified ClassificationLevel = "unclassified"
	ClassificationConfidential ClassificationLevel = "confidential"
	ClassificationSecret       ClassificationLevel = "secret"
)

// EquipmentCategories все допустимые категории оборудования
var EquipmentCategories = []EquipmentCategory{
	CategoryWeapons,
	CategoryVehicles,
	CategoryCommunications,
	CategoryProtectiveGear,
	CategoryMedical,
	CategoryElectronics,
}

// EquipmentStatuses все допустимые статусы оборудования
var EquipmentStatuses = []EquipmentStatus{
	StatusOperational,
	StatusMaintenance,
	StatusDamaged,
	StatusDecommissioned,
}

// ClassificationLevels все допустимые уровни секретности
var ClassificationLevels = []ClassificationLevel{
	ClassificationUnclassified,
	ClassificationConfidential,
	ClassificationSecret,
}

// ConversionError возникает, когда значение из БД не соответствует
// ни одному известному члену перечисления. Такое значение означает
// повреждение данных или расхождение схем и не должно молча заменяться
// на пустое.
type ConversionError struct {
	Value  string
	Target string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("не удалось преобразовать значение %q в перечисление %s", e.Value, e.Target)
}

// normalizeEnum сопоставляет сырое значение с каноническим значением
// перечисления. Сначала точное совпадение по значению, затем по имени
// с заменой дефисов на подчеркивания (в БД встречаются оба написания,
// например "protective-gear" и "protective_gear").
func normalizeEnum(raw string, canonical []string) (string, bool) {
	for _, v := range canonical {
		if raw == v {
			return v, true
		}
	}

	underscored := strings.ReplaceAll(raw, "-", "_")
	for _, v := range canonical {
		if underscored == strings.ReplaceAll(v, "-", "_") {
			return v, true
		}
	}

	return "", false
}

// ParseEquipmentCategory преобразует сырое значение в категорию оборудования
func ParseEquipmentCategory(raw string) (EquipmentCategory, error) {
	canonical := make([]string, len(EquipmentCategories))
	for i, c := range EquipmentCategories {
		canonical[i] = string(c)
	}

	if v, ok := normalizeEnum(raw, canonical); ok {
		return EquipmentCategory(v), nil
	}
	return "", &ConversionError{Value: raw, Target: "EquipmentCategory"}
}

// ParseEquipmentStatus преобразует сырое значение в статус оборудования
func ParseEquipmentStatus(raw string) (EquipmentStatus, error) {
	canonical := make([]string, len(EquipmentStatuses))
	for i, s := range EquipmentStatuses {
		canonical[i] = string(s)
	}

	if v, ok := normalizeEnum(raw, canonical); ok {
		return EquipmentStatus(v), nil
	}
	return "", &ConversionError{Value: raw, Target: "EquipmentStatus"}
}

// ParseClassificationLevel преобразует сырое значение в уровень секретности
func ParseClassificationLevel(raw string) (ClassificationLevel, error) {
	canonical := make([]string, len(ClassificationLevels))
	for i, l := range ClassificationLevels {
		canonical[i] = string(l)
	}

	if v, ok := normalizeEnum(raw, canonical); ok {
		return ClassificationLevel(v), nil
	}
	return "", &ConversionError{Value: raw, Target: "ClassificationLevel"}
}

// Normalize приводит категорию к каноническому виду
func (c EquipmentCategory) Normalize() (EquipmentCategory, error) {
	return ParseEquipmentCategory(string(c))
}

// Normalize приводит статус к каноническому виду
func (s EquipmentStatus) Normalize() (EquipmentStatus, error) {
	return ParseEquipmentStatus(string(s))
}

// Normalize приводит уровень секретности к каноническому виду
func (l ClassificationLevel) Normalize() (ClassificationLevel, error) {
	return ParseClassificationLevel(string(l))
}
