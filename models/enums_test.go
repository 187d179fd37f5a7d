package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEquipmentCategory(t *testing.T) {
	// Канонические значения проходят без изменений
	for _, category := range EquipmentCategories {
		parsed, err := ParseEquipmentCategory(string(category))
		assert.NoError(t, err)
		assert.Equal(t, category, parsed)
	}
}

func TestParseEquipmentCategory_HyphenUnderscoreDrift(t *testing.T) {
	// Вариант с подчеркиванием приводится к каноническому дефисному значению
	parsed, err := ParseEquipmentCategory("protective_gear")
	assert.NoError(t, err)
	assert.Equal(t, CategoryProtectiveGear, parsed)

	parsed, err = ParseEquipmentCategory("protective-gear")
	assert.NoError(t, err)
	assert.Equal(t, CategoryProtectiveGear, parsed)
}

func TestParseEquipmentCategory_Unknown(t *testing.T) {
	_, err := ParseEquipmentCategory("furniture")

	var convErr *ConversionError
	assert.ErrorAs(t, err, &convErr)
	assert.Equal(t, "furniture", convErr.Value)
}

func TestParseEquipmentStatus(t *testing.T) {
	for _, status := range EquipmentStatuses {
		parsed, err := ParseEquipmentStatus(string(status))
		assert.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	// Неизвестный статус никогда не заменяется значением по умолчанию
	_, err := ParseEquipmentStatus("broken")
	var convErr *ConversionError
	assert.ErrorAs(t, err, &convErr)
}

func TestParseClassificationLevel(t *testing.T) {
	for _, level := range ClassificationLevels {
		parsed, err := ParseClassificationLevel(string(level))
		assert.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	_, err := ParseClassificationLevel("top_secret")
	var convErr *ConversionError
	assert.ErrorAs(t, err, &convErr)
}

func TestEquipmentNormalizeEnums(t *testing.T) {
	equipment := Equipment{
		Name:                "Бронежилет",
		Category:            EquipmentCategory("protective_gear"),
		Status:              StatusOperational,
		ClassificationLevel: ClassificationUnclassified,
	}

	assert.NoError(t, equipment.NormalizeEnums())
	assert.Equal(t, CategoryProtectiveGear, equipment.Category)
}

func TestEquipmentNormalizeEnums_InvalidStatus(t *testing.T) {
	equipment := Equipment{
		Name:                "Радиостанция",
		Category:            CategoryCommunications,
		Status:              EquipmentStatus("lost"),
		ClassificationLevel: ClassificationUnclassified,
	}

	err := equipment.NormalizeEnums()
	var convErr *ConversionError
	assert.ErrorAs(t, err, &convErr)
}

func TestEquipmentIsMaintainable(t *testing.T) {
	equipment := Equipment{Status: StatusOperational}
	assert.True(t, equipment.IsMaintainable())

	equipment.Status = StatusMaintenance
	assert.True(t, equipment.IsMaintainable())

	equipment.Status = StatusDamaged
	assert.False(t, equipment.IsMaintainable())

	equipment.Status = StatusDecommissioned
	assert.False(t, equipment.IsMaintainable())
}
