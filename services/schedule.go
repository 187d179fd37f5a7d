package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"inventory_backend/models"
)

// DueSoonWindowDays размер окна "скоро обслуживание" в днях
const DueSoonWindowDays = 30

// InventoryStats агрегированная статистика инвентаря
type InventoryStats struct {
	TotalEquipment      int64            `json:"total_equipment"`
	OperationalCount    int64            `json:"operational_count"`
	MaintenanceCount    int64            `json:"maintenance_count"`
	DamagedCount        int64            `json:"damaged_count"`
	DecommissionedCount int64            `json:"decommissioned_count"`
	CategoryCounts      map[string]int64 `json:"category_counts"`
	ReadinessPercentage float64          `json:"readiness_percentage"`
}

// dateOnly отбрасывает время, оставляя календарную дату
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeMaintenanceWindows разбивает оборудование на просроченное и
// подлежащее обслуживанию в ближайшие 30 дней, считая от даты today.
// Границы: due < today — просрочено, today <= due <= today+30 — скоро.
// Списанное и поврежденное оборудование не попадает ни в один список,
// как и записи без назначенной даты обслуживания. Оба списка отсортированы
// по возрастанию даты обслуживания, при равенстве дат порядок вставки
// сохраняется.
func ComputeMaintenanceWindows(equipment []models.Equipment, today time.Time) (overdue, dueSoon []models.Equipment) {
	day := dateOnly(today)
	horizon := day.AddDate(0, 0, DueSoonWindowDays)

	overdue = make([]models.Equipment, 0)
	dueSoon = make([]models.Equipment, 0)

	for _, item := range equipment {
		if item.NextMaintenanceDue == nil || !item.IsMaintainable() {
			continue
		}

		due := dateOnly(*item.NextMaintenanceDue)
		switch {
		case due.Before(day):
			overdue = append(overdue, item)
		case !due.After(horizon):
			dueSoon = append(dueSoon, item)
		}
	}

	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].NextMaintenanceDue.Before(*overdue[j].NextMaintenanceDue)
	})
	sort.SliceStable(dueSoon, func(i, j int) bool {
		return dueSoon[i].NextMaintenanceDue.Before(*dueSoon[j].NextMaintenanceDue)
	})

	return overdue, dueSoon
}

// ComputeInventoryStats считает статистику готовности по снимку инвентаря.
// Готовность = operational / (total - decommissioned) * 100, с округлением
// до двух знаков; при пустом знаменателе готовность равна нулю.
func ComputeInventoryStats(equipment []models.Equipment) InventoryStats {
	stats := InventoryStats{
		CategoryCounts: make(map[string]int64),
	}

	for _, item := range equipment {
		stats.TotalEquipment++
		stats.CategoryCounts[string(item.Category)]++

		switch item.Status {
		case models.StatusOperational:
			stats.OperationalCount++
		case models.StatusMaintenance:
			stats.MaintenanceCount++
		case models.StatusDamaged:
			stats.DamagedCount++
		case models.StatusDecommissioned:
			stats.DecommissionedCount++
		}
	}

	active := stats.TotalEquipment - stats.DecommissionedCount
	if active > 0 {
		readiness := decimal.NewFromInt(stats.OperationalCount).
			Div(decimal.NewFromInt(active)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
		stats.ReadinessPercentage, _ = readiness.Float64()
	}

	return stats
}
