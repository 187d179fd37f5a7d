package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"inventory_backend/models"
)

// MaintenanceScheduleResponse график обслуживания: просроченное
// оборудование строго перед предстоящим
type MaintenanceScheduleResponse struct {
	Data  []models.Equipment `json:"data"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Pages int                `json:"pages"`
}

// MaintenanceService отвечает за график обслуживания, статистику
// инвентаря и периодические проверки просроченного обслуживания
type MaintenanceService struct {
	DB            *gorm.DB
	Cache         *CacheService
	Notifications *NotificationService

	cron   *cron.Cron
	logger *log.Logger

	// Источник текущей даты, подменяется в тестах
	Now func() time.Time
}

// NewMaintenanceService создает новый экземпляр MaintenanceService
func NewMaintenanceService(db *gorm.DB, cache *CacheService, notifications *NotificationService, logger *log.Logger) *MaintenanceService {
	if logger == nil {
		logger = log.Default()
	}
	return &MaintenanceService{
		DB:            db,
		Cache:         cache,
		Notifications: notifications,
		cron:          cron.New(cron.WithSeconds()),
		logger:        logger,
		Now:           time.Now,
	}
}

// loadMaintenanceCandidates выбирает оборудование, участвующее в графике
// обслуживания: с назначенной датой и в статусе operational/maintenance.
// Порядок по id сохраняет стабильность при равных датах.
func (ms *MaintenanceService) loadMaintenanceCandidates(ctx context.Context) ([]models.Equipment, error) {
	var equipment []models.Equipment
	if err := ms.DB.WithContext(ctx).
		Where("next_maintenance_due IS NOT NULL AND status IN ?",
			[]models.EquipmentStatus{models.StatusOperational, models.StatusMaintenance}).
		Order("id").
		Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("ошибка при выборке оборудования для графика обслуживания: %w", err)
	}

	if err := normalizeAll(equipment); err != nil {
		return nil, err
	}

	return equipment, nil
}

// GetMaintenanceSchedule возвращает график обслуживания через кэш:
// сначала просроченное оборудование, затем предстоящее в 30-дневном окне
func (ms *MaintenanceService) GetMaintenanceSchedule(ctx context.Context) (*MaintenanceScheduleResponse, error) {
	key := BuildCacheKey(CacheNamespaceMaintenance, "/maintenance/schedule", nil)

	var cached MaintenanceScheduleResponse
	if ms.Cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	candidates, err := ms.loadMaintenanceCandidates(ctx)
	if err != nil {
		return nil, err
	}

	overdue, dueSoon := ComputeMaintenanceWindows(candidates, ms.Now())
	combined := append(overdue, dueSoon...)

	response := &MaintenanceScheduleResponse{
		Data:  combined,
		Total: len(combined),
		Page:  1,
		Pages: 1,
	}

	ms.Cache.SetJSON(ctx, key, response, CacheTTLMaintenanceSchedule)
	return response, nil
}

// GetInventoryStatistics возвращает статистику готовности через кэш.
// Агрегат дорогой, поэтому TTL длинный; записи инвалидируют его явно.
func (ms *MaintenanceService) GetInventoryStatistics(ctx context.Context) (*InventoryStats, error) {
	key := BuildCacheKey(CacheNamespaceStatistics, "/statistics", nil)

	var cached InventoryStats
	if ms.Cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	var equipment []models.Equipment
	if err := ms.DB.WithContext(ctx).Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("ошибка при выборке оборудования для статистики: %w", err)
	}

	if err := normalizeAll(equipment); err != nil {
		return nil, err
	}

	stats := ComputeInventoryStats(equipment)

	ms.Cache.SetJSON(ctx, key, &stats, CacheTTLStatistics)
	return &stats, nil
}

// CheckOverdueMaintenance находит просроченное оборудование и отправляет
// уведомления. Вызывается планировщиком раз в сутки.
func (ms *MaintenanceService) CheckOverdueMaintenance(ctx context.Context) error {
	candidates, err := ms.loadMaintenanceCandidates(ctx)
	if err != nil {
		return err
	}

	overdue, _ := ComputeMaintenanceWindows(candidates, ms.Now())
	if len(overdue) == 0 {
		return nil
	}

	ms.logger.Printf("Обнаружено просроченное обслуживание: %d единиц оборудования", len(overdue))

	if ms.Notifications != nil {
		ms.Notifications.SendOverdueMaintenanceAlert(overdue)
	}

	return nil
}

// StartScheduler запускает ежедневную проверку просроченного обслуживания
func (ms *MaintenanceService) StartScheduler() error {
	_, err := ms.cron.AddFunc("0 0 8 * * *", func() {
		if err := ms.CheckOverdueMaintenance(context.Background()); err != nil {
			ms.logger.Printf("Ошибка при проверке просроченного обслуживания: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("не удалось добавить задачу планировщика: %w", err)
	}

	ms.cron.Start()
	ms.logger.Println("Планировщик проверок обслуживания запущен")
	return nil
}

// StopScheduler останавливает планировщик
func (ms *MaintenanceService) StopScheduler() {
	ms.cron.Stop()
}
