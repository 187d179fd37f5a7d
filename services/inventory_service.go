package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"inventory_backend/models"
)

// DefaultMaintenanceIntervalDays интервал до следующего обслуживания,
// назначаемый после записи в журнал
const DefaultMaintenanceIntervalDays = 180

// InventoryService оркестрирует хранилище и кэш: чтение идет через кэш,
// запись — напрямую в хранилище с последующей инвалидацией затронутых
// ключей. Единственное место, которое решает, что кэшировать и что
// инвалидировать.
type InventoryService struct {
	DB    *gorm.DB
	Cache *CacheService

	// Интервал обслуживания в днях (настраивается, по умолчанию 180)
	MaintenanceIntervalDays int

	logger *log.Logger
}

// NewInventoryService создает новый экземпляр InventoryService
func NewInventoryService(db *gorm.DB, cache *CacheService, logger *log.Logger) *InventoryService {
	if logger == nil {
		logger = log.Default()
	}
	return &InventoryService{
		DB:                      db,
		Cache:                   cache,
		MaintenanceIntervalDays: DefaultMaintenanceIntervalDays,
		logger:                  logger,
	}
}

// EquipmentFilter параметры выборки списка оборудования
type EquipmentFilter struct {
	Skip           int
	Limit          int
	Status         string
	Category       string
	Classification string
}

// EquipmentPage страница списка оборудования
type EquipmentPage struct {
	Data     []models.Equipment `json:"data"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// EquipmentUpdate частичное обновление оборудования: применяются только
// переданные поля
type EquipmentUpdate struct {
	Name                *string                     `json:"name"`
	Category            *models.EquipmentCategory   `json:"category"`
	Status              *models.EquipmentStatus     `json:"status"`
	Location            *string                     `json:"location"`
	SerialNumber        *string                     `json:"serial_number"`
	ClassificationLevel *models.ClassificationLevel `json:"classification_level"`
	AssignedUnit        *string                     `json:"assigned_unit"`
	AssignedPersonnel   *string                     `json:"assigned_personnel"`
	PurchaseDate        *time.Time                  `json:"purchase_date"`
	LastMaintenance     *time.Time                  `json:"last_maintenance"`
	NextMaintenanceDue  *time.Time                  `json:"next_maintenance_due"`
	ConditionRating     *int                        `json:"condition_rating"`
}

// Паттерны инвалидации кэша. Паттерны шире необходимого: избыточная
// инвалидация безопасна, недостаточная оставляет устаревшие данные.
func equipmentListPattern() string {
	return CacheNamespaceEquipmentList + ":*"
}

func equipmentDetailPattern(id uint) string {
	return fmt.Sprintf("%s:*/equipment/%d*", CacheNamespaceEquipmentDetail, id)
}

func statisticsPattern() string {
	return CacheNamespaceStatistics + ":*"
}

func equipmentUnitPattern(unit string) string {
	return fmt.Sprintf("%s:*/equipment/unit/%s*", CacheNamespaceEquipmentUnit, unit)
}

func maintenancePattern() string {
	return CacheNamespaceMaintenance + ":*"
}

// invalidate удаляет ключи кэша по всем переданным паттернам.
// Запись в хранилище к этому моменту уже зафиксирована, поэтому сбой
// инвалидации не отменяет операцию: он означает лишь устаревшие данные
// в пределах TTL и логируется как предупреждение.
func (s *InventoryService) invalidate(ctx context.Context, patterns ...string) {
	for _, pattern := range patterns {
		if err := s.Cache.DeleteMatching(ctx, pattern); err != nil {
			s.logger.Printf("⚠️  Ошибка инвалидации кэша по паттерну %s: %v", pattern, err)
		}
	}
}

// validateEquipment проверяет ограничения полей до обращения к хранилищу
func validateEquipment(equipment *models.Equipment) error {
	if equipment.Name == "" {
		return &ValidationError{Field: "name", Message: "название не может быть пустым"}
	}

	if _, err := equipment.Category.Normalize(); err != nil {
		return &ValidationError{Field: "category", Message: "недопустимая категория: " + string(equipment.Category)}
	}

	if _, err := equipment.Status.Normalize(); err != nil {
		return &ValidationError{Field: "status", Message: "недопустимый статус: " + string(equipment.Status)}
	}

	if equipment.ClassificationLevel != "" {
		if _, err := equipment.ClassificationLevel.Normalize(); err != nil {
			return &ValidationError{Field: "classification_level", Message: "недопустимый уровень секретности: " + string(equipment.ClassificationLevel)}
		}
	}

	if equipment.ConditionRating != nil && (*equipment.ConditionRating < 1 || *equipment.ConditionRating > 5) {
		return &ValidationError{Field: "condition_rating", Message: "оценка состояния должна быть от 1 до 5"}
	}

	return nil
}

// normalizeAll приводит категориальные поля всех записей к каноническому
// виду. ConversionError означает поврежденные данные и фатален для запроса.
func normalizeAll(equipment []models.Equipment) error {
	for i := range equipment {
		if err := equipment[i].NormalizeEnums(); err != nil {
			return err
		}
	}
	return nil
}

// ListEquipment возвращает страницу списка оборудования с фильтрами.
// Чтение идет через кэш; промах заполняет кэш с TTL пространства имен.
func (s *InventoryService) ListEquipment(ctx context.Context, filter EquipmentFilter) (*EquipmentPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	key := BuildCacheKey(CacheNamespaceEquipmentList, "/equipment", map[string]string{
		"skip":           strconv.Itoa(filter.Skip),
		"limit":          strconv.Itoa(filter.Limit),
		"status":         filter.Status,
		"category":       filter.Category,
		"classification": filter.Classification,
	})

	var cached EquipmentPage
	if s.Cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	query := s.DB.WithContext(ctx).Model(&models.Equipment{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Classification != "" {
		query = query.Where("classification_level = ?", filter.Classification)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете оборудования: %w", err)
	}

	var equipment []models.Equipment
	if err := query.Order("id").Offset(filter.Skip).Limit(filter.Limit).Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении списка оборудования: %w", err)
	}

	if err := normalizeAll(equipment); err != nil {
		return nil, err
	}

	page := &EquipmentPage{
		Data:     equipment,
		Total:    total,
		Page:     filter.Skip/filter.Limit + 1,
		PageSize: filter.Limit,
	}

	s.Cache.SetJSON(ctx, key, page, CacheTTLEquipmentList)
	return page, nil
}

// GetEquipment возвращает оборудование по ID через кэш
func (s *InventoryService) GetEquipment(ctx context.Context, id uint) (*models.Equipment, error) {
	key := BuildCacheKey(CacheNamespaceEquipmentDetail, fmt.Sprintf("/equipment/%d", id), nil)

	var cached models.Equipment
	if s.Cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	var equipment models.Equipment
	if err := s.DB.WithContext(ctx).First(&equipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении оборудования: %w", err)
	}

	if err := equipment.NormalizeEnums(); err != nil {
		return nil, err
	}

	s.Cache.SetJSON(ctx, key, &equipment, CacheTTLEquipmentDetail)
	return &equipment, nil
}

// CreateEquipment создает новое оборудование. Запись фиксируется в
// хранилище до инвалидации кэша.
func (s *InventoryService) CreateEquipment(ctx context.Context, equipment *models.Equipment) error {
	if equipment.ClassificationLevel == "" {
		equipment.ClassificationLevel = models.ClassificationUnclassified
	}

	if err := validateEquipment(equipment); err != nil {
		return err
	}
	if err := equipment.NormalizeEnums(); err != nil {
		return err
	}

	if err := s.DB.WithContext(ctx).Create(equipment).Error; err != nil {
		if isUniqueViolation(err) {
			return &ConflictError{Message: "оборудование с таким серийным номером уже существует"}
		}
		return fmt.Errorf("ошибка при создании оборудования: %w", err)
	}

	patterns := []string{equipmentListPattern(), equipmentDetailPattern(equipment.ID), statisticsPattern()}
	if equipment.AssignedUnit != nil && *equipment.AssignedUnit != "" {
		patterns = append(patterns, equipmentUnitPattern(*equipment.AssignedUnit))
	}
	s.invalidate(ctx, patterns...)

	return nil
}

// UpdateEquipment применяет частичное обновление. Возвращает ErrNotFound,
// если записи нет. При смене подразделения инвалидируются представления
// и старого, и нового подразделения.
func (s *InventoryService) UpdateEquipment(ctx context.Context, id uint, update EquipmentUpdate) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := s.DB.WithContext(ctx).First(&equipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при поиске оборудования: %w", err)
	}

	oldUnit := ""
	if equipment.AssignedUnit != nil {
		oldUnit = *equipment.AssignedUnit
	}

	if update.Name != nil {
		equipment.Name = *update.Name
	}
	if update.Category != nil {
		equipment.Category = *update.Category
	}
	if update.Status != nil {
		equipment.Status = *update.Status
	}
	if update.Location != nil {
		equipment.Location = update.Location
	}
	if update.SerialNumber != nil {
		equipment.SerialNumber = update.SerialNumber
	}
	if update.ClassificationLevel != nil {
		equipment.ClassificationLevel = *update.ClassificationLevel
	}
	if update.AssignedUnit != nil {
		equipment.AssignedUnit = update.AssignedUnit
	}
	if update.AssignedPersonnel != nil {
		equipment.AssignedPersonnel = update.AssignedPersonnel
	}
	if update.PurchaseDate != nil {
		equipment.PurchaseDate = update.PurchaseDate
	}
	if update.LastMaintenance != nil {
		equipment.LastMaintenance = update.LastMaintenance
	}
	if update.NextMaintenanceDue != nil {
		equipment.NextMaintenanceDue = update.NextMaintenanceDue
	}
	if update.ConditionRating != nil {
		equipment.ConditionRating = update.ConditionRating
	}

	if err := validateEquipment(&equipment); err != nil {
		return nil, err
	}
	if err := equipment.NormalizeEnums(); err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Save(&equipment).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: "оборудование с таким серийным номером уже существует"}
		}
		return nil, fmt.Errorf("ошибка при обновлении оборудования: %w", err)
	}

	patterns := []string{equipmentListPattern(), equipmentDetailPattern(id), statisticsPattern()}
	if oldUnit != "" {
		patterns = append(patterns, equipmentUnitPattern(oldUnit))
	}
	if equipment.AssignedUnit != nil && *equipment.AssignedUnit != "" && *equipment.AssignedUnit != oldUnit {
		patterns = append(patterns, equipmentUnitPattern(*equipment.AssignedUnit))
	}
	s.invalidate(ctx, patterns...)

	return &equipment, nil
}

// DeleteEquipment удаляет оборудование вместе с журналом обслуживания.
// Удаление жесткое, без tombstone-записей.
func (s *InventoryService) DeleteEquipment(ctx context.Context, id uint) error {
	var equipment models.Equipment
	if err := s.DB.WithContext(ctx).First(&equipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка при поиске оборудования: %w", err)
	}

	unit := ""
	if equipment.AssignedUnit != nil {
		unit = *equipment.AssignedUnit
	}

	// Каскад на уровне БД тоже есть, но явная транзакция делает
	// удаление переносимым между PostgreSQL и sqlite
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("equipment_id = ?", id).Delete(&models.MaintenanceLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&equipment).Error
	})
	if err != nil {
		return fmt.Errorf("ошибка при удалении оборудования: %w", err)
	}

	patterns := []string{equipmentListPattern(), equipmentDetailPattern(id), statisticsPattern(), maintenancePattern()}
	if unit != "" {
		patterns = append(patterns, equipmentUnitPattern(unit))
	}
	s.invalidate(ctx, patterns...)

	return nil
}

// SearchEquipment ищет оборудование по подстроке в названии, категории
// или серийном номере без учета регистра
func (s *InventoryService) SearchEquipment(ctx context.Context, query string) ([]models.Equipment, error) {
	key := BuildCacheKey(CacheNamespaceSearch, "/equipment/search", map[string]string{"q": query})

	var cached []models.Equipment
	if s.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	pattern := "%" + query + "%"
	var equipment []models.Equipment
	if err := s.DB.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?) OR LOWER(serial_number) LIKE LOWER(?)",
			pattern, pattern, pattern).
		Order("id").
		Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("ошибка при поиске оборудования: %w", err)
	}

	if err := normalizeAll(equipment); err != nil {
		return nil, err
	}

	s.Cache.SetJSON(ctx, key, equipment, CacheTTLSearchResults)
	return equipment, nil
}

// AssignEquipment назначает оборудование подразделению или сотруднику.
// Назначение не меняет агрегатные счетчики, поэтому статистика не
// инвалидируется.
func (s *InventoryService) AssignEquipment(ctx context.Context, id uint, unit, personnel *string) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := s.DB.WithContext(ctx).First(&equipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при поиске оборудования: %w", err)
	}

	oldUnit := ""
	if equipment.AssignedUnit != nil {
		oldUnit = *equipment.AssignedUnit
	}

	if unit != nil {
		equipment.AssignedUnit = unit
	}
	if personnel != nil {
		equipment.AssignedPersonnel = personnel
	}

	if err := s.DB.WithContext(ctx).Save(&equipment).Error; err != nil {
		return nil, fmt.Errorf("ошибка при назначении оборудования: %w", err)
	}

	patterns := []string{equipmentListPattern(), equipmentDetailPattern(id)}
	if oldUnit != "" {
		patterns = append(patterns, equipmentUnitPattern(oldUnit))
	}
	if equipment.AssignedUnit != nil && *equipment.AssignedUnit != "" && *equipment.AssignedUnit != oldUnit {
		patterns = append(patterns, equipmentUnitPattern(*equipment.AssignedUnit))
	}
	s.invalidate(ctx, patterns...)

	return &equipment, nil
}

// GetEquipmentByUnit возвращает оборудование, назначенное подразделению
func (s *InventoryService) GetEquipmentByUnit(ctx context.Context, unit string, skip, limit int) ([]models.Equipment, error) {
	if limit <= 0 {
		limit = 100
	}

	key := BuildCacheKey(CacheNamespaceEquipmentUnit, "/equipment/unit/"+unit, map[string]string{
		"skip":  strconv.Itoa(skip),
		"limit": strconv.Itoa(limit),
	})

	var cached []models.Equipment
	if s.Cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	var equipment []models.Equipment
	if err := s.DB.WithContext(ctx).
		Where("assigned_unit = ?", unit).
		Order("id").
		Offset(skip).Limit(limit).
		Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении оборудования подразделения: %w", err)
	}

	if err := normalizeAll(equipment); err != nil {
		return nil, err
	}

	s.Cache.SetJSON(ctx, key, equipment, CacheTTLEquipmentList)
	return equipment, nil
}

// GetDistinctUnits возвращает отсортированный список подразделений,
// за которыми закреплено оборудование
func (s *InventoryService) GetDistinctUnits(ctx context.Context) ([]string, error) {
	var units []string
	if err := s.DB.WithContext(ctx).Model(&models.Equipment{}).
		Where("assigned_unit IS NOT NULL AND assigned_unit != ''").
		Distinct("assigned_unit").
		Order("assigned_unit").
		Pluck("assigned_unit", &units).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении списка подразделений: %w", err)
	}

	return units, nil
}

// CreateMaintenanceLog создает запись журнала обслуживания и атомарно
// сдвигает даты обслуживания оборудования: last_maintenance на дату
// записи, next_maintenance_due на дату записи плюс интервал. Либо видна
// и запись, и новые даты, либо ничего.
func (s *InventoryService) CreateMaintenanceLog(ctx context.Context, entry *models.MaintenanceLog) error {
	if entry.MaintenanceType == "" {
		return &ValidationError{Field: "maintenance_type", Message: "тип обслуживания не может быть пустым"}
	}
	if entry.Description == "" {
		return &ValidationError{Field: "description", Message: "описание не может быть пустым"}
	}
	if entry.PerformedBy == "" {
		return &ValidationError{Field: "performed_by", Message: "исполнитель не может быть пустым"}
	}
	if entry.MaintenanceDate.IsZero() {
		return &ValidationError{Field: "maintenance_date", Message: "дата обслуживания обязательна"}
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var equipment models.Equipment
		if err := tx.First(&equipment, entry.EquipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ConflictError{Message: fmt.Sprintf("оборудование %d не существует", entry.EquipmentID)}
			}
			return err
		}

		if err := tx.Create(entry).Error; err != nil {
			if isForeignKeyViolation(err) {
				return &ConflictError{Message: fmt.Sprintf("оборудование %d не существует", entry.EquipmentID)}
			}
			return err
		}

		maintenanceDate := entry.MaintenanceDate
		nextDue := maintenanceDate.AddDate(0, 0, s.MaintenanceIntervalDays)
		equipment.LastMaintenance = &maintenanceDate
		equipment.NextMaintenanceDue = &nextDue

		return tx.Save(&equipment).Error
	})
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return conflict
		}
		return fmt.Errorf("ошибка при создании записи обслуживания: %w", err)
	}

	s.invalidate(ctx,
		equipmentListPattern(),
		equipmentDetailPattern(entry.EquipmentID),
		maintenancePattern(),
	)

	return nil
}

// GetMaintenanceLogs возвращает журнал обслуживания оборудования,
// новые записи первыми
func (s *InventoryService) GetMaintenanceLogs(ctx context.Context, equipmentID uint) ([]models.MaintenanceLog, error) {
	var equipment models.Equipment
	if err := s.DB.WithContext(ctx).First(&equipment, equipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при поиске оборудования: %w", err)
	}

	var logs []models.MaintenanceLog
	if err := s.DB.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Order("maintenance_date DESC, id DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении журнала обслуживания: %w", err)
	}

	return logs, nil
}
