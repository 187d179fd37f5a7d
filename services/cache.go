package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Константы TTL по пространствам имен кэша
const (
	CacheTTLEquipmentList       = 5 * time.Minute
	CacheTTLEquipmentDetail     = 10 * time.Minute
	CacheTTLSearchResults       = 2 * time.Minute
	CacheTTLStatistics          = 30 * time.Minute
	CacheTTLMaintenanceSchedule = 5 * time.Minute

	// Таймаут одной операции с кэшем. Зависший Redis деградирует
	// до прямого чтения из БД, а не до зависшего запроса.
	cacheOperationTimeout = 3 * time.Second
)

// Пространства имен ключей кэша
const (
	CacheNamespaceEquipmentList   = "equipment_list"
	CacheNamespaceEquipmentDetail = "equipment_detail"
	CacheNamespaceEquipmentUnit   = "equipment_unit"
	CacheNamespaceSearch          = "search_results"
	CacheNamespaceStatistics      = "statistics"
	CacheNamespaceMaintenance     = "maintenance"
)

// CacheService предоставляет методы для кэширования поверх Redis.
// Недоступность кэша никогда не является ошибкой для вызывающего:
// чтение деградирует до промаха, запись пропускается с предупреждением.
type CacheService struct {
	redis  *redis.Client
	logger *log.Logger
}

// NewCacheService создает новый экземпляр CacheService
func NewCacheService(redisClient *redis.Client, logger *log.Logger) *CacheService {
	if logger == nil {
		logger = log.Default()
	}
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// BuildCacheKey строит детерминированный ключ кэша из пространства имен,
// пути и параметров запроса. Параметры кодируются в отсортированном
// порядке, поэтому одинаковые запросы дают одинаковый ключ независимо
// от порядка параметров.
func BuildCacheKey(namespace, path string, params map[string]string) string {
	if len(params) == 0 {
		return fmt.Sprintf("%s:%s:", namespace, path)
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}

	return fmt.Sprintf("%s:%s:%s", namespace, path, strings.Join(pairs, "&"))
}

// GetJSON читает значение из кэша и десериализует его в dest.
// Возвращает true при попадании. Любой сбой кэша трактуется как промах.
func (cs *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if cs.redis == nil {
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, cacheOperationTimeout)
	defer cancel()

	data, err := cs.redis.Get(opCtx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		cs.logger.Printf("⚠️  Кэш недоступен при чтении ключа %s: %v", key, err)
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		cs.logger.Printf("⚠️  Ошибка десериализации кэша для ключа %s: %v", key, err)
		return false
	}

	return true
}

// SetJSON сохраняет значение в кэш с TTL. Запись выполняется по мере
// возможности: сбой логируется и не влияет на результат запроса.
func (cs *CacheService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if cs.redis == nil {
		return
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		cs.logger.Printf("⚠️  Ошибка сериализации кэша для ключа %s: %v", key, err)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, cacheOperationTimeout)
	defer cancel()

	if err := cs.redis.Set(opCtx, key, string(jsonData), ttl).Err(); err != nil {
		cs.logger.Printf("⚠️  Кэш недоступен при записи ключа %s: %v", key, err)
	}
}

// Delete удаляет значение из кэша. Отсутствующий ключ не является ошибкой.
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	if cs.redis == nil {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, cacheOperationTimeout)
	defer cancel()

	return cs.redis.Del(opCtx, key).Err()
}

// DeleteMatching удаляет все ключи кэша, соответствующие glob-паттерну.
// Перечисление и удаление — два шага: избыточная инвалидация безопасна,
// дефектом была бы только недостаточная.
func (cs *CacheService) DeleteMatching(ctx context.Context, pattern string) error {
	if cs.redis == nil {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, cacheOperationTimeout)
	defer cancel()

	keys, err := cs.redis.Keys(opCtx, pattern).Result()
	if err != nil {
		return fmt.Errorf("ошибка при поиске ключей по паттерну %s: %w", pattern, err)
	}

	if len(keys) > 0 {
		if err := cs.redis.Del(opCtx, keys...).Err(); err != nil {
			return fmt.Errorf("ошибка при удалении ключей по паттерну %s: %w", pattern, err)
		}
	}

	return nil
}

// Incr увеличивает счетчик и устанавливает TTL при первом обращении.
// Используется middleware ограничения частоты запросов.
func (cs *CacheService) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if cs.redis == nil {
		return 0, fmt.Errorf("Redis не подключен")
	}

	opCtx, cancel := context.WithTimeout(ctx, cacheOperationTimeout)
	defer cancel()

	pipe := cs.redis.Pipeline()
	incr := pipe.Incr(opCtx, key)
	pipe.Expire(opCtx, key, window)
	if _, err := pipe.Exec(opCtx); err != nil {
		return 0, err
	}

	return incr.Result()
}

// Stats возвращает статистику использования кэша
func (cs *CacheService) Stats(ctx context.Context) (map[string]interface{}, error) {
	if cs.redis == nil {
		return map[string]interface{}{"status": "disabled"}, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, cacheOperationTimeout)
	defer cancel()

	keyCount, err := cs.redis.DBSize(opCtx).Result()
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":    "enabled",
		"key_count": keyCount,
	}, nil
}
