package services

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func setupCacheTest(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := log.New(os.Stdout, "[test] ", log.LstdFlags)
	return NewCacheService(client, logger), mr
}

func TestBuildCacheKey(t *testing.T) {
	// Параметры сортируются по имени: порядок передачи не влияет на ключ
	key := BuildCacheKey(CacheNamespaceEquipmentList, "/equipment", map[string]string{
		"skip":   "0",
		"limit":  "10",
		"status": "operational",
	})
	assert.Equal(t, "equipment_list:/equipment:limit=10&skip=0&status=operational", key)

	sameKey := BuildCacheKey(CacheNamespaceEquipmentList, "/equipment", map[string]string{
		"status": "operational",
		"limit":  "10",
		"skip":   "0",
	})
	assert.Equal(t, key, sameKey)
}

func TestBuildCacheKey_NoParams(t *testing.T) {
	key := BuildCacheKey(CacheNamespaceStatistics, "/statistics", nil)
	assert.Equal(t, "statistics:/statistics:", key)
}

func TestCacheService_SetAndGetJSON(t *testing.T) {
	cache, _ := setupCacheTest(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	cache.SetJSON(ctx, "test:key", payload{Name: "АК-74", Count: 3}, time.Minute)

	var got payload
	assert.True(t, cache.GetJSON(ctx, "test:key", &got))
	assert.Equal(t, "АК-74", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestCacheService_GetJSONMiss(t *testing.T) {
	cache, _ := setupCacheTest(t)

	var got map[string]string
	assert.False(t, cache.GetJSON(context.Background(), "missing:key", &got))
}

func TestCacheService_TTLExpiry(t *testing.T) {
	cache, mr := setupCacheTest(t)
	ctx := context.Background()

	cache.SetJSON(ctx, "test:key", "value", 2*time.Minute)

	// До истечения TTL значение доступно
	var got string
	assert.True(t, cache.GetJSON(ctx, "test:key", &got))

	// После истечения TTL — промах
	mr.FastForward(3 * time.Minute)
	assert.False(t, cache.GetJSON(ctx, "test:key", &got))
}

func TestCacheService_DeleteMatching(t *testing.T) {
	cache, _ := setupCacheTest(t)
	ctx := context.Background()

	cache.SetJSON(ctx, "equipment_list:/equipment:skip=0", "a", time.Minute)
	cache.SetJSON(ctx, "equipment_list:/equipment:skip=10", "b", time.Minute)
	cache.SetJSON(ctx, "equipment_detail:/equipment/5:", "c", time.Minute)

	assert.NoError(t, cache.DeleteMatching(ctx, "equipment_list:*"))

	var got string
	assert.False(t, cache.GetJSON(ctx, "equipment_list:/equipment:skip=0", &got))
	assert.False(t, cache.GetJSON(ctx, "equipment_list:/equipment:skip=10", &got))
	// Другие пространства имен не затронуты
	assert.True(t, cache.GetJSON(ctx, "equipment_detail:/equipment/5:", &got))
}

func TestCacheService_DeleteMatching_NoMatches(t *testing.T) {
	cache, _ := setupCacheTest(t)

	// Отсутствие ключей под паттерном не является ошибкой
	assert.NoError(t, cache.DeleteMatching(context.Background(), "nothing:*"))
}

func TestCacheService_DisabledCache(t *testing.T) {
	logger := log.New(os.Stdout, "[test] ", log.LstdFlags)
	cache := NewCacheService(nil, logger)
	ctx := context.Background()

	// Без Redis чтение ведет себя как промах, запись и инвалидация
	// не возвращают ошибок
	var got string
	assert.False(t, cache.GetJSON(ctx, "any:key", &got))
	cache.SetJSON(ctx, "any:key", "value", time.Minute)
	assert.NoError(t, cache.DeleteMatching(ctx, "any:*"))
}

func TestCacheService_Incr(t *testing.T) {
	cache, mr := setupCacheTest(t)
	ctx := context.Background()

	n, err := cache.Incr(ctx, "rate:ip", time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = cache.Incr(ctx, "rate:ip", time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Окно истекло, счетчик начинается заново
	mr.FastForward(2 * time.Minute)
	n, err = cache.Incr(ctx, "rate:ip", time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
