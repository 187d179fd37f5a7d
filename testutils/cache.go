package testutils

import (
	"log"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/go-redis/redis/v8"

	"inventory_backend/services"
)

// SetupTestCache поднимает miniredis и возвращает подключенный к нему
// CacheService вместе с самим сервером для проверок содержимого
func SetupTestCache(t *testing.T) (*services.CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := log.New(os.Stdout, "[test] ", log.LstdFlags)
	return services.NewCacheService(client, logger), mr
}

// SetupDisabledCache возвращает CacheService без Redis: все операции
// чтения ведут себя как промахи, записи игнорируются
func SetupDisabledCache(t *testing.T) *services.CacheService {
	t.Helper()

	logger := log.New(os.Stdout, "[test] ", log.LstdFlags)
	return services.NewCacheService(nil, logger)
}
