package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client

// InitRedis инициализирует подключение к Redis. Клиент создается один
// раз при старте процесса и передается сервисам явно.
func InitRedis() error {
	// Получаем настройки Redis из переменных окружения
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")
	dbStr := getEnv("REDIS_DB", "0")

	// Конвертируем номер БД в int
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		db = 0
	}

	// Создаем клиент Redis. Таймауты короткие: зависший кэш должен
	// деградировать до прямого чтения из БД, а не вешать запрос.
	Redis = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  300 * time.Second,
	})

	// Проверяем подключение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	log.Println("✅ Успешно подключено к Redis")
	return nil
}

// GetRedis возвращает экземпляр Redis клиента
func GetRedis() *redis.Client {
	return Redis
}

// CloseRedis закрывает подключение к Redis
func CloseRedis() error {
	if Redis == nil {
		return nil
	}
	return Redis.Close()
}
