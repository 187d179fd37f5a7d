package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/go-redis/redis/v8"

	"inventory_backend/database"
)

// RateLimitConfig конфигурация rate limiting
type RateLimitConfig struct {
	Requests     int                       // Количество запросов
	Window       time.Duration             // Временное окно
	KeyGenerator func(*gin.Context) string // Генератор ключей
}

// DefaultKeyGenerator генерирует ключ на основе IP адреса
func DefaultKeyGenerator(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit создает middleware для ограничения частоты запросов.
// Счетчик живет в Redis; при недоступном Redis запросы пропускаются.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisClient := database.GetRedis()
		if redisClient == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "rate_limit:" + config.KeyGenerator(c)

		current, err := redisClient.Get(ctx, key).Int()
		if err != nil && err != redis.Nil {
			// В случае ошибки Redis пропускаем запрос
			c.Next()
			return
		}

		if current >= config.Requests {
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
				"message": fmt.Sprintf("Too many requests. Limit: %d requests per %v",
					config.Requests, config.Window),
				"retry_after": config.Window.Seconds(),
			})
			c.Abort()
			return
		}

		pipe := redisClient.Pipeline()
		pipe.Incr(ctx, key)
		if current == 0 {
			// Устанавливаем TTL только для первого запроса
			pipe.Expire(ctx, key, config.Window)
		}
		if _, err = pipe.Exec(ctx); err != nil {
			c.Next()
			return
		}

		remaining := config.Requests - current - 1
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

		c.Next()
	}
}

// APIRateLimit ограничение для всех API endpoints на основе конфигурации
func APIRateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Requests:     requests,
		Window:       window,
		KeyGenerator: DefaultKeyGenerator,
	})
}
