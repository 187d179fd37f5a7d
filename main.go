package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inventory_backend/api"
	"inventory_backend/config"
	"inventory_backend/database"
	"inventory_backend/middleware"
	"inventory_backend/services"
)

// initDB инициализирует подключение к базе данных
func initDB() {
	log.Println("🔧 Инициализация базы данных...")

	// Создаем базу данных, если она не существует
	if err := database.CreateDatabaseIfNotExists(); err != nil {
		log.Fatal("❌ Ошибка при создании базы данных:", err)
	}

	// Подключаемся к базе данных
	if err := database.ConnectDatabase(); err != nil {
		log.Fatal("❌ Ошибка подключения к базе данных:", err)
	}

	log.Println("✅ База данных успешно инициализирована")
}

// setupRouter собирает HTTP-маршруты поверх сервисного слоя
func setupRouter(cfg *config.Config, inventory *services.InventoryService, maintenance *services.MaintenanceService, reports *services.ReportService) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}
	if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))
	r.Use(middleware.RequestID())

	// Базовые роуты
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "pong",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		redisStatus := "disconnected"
		if database.GetRedis() != nil {
			redisStatus = "connected"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
			"redis":    redisStatus,
		})
	})

	equipmentAPI := api.NewEquipmentAPI(inventory)
	maintenanceAPI := api.NewMaintenanceAPI(inventory, maintenance)
	statisticsAPI := api.NewStatisticsAPI(maintenance)
	reportsAPI := api.NewReportsAPI(reports)

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.APIRateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow))
	{
		apiGroup.GET("/equipment", equipmentAPI.GetEquipmentList)
		apiGroup.POST("/equipment", equipmentAPI.CreateEquipment)
		apiGroup.GET("/equipment/search", equipmentAPI.SearchEquipment)
		apiGroup.GET("/equipment/units", equipmentAPI.GetUnits)
		apiGroup.GET("/equipment/unit/:unit", equipmentAPI.GetEquipmentByUnit)
		apiGroup.GET("/equipment/:id", equipmentAPI.GetEquipmentByID)
		apiGroup.PUT("/equipment/:id", equipmentAPI.UpdateEquipment)
		apiGroup.DELETE("/equipment/:id", equipmentAPI.DeleteEquipment)
		apiGroup.POST("/equipment/:id/assign", equipmentAPI.AssignEquipment)
		apiGroup.POST("/equipment/:id/maintenance", maintenanceAPI.CreateMaintenanceLog)
		apiGroup.GET("/equipment/:id/maintenance", maintenanceAPI.GetMaintenanceLogs)

		apiGroup.GET("/maintenance/schedule", maintenanceAPI.GetMaintenanceSchedule)
		apiGroup.GET("/statistics", statisticsAPI.GetInventoryStatistics)
		apiGroup.GET("/reports/inventory", reportsAPI.ExportInventoryReport)
	}

	return r
}

func main() {
	// Загружаем конфигурацию (включая .env файл)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("❌ Ошибка загрузки конфигурации:", err)
	}

	// Инициализируем базу данных
	initDB()

	// Инициализируем Redis: при недоступности кэш отключается,
	// приложение продолжает работать напрямую с базой
	if err := database.InitRedis(); err != nil {
		log.Printf("⚠️  Redis недоступен, кэширование отключено: %v", err)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	cache := services.NewCacheService(database.GetRedis(), logger)

	// Telegram-уведомления опциональны
	var telegram *services.TelegramClient
	if cfg.Notifications.TelegramBotToken != "" && cfg.Notifications.TelegramChatID != "" {
		telegram, err = services.NewTelegramClient(cfg.Notifications.TelegramBotToken, cfg.Notifications.TelegramChatID)
		if err != nil {
			log.Printf("⚠️  Telegram-клиент не инициализирован: %v", err)
		} else {
			log.Println("✅ Telegram-уведомления включены")
		}
	}
	notifications := services.NewNotificationService(telegram, logger)

	inventory := services.NewInventoryService(database.DB, cache, logger)
	inventory.MaintenanceIntervalDays = cfg.Maintenance.IntervalDays
	maintenance := services.NewMaintenanceService(database.DB, cache, notifications, logger)
	reports := services.NewReportService(database.DB)

	// Ежедневная проверка просроченного обслуживания
	if err := maintenance.StartScheduler(); err != nil {
		log.Printf("⚠️  Планировщик обслуживания не запущен: %v", err)
	}
	defer maintenance.StopScheduler()

	r := setupRouter(cfg, inventory, maintenance, reports)

	log.Printf("🚀 Сервер запущен на порту %s", cfg.App.Port)
	if err := r.Run(cfg.App.Host + ":" + cfg.App.Port); err != nil {
		log.Fatal("❌ Ошибка запуска сервера:", err)
	}
}
