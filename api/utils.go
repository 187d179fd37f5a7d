package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"inventory_backend/models"
	"inventory_backend/services"
)

// respondError транслирует ошибки сервисного слоя в HTTP-ответы
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	var conversionErr *models.ConversionError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Запись не найдена"})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error()})
	case errors.As(err, &conversionErr):
		// Некорректное значение в хранилище, которое не удалось привести к канону
		c.JSON(http.StatusInternalServerError, gin.H{"error": conversionErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера: " + err.Error()})
	}
}

// parseIDParam разбирает числовой идентификатор из пути
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID: " + raw})
		return 0, false
	}
	return uint(id), true
}

// parsePagination разбирает параметры skip/limit с ограничением сверху
func parsePagination(c *gin.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return skip, limit
}
