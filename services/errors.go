package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound возвращается, когда запись с указанным ID не существует.
// Отсутствие записи — ожидаемый результат, а не сбой хранилища.
var ErrNotFound = errors.New("запись не найдена")

// ValidationError означает, что полезная нагрузка нарушает ограничения
// полей. Возвращается до обращения к хранилищу и кэшу.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("поле %s: %s", e.Field, e.Message)
}

// ConflictError означает нарушение уникальности или ссылочной целостности
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// isUniqueViolation проверяет, является ли ошибка хранилища нарушением
// уникального индекса (PostgreSQL 23505, sqlite "UNIQUE constraint failed")
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// isForeignKeyViolation проверяет, является ли ошибка хранилища нарушением
// внешнего ключа (PostgreSQL 23503, sqlite "FOREIGN KEY constraint failed")
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23503") ||
		strings.Contains(msg, "foreign key") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed")
}
