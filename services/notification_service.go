package services

import (
	"fmt"
	"log"
	"strings"

	"inventory_backend/models"
)

// Максимум позиций оборудования в одном уведомлении
const maxAlertItems = 10

// NotificationService представляет сервис для отправки уведомлений
// о просроченном обслуживании. Telegram-клиент опционален: без него
// уведомления только логируются.
type NotificationService struct {
	Telegram *TelegramClient
	logger   *log.Logger
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(telegram *TelegramClient, logger *log.Logger) *NotificationService {
	if logger == nil {
		logger = log.Default()
	}
	return &NotificationService{
		Telegram: telegram,
		logger:   logger,
	}
}

// SendOverdueMaintenanceAlert отправляет уведомление о просроченном
// обслуживании. Сбой отправки логируется и не прерывает проверку.
func (ns *NotificationService) SendOverdueMaintenanceAlert(overdue []models.Equipment) {
	if len(overdue) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ <b>Просрочено обслуживание: %d ед. оборудования</b>\n\n", len(overdue))

	for i, item := range overdue {
		if i >= maxAlertItems {
			fmt.Fprintf(&b, "... и еще %d ед.\n", len(overdue)-maxAlertItems)
			break
		}

		serial := "—"
		if item.SerialNumber != nil {
			serial = *item.SerialNumber
		}
		fmt.Fprintf(&b, "• %s (S/N: %s), обслуживание до %s\n",
			item.Name, serial, item.NextMaintenanceDue.Format("02.01.2006"))
	}

	message := b.String()

	if ns.Telegram == nil {
		ns.logger.Printf("Telegram не настроен, уведомление не отправлено:\n%s", message)
		return
	}

	if err := ns.Telegram.SendMessage(message); err != nil {
		ns.logger.Printf("Ошибка при отправке уведомления: %v", err)
	}
}
