package domain

import (
	"time"

	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// AvailableSlot represents a time slot available for booking
// Слоты никогда не сохраняются - вычисляются заново на каждый запрос
type AvailableSlot struct {
	// Локальное время в зоне бизнеса (для отображения клиенту)
	StartTime types.TimeString
	EndTime   types.TimeString

	// Абсолютные моменты в UTC (для сравнения и создания записи)
	StartAt time.Time
	EndAt   time.Time

	DurationMinutes int
}
