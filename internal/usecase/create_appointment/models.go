package create_appointment

import (
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	UserID       int64 // Пользователь, создающий запись
	BusinessID   int64
	BranchID     int64
	SpecialistID int64

	// Клиент: либо существующий, либо новый (имя и телефон до регистрации)
	ClientID    *int64
	ClientName  *string
	ClientPhone *string

	ServiceIDs []int64

	// Локальные дата и время начала в зоне бизнеса
	Date      types.DateString
	StartTime types.TimeString

	Notes *string

	// Запись, созданная сотрудником, сразу переходит в confirmed
	CreatedByStaff bool
}

// Response модель ответа с созданной записью
type Response struct {
	ID           int64
	BusinessID   int64
	BranchID     int64
	SpecialistID int64
	ClientID     *int64
	ClientName   *string
	ClientPhone  *string

	Services []domain.AppointmentService

	// Локальное представление в зоне бизнеса
	Date      types.DateString
	StartTime types.TimeString
	EndTime   types.TimeString
	Timezone  string

	// Абсолютные моменты в UTC
	StartAt time.Time
	EndAt   time.Time

	Status          string
	RequiresConsent bool
	Notes           *string
	TotalAmount     float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
