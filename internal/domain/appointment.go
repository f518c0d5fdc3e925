package domain

import (
	"time"

	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
// Статус меняется только через internal/lifecycle - единственный авторитетный путь записи
type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "pending"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCanceled   AppointmentStatus = "canceled"
)

// ParseAppointmentStatus парсит статус из строки
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCanceled:
		return AppointmentStatus(s), true
	default:
		return "", false
	}
}

// AppointmentService snapshot услуги на момент создания записи
// Длительность и цена фиксируются при бронировании и не меняются при изменении каталога
type AppointmentService struct {
	ServiceID       int64
	Name            string
	DurationMinutes int
	Price           float64
}

// Appointment represents a salon/clinic appointment
type Appointment struct {
	ID           int64
	BusinessID   int64
	BranchID     int64
	SpecialistID int64

	// Клиент: либо существующий (ClientID), либо новый (имя и телефон до регистрации)
	ClientID    *int64
	ClientName  *string
	ClientPhone *string

	Services []AppointmentService

	// Абсолютные моменты времени в UTC - единственная форма хранения и сравнения
	StartAt time.Time
	EndAt   time.Time

	Status AppointmentStatus

	// Гейты workflow начала/завершения
	RequiresConsent   bool
	HasSignedConsent  bool
	HasBeforeEvidence bool
	HasAfterEvidence  bool

	Notes       *string
	TotalAmount float64

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment blocks its time slot
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending ||
		a.Status == StatusConfirmed ||
		a.Status == StatusInProgress
}

// IsTerminal returns true if no further status transitions are permitted
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCanceled
}

// CanBeCancelled returns true if the appointment can still be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending ||
		a.Status == StatusConfirmed ||
		a.Status == StatusInProgress
}

// TotalDurationMinutes returns the sum of the snapshot durations of all services
func (a *Appointment) TotalDurationMinutes() int {
	total := 0
	for _, s := range a.Services {
		total += s.DurationMinutes
	}
	return total
}

// ServicesTotal returns the sum of the snapshot prices of all services
func (a *Appointment) ServicesTotal() float64 {
	total := 0.0
	for _, s := range a.Services {
		total += s.Price
	}
	return total
}

// Overlaps returns true if the [StartAt, EndAt) interval intersects [start, end)
// Границы интервалов не считаются пересечением
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartAt.Before(end) && a.EndAt.After(start)
}

// SpecialistAppointmentsFilter фильтр для выборки записей бизнеса
type SpecialistAppointmentsFilter struct {
	BusinessID      int64              // Обязательный параметр
	BranchID        *int64             // Фильтр по филиалу (опционально)
	SpecialistID    *int64             // Фильтр по специалисту (опционально)
	StartAt         *time.Time         // Начало периода в UTC (опционально)
	EndAt           *time.Time         // Конец периода в UTC (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отменённые и завершённые записи
}

// EvidenceKind вид фотофиксации
type EvidenceKind string

const (
	EvidenceBefore EvidenceKind = "before"
	EvidenceAfter  EvidenceKind = "after"
)

// ParseEvidenceKind парсит вид фотофиксации из строки
func ParseEvidenceKind(s string) (EvidenceKind, bool) {
	switch EvidenceKind(s) {
	case EvidenceBefore, EvidenceAfter:
		return EvidenceKind(s), true
	default:
		return "", false
	}
}

// CivilDateTime локальные дата и время "на стене" в часовой зоне бизнеса
// Интерпретируется только вместе с явной IANA зоной, никогда как зона процесса
type CivilDateTime struct {
	Date types.DateString
	Time types.TimeString
}

// Validate проверяет, что дата и время заданы и корректны
func (c CivilDateTime) Validate() error {
	if err := c.Date.Validate(); err != nil {
		return err
	}
	return c.Time.Validate()
}
