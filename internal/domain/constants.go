package domain

// Default configuration values
const (
	DefaultSlotStepMinutes    = 30
	DefaultAdvanceBookingDays = 0  // 0 = unlimited
	DefaultMinNoticeMinutes   = 60 // 1 hour
)

// Business validation constants
const (
	MinSlotStepMinutes          = 5
	MaxSlotStepMinutes          = 240 // 4 hours
	MinAdvanceBookingDays       = 0
	MaxAdvanceBookingDays       = 365 // 1 year
	MinNoticeMinutesLowerBound  = 0
	MaxNoticeMinutesUpperBound  = 10080 // 1 week
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxServicesPerAppointment   = 10
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, при которых запись занимает время специалиста
// Используются при подсчёте доступных слотов
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
}

// InactiveStatuses статусы, при которых запись не блокирует слот
var InactiveStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCanceled,
}
