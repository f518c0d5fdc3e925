package create_appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID must be positive", ErrInvalidInput)
	}

	if req.BranchID <= 0 {
		return fmt.Errorf("%w: branchID must be positive", ErrInvalidInput)
	}

	if req.SpecialistID <= 0 {
		return fmt.Errorf("%w: specialistID must be positive", ErrInvalidInput)
	}

	if len(req.ServiceIDs) == 0 {
		return fmt.Errorf("%w: at least one serviceID is required", ErrInvalidInput)
	}

	if len(req.ServiceIDs) > domain.MaxServicesPerAppointment {
		return fmt.Errorf("%w: at most %d services per appointment", ErrInvalidInput, domain.MaxServicesPerAppointment)
	}

	// Клиент: либо существующий, либо имя и телефон нового
	if req.ClientID == nil {
		if req.ClientName == nil || strings.TrimSpace(*req.ClientName) == "" {
			return fmt.Errorf("%w: clientID or clientName is required", ErrInvalidInput)
		}
		if req.ClientPhone == nil || strings.TrimSpace(*req.ClientPhone) == "" {
			return fmt.Errorf("%w: clientPhone is required for a new client", ErrInvalidInput)
		}
	} else if *req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.Date.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет дату против ограничения advanceBookingDays
// Сравнение ведется по локальным датам в зоне бизнеса
func validateDate(requestDate, today types.DateString, advanceBookingDays int) error {
	if requestDate < today {
		return ErrInvalidDate
	}

	if advanceBookingDays == 0 {
		return nil
	}

	parsedToday, err := time.Parse(types.DateFormat, today.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	maxDate := types.NewDateString(parsedToday.AddDate(0, 0, advanceBookingDays))
	if requestDate > maxDate {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validateWithinWorkingHours проверяет, что интервал записи
// целиком помещается в рабочие часы филиала
func validateWithinWorkingHours(day domain.DaySchedule, start types.TimeString, durationMinutes int) error {
	if !day.IsOpen || day.OpenTime == nil || day.CloseTime == nil {
		return ErrBranchClosed
	}

	if start.IsBefore(*day.OpenTime) {
		return ErrOutsideWorkingHours
	}

	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return ErrOutsideWorkingHours
	}

	if end.IsAfter(*day.CloseTime) {
		return ErrOutsideWorkingHours
	}

	return nil
}

// hasOverlap возвращает true, если интервал [startAt, endAt) пересекается
// с активной записью специалиста
func hasOverlap(startAt, endAt time.Time, specialistID int64, existing []*domain.Appointment) bool {
	for _, apt := range existing {
		if apt.SpecialistID != specialistID {
			continue
		}
		if !apt.IsActive() {
			continue
		}
		if apt.Overlaps(startAt, endAt) {
			return true
		}
	}
	return false
}
