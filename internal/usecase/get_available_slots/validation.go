package get_available_slots

import (
	"fmt"
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// validateRequest валидирует входные данные запроса
// Отсутствие специалиста, филиала, даты или услуг - ошибка MissingParameters
func validateRequest(req *Request) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: businessID is required", ErrMissingParameters)
	}

	if req.BranchID <= 0 {
		return fmt.Errorf("%w: branchID is required", ErrMissingParameters)
	}

	if req.SpecialistID <= 0 {
		return fmt.Errorf("%w: specialistID is required", ErrMissingParameters)
	}

	if len(req.ServiceIDs) == 0 {
		return fmt.Errorf("%w: at least one serviceID is required", ErrMissingParameters)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrMissingParameters)
	}

	if err := req.Date.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	return nil
}

// validateDate проверяет дату против ограничения advanceBookingDays
// Сравнение ведется по локальным датам в зоне бизнеса
func validateDate(requestDate, today types.DateString, advanceBookingDays int) error {
	// Дата в прошлом отсекается на уровне фильтрации слотов,
	// здесь проверяем только верхнюю границу
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

// validateBranchExists проверяет, что филиал существует в бизнесе
func validateBranchExists(business *businessservice.Business, branchID int64) error {
	if business.FindBranch(branchID) == nil {
		return ErrBranchNotFound
	}
	return nil
}

// validateServiceAtBranch проверяет, что услуга оказывается в указанном филиале
func validateServiceAtBranch(service *businessservice.Service, branchID int64) error {
	if !service.AvailableAtBranch(branchID) {
		return ErrServiceNotAvailableAtBranch
	}
	return nil
}
