package get_available_slots

import "errors"

var (
	// ErrMissingParameters возвращается, когда не заданы обязательные параметры
	// (специалист, филиал, дата или услуги)
	ErrMissingParameters = errors.New("missing required parameters")

	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("business not found")

	// ErrBranchNotFound возвращается, когда филиал не найден в бизнесе
	ErrBranchNotFound = errors.New("branch not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceNotAvailableAtBranch возвращается, когда услуга не оказывается в филиале
	ErrServiceNotAvailableAtBranch = errors.New("service is not available at this branch")

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid appointment date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("date is too far in the future")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
