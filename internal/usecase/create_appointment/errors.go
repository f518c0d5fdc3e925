package create_appointment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("business not found")

	// ErrBranchNotFound возвращается, когда филиал не найден в бизнесе
	ErrBranchNotFound = errors.New("branch not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceNotAvailableAtBranch возвращается, когда услуга не оказывается в филиале
	ErrServiceNotAvailableAtBranch = errors.New("service is not available at this branch")

	// ErrBranchClosed возвращается, когда филиал закрыт в указанную дату
	ErrBranchClosed = errors.New("branch is closed on this date")

	// ErrOutsideWorkingHours возвращается, когда интервал записи не помещается в рабочие часы
	ErrOutsideWorkingHours = errors.New("appointment does not fit into working hours")

	// ErrSlotNotAvailable возвращается, когда интервал пересекается с существующей записью
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrInvalidDate возвращается при некорректной дате записи
	ErrInvalidDate = errors.New("invalid appointment date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("date is too far in the future")

	// ErrTooLateToBook возвращается при нарушении минимального времени до записи
	ErrTooLateToBook = errors.New("too late to book this slot")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
