package start_appointment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrUnknownAction возвращается при неизвестном действии workflow
	ErrUnknownAction = errors.New("unknown workflow action")

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAccessDenied возвращается, когда пользователь не специалист записи
	// и не менеджер бизнеса
	ErrAccessDenied = errors.New("access denied")

	// ErrConsentNotSigned возвращается, когда согласие требуется, но не подписано
	ErrConsentNotSigned = errors.New("consent is required but not signed")

	// ErrIllegalState возвращается, когда статус записи не допускает действие
	ErrIllegalState = errors.New("appointment status does not allow this action")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
