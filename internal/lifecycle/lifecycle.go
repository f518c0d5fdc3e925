package lifecycle

import (
	"strings"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
)

// Пакет lifecycle - единственный авторитетный путь смены статуса записи.
//
// Таблица переходов:
//
//	pending     -- confirm  --> confirmed
//	confirmed   -- start    --> in_progress   (гейт: согласие подписано, если требуется)
//	in_progress -- complete --> completed
//	pending | confirmed | in_progress -- cancel --> canceled   (гейт: непустая причина)
//
// completed и canceled терминальны: из них нет ни одного перехода.
// Никакой другой код не выставляет статус напрямую.

// Event событие жизненного цикла записи
type Event string

const (
	EventConfirm  Event = "confirm"
	EventStart    Event = "start"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

// ParseEvent парсит событие из строки
func ParseEvent(s string) (Event, bool) {
	switch Event(s) {
	case EventConfirm, EventStart, EventComplete, EventCancel:
		return Event(s), true
	default:
		return "", false
	}
}

// Гейты переходов
const (
	GuardConsent = "consent"
	GuardReason  = "reason"
)

// Guards значения гейтов, прочитанные из свежего состояния записи
// непосредственно перед решением о переходе
type Guards struct {
	RequiresConsent    bool
	HasSignedConsent   bool
	CancellationReason string
}

// Transition вычисляет новый статус для события event из статуса current.
// Возвращает GuardNotSatisfiedError при невыполненном условии перехода
// и IllegalTransitionError для переходов, отсутствующих в таблице
func Transition(current domain.AppointmentStatus, event Event, g Guards) (domain.AppointmentStatus, error) {
	switch event {
	case EventConfirm:
		if current == domain.StatusPending {
			return domain.StatusConfirmed, nil
		}

	case EventStart:
		if current == domain.StatusConfirmed {
			if g.RequiresConsent && !g.HasSignedConsent {
				return "", &GuardNotSatisfiedError{Missing: GuardConsent}
			}
			return domain.StatusInProgress, nil
		}

	case EventComplete:
		if current == domain.StatusInProgress {
			return domain.StatusCompleted, nil
		}

	case EventCancel:
		switch current {
		case domain.StatusPending, domain.StatusConfirmed, domain.StatusInProgress:
			if strings.TrimSpace(g.CancellationReason) == "" {
				return "", &GuardNotSatisfiedError{Missing: GuardReason}
			}
			return domain.StatusCanceled, nil
		}
	}

	return "", &IllegalTransitionError{From: current, Event: event}
}

// CanStart возвращает nil, если запись можно перевести в in_progress,
// иначе ошибку перехода (используется workflow для предпросмотра гейтов)
func CanStart(current domain.AppointmentStatus, g Guards) error {
	_, err := Transition(current, EventStart, g)
	return err
}
