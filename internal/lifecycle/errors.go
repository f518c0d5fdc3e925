package lifecycle

import (
	"fmt"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
)

// GuardNotSatisfiedError возвращается, когда переход запрещён невыполненным условием.
// Missing называет условие, чтобы вызывающий мог вернуть пользователя к нужному шагу
type GuardNotSatisfiedError struct {
	Missing string
}

func (e *GuardNotSatisfiedError) Error() string {
	return fmt.Sprintf("lifecycle: guard not satisfied: %s required", e.Missing)
}

// IllegalTransitionError возвращается при переходе, отсутствующем в таблице переходов
type IllegalTransitionError struct {
	From  domain.AppointmentStatus
	Event Event
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("lifecycle: illegal transition: event %q from status %q", e.Event, e.From)
}
