package workflow

import (
	"fmt"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
)

// Пакет workflow - последовательность шагов процедур начала и завершения записи.
//
// Процедура начала:  CONSENT (если требуется и не подписано) -> BEFORE_EVIDENCE
// (пропускаемый) -> CONFIRM_START -> lifecycle.start.
// Процедура завершения: AFTER_EVIDENCE (пропускаемый) -> lifecycle.complete.
//
// Оркестратор синхронный и без таймеров: он только решает, какой шаг показать
// следующим. Вызов lifecycle выполняют usecases start_appointment и
// complete_appointment. Прерывание на любом шаге не имеет побочных эффектов,
// кроме уже загруженных фото (их хранение - зона ответственности evidence-сервиса).

// Step именованный шаг workflow
type Step string

const (
	StepConsent        Step = "CONSENT"
	StepBeforeEvidence Step = "BEFORE_EVIDENCE"
	StepConfirmStart   Step = "CONFIRM_START"
	StepAfterEvidence  Step = "AFTER_EVIDENCE"
	StepDone           Step = "DONE"
)

// Gates состояние гейтов записи, прочитанное перед вычислением шага
type Gates struct {
	RequiresConsent   bool
	HasSignedConsent  bool
	HasBeforeEvidence bool
	HasAfterEvidence  bool
}

// GatesFromAppointment собирает гейты из текущего состояния записи
func GatesFromAppointment(a *domain.Appointment) Gates {
	return Gates{
		RequiresConsent:   a.RequiresConsent,
		HasSignedConsent:  a.HasSignedConsent,
		HasBeforeEvidence: a.HasBeforeEvidence,
		HasAfterEvidence:  a.HasAfterEvidence,
	}
}

// BeginStart возвращает первый шаг процедуры начала записи.
// Согласие всегда предшествует фотофиксации: если оно требуется и не подписано,
// первым показывается CONSENT
func BeginStart(g Gates) Step {
	if g.RequiresConsent && !g.HasSignedConsent {
		return StepConsent
	}
	return StepBeforeEvidence
}

// NextStart возвращает шаг, следующий за current в процедуре начала.
// Шаг BEFORE_EVIDENCE пропускаемый: переход к CONFIRM_START происходит
// и после загрузки фото, и после явного пропуска
func NextStart(current Step, g Gates) (Step, error) {
	switch current {
	case StepConsent:
		// Подписанное согласие обязательно для движения дальше
		if g.RequiresConsent && !g.HasSignedConsent {
			return StepConsent, nil
		}
		return StepBeforeEvidence, nil
	case StepBeforeEvidence:
		return StepConfirmStart, nil
	case StepConfirmStart:
		return StepDone, nil
	default:
		return "", fmt.Errorf("workflow: step %q is not part of the start procedure", current)
	}
}

// BeginComplete возвращает первый шаг процедуры завершения записи
func BeginComplete() Step {
	return StepAfterEvidence
}

// NextComplete возвращает шаг, следующий за current в процедуре завершения.
// Пропуск AFTER_EVIDENCE сразу ведёт к завершению
func NextComplete(current Step) (Step, error) {
	switch current {
	case StepAfterEvidence:
		return StepDone, nil
	default:
		return "", fmt.Errorf("workflow: step %q is not part of the complete procedure", current)
	}
}

// IsStartStep возвращает true, если шаг принадлежит процедуре начала
func IsStartStep(s Step) bool {
	return s == StepConsent || s == StepBeforeEvidence || s == StepConfirmStart
}
