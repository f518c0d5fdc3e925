package get_available_slots

import (
	"errors"
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/internal/timezone"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// computeSlots вычисляет доступные слоты специалиста на локальную дату date.
//
// Кандидаты генерируются в локальном времени бизнеса с шагом stepMinutes
// от открытия до (закрытие - длительность) включительно, затем каждый кандидат
// конвертируется в UTC на конкретную дату (с учётом перевода часов) и проверяется:
// - не пересекается ли интервал [start, end) с активной записью специалиста
// - не начинается ли слот раньше notBefore (текущее время + минимальный notice)
//
// Результат отсортирован по возрастанию времени начала и вычисляется заново
// на каждый вызов - слоты нигде не кешируются
func computeSlots(
	day domain.DaySchedule,
	date types.DateString,
	zone string,
	stepMinutes int,
	totalDurationMinutes int,
	specialistID int64,
	existing []*domain.Appointment,
	notBefore time.Time,
) ([]domain.AvailableSlot, error) {
	slots := make([]domain.AvailableSlot, 0)

	// Если филиал закрыт в этот день - слотов нет
	if !day.IsOpen || day.OpenTime == nil || day.CloseTime == nil {
		return slots, nil
	}

	openTime := *day.OpenTime
	closeTime := *day.CloseTime
	if err := openTime.Validate(); err != nil {
		return nil, err
	}
	if err := closeTime.Validate(); err != nil {
		return nil, err
	}

	current := openTime
	for !current.IsAfter(closeTime) {
		slotEnd, err := current.AddMinutes(totalDurationMinutes)
		if err != nil {
			// Конец слота вышел за пределы суток
			break
		}
		if slotEnd.IsAfter(closeTime) {
			break
		}

		candidate, ok, err := buildSlot(date, current, slotEnd, zone, totalDurationMinutes)
		if err != nil {
			return nil, err
		}

		if ok && !overlapsExisting(candidate, specialistID, existing) && !candidate.StartAt.Before(notBefore) {
			slots = append(slots, candidate)
		}

		current, err = current.AddMinutes(stepMinutes)
		if err != nil {
			break
		}
	}

	return slots, nil
}

// buildSlot конвертирует локальный интервал кандидата в UTC
// Локальное время, не существующее из-за перевода часов, не ошибка -
// такой кандидат просто не является бронируемым слотом (ok=false)
func buildSlot(
	date types.DateString,
	start, end types.TimeString,
	zone string,
	durationMinutes int,
) (domain.AvailableSlot, bool, error) {
	startAt, err := timezone.ToInstant(domain.CivilDateTime{Date: date, Time: start}, zone)
	if err != nil {
		if errors.Is(err, timezone.ErrZoneConversion) && !isUnknownZone(zone) {
			return domain.AvailableSlot{}, false, nil
		}
		return domain.AvailableSlot{}, false, err
	}

	endAt, err := timezone.ToInstant(domain.CivilDateTime{Date: date, Time: end}, zone)
	if err != nil {
		if errors.Is(err, timezone.ErrZoneConversion) && !isUnknownZone(zone) {
			return domain.AvailableSlot{}, false, nil
		}
		return domain.AvailableSlot{}, false, err
	}

	return domain.AvailableSlot{
		StartTime:       start,
		EndTime:         end,
		StartAt:         startAt,
		EndAt:           endAt,
		DurationMinutes: durationMinutes,
	}, true, nil
}

// isUnknownZone возвращает true, если зона не загружается вовсе
// (в отличие от несуществующего локального времени в валидной зоне)
func isUnknownZone(zone string) bool {
	_, err := timezone.LoadZone(zone)
	return err != nil
}

// overlapsExisting возвращает true, если интервал кандидата пересекается
// с активной записью того же специалиста
// Записи в статусах canceled и completed слот не блокируют
func overlapsExisting(candidate domain.AvailableSlot, specialistID int64, existing []*domain.Appointment) bool {
	for _, apt := range existing {
		if apt.SpecialistID != specialistID {
			continue
		}
		if !apt.IsActive() {
			continue
		}
		// Пересечение полуинтервалов [start, end): границы не считаются
		if apt.Overlaps(candidate.StartAt, candidate.EndAt) {
			return true
		}
	}
	return false
}
