package timezone

import (
	"fmt"
	"time"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

// Пакет timezone конвертирует локальные дату и время ("время на стене" в зоне бизнеса)
// в абсолютный момент UTC и обратно.
//
// Смещение зоны вычисляется на конкретную дату и время, а не "сейчас":
// рабочие часы бизнеса могут пересекать перевод часов, и использование
// текущего смещения дало бы запись на неправильный час.

// LoadZone валидирует и загружает IANA зону (например, "America/Bogota")
func LoadZone(zone string) (*time.Location, error) {
	if zone == "" {
		return nil, fmt.Errorf("%w: empty zone name", ErrZoneConversion)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown zone %q: %v", ErrZoneConversion, zone, err)
	}
	return loc, nil
}

// ToInstant конвертирует локальные дату и время в зоне zone в момент UTC.
//
// Гарантия: форматирование результата обратно в zone воспроизводит civil в точности.
// Локальное время, не существующее из-за перевода часов вперёд (DST gap),
// считается ошибкой конвертации, а не тихо сдвигается.
func ToInstant(civil domain.CivilDateTime, zone string) (time.Time, error) {
	if err := civil.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCivilTime, err)
	}

	loc, err := LoadZone(zone)
	if err != nil {
		return time.Time{}, err
	}

	year, month, day, err := civil.Date.Components()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCivilTime, err)
	}

	minutes, err := civil.Time.Minutes()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCivilTime, err)
	}

	// time.Date вычисляет смещение зоны на указанный момент (с учётом DST)
	instant := time.Date(year, month, day, minutes/60, minutes%60, 0, 0, loc)

	// Несуществующее локальное время time.Date нормализует сдвигом -
	// обнаруживаем это обратной проверкой
	back := instant.In(loc)
	if back.Year() != year || back.Month() != month || back.Day() != day ||
		back.Hour() != minutes/60 || back.Minute() != minutes%60 {
		return time.Time{}, fmt.Errorf("%w: local time %s %s does not exist in zone %q",
			ErrZoneConversion, civil.Date, civil.Time, zone)
	}

	return instant.UTC(), nil
}

// ToCivil конвертирует момент UTC в локальные дату и время в зоне zone.
// Точная обратная операция к ToInstant: round-trip без дрейфа
func ToCivil(instant time.Time, zone string) (domain.CivilDateTime, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return domain.CivilDateTime{}, err
	}

	local := instant.In(loc)
	return domain.CivilDateTime{
		Date: types.NewDateString(local),
		Time: types.NewTimeString(local),
	}, nil
}

// DateRangeToInstantRange конвертирует диапазон дат в диапазон моментов UTC.
// startDate интерпретируется как локальные 00:00, endDate как локальные 23:59
// (обе даты включительно)
func DateRangeToInstantRange(startDate, endDate types.DateString, zone string) (time.Time, time.Time, error) {
	start, err := ToInstant(domain.CivilDateTime{Date: startDate, Time: "00:00"}, zone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err := ToInstant(domain.CivilDateTime{Date: endDate, Time: "23:59"}, zone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

// IsFutureOrPresent возвращает true, если локальный момент в зоне zone не раньше now
func IsFutureOrPresent(civil domain.CivilDateTime, zone string, now time.Time) (bool, error) {
	instant, err := ToInstant(civil, zone)
	if err != nil {
		return false, err
	}
	return !instant.Before(now), nil
}
