package timezone

import "errors"

var (
	// ErrInvalidCivilTime возвращается при некорректной дате или времени
	// (несуществующая календарная дата, время вне диапазона 00:00-23:59)
	ErrInvalidCivilTime = errors.New("timezone: invalid civil date/time")

	// ErrZoneConversion возвращается при невозможности выполнить конвертацию:
	// неизвестная IANA зона или локальное время, не существующее из-за перевода часов.
	// Тихого fallback на UTC нет - вызывающий обязан обработать ошибку
	ErrZoneConversion = errors.New("timezone: zone conversion failed")
)
