package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateFormat формат даты YYYY-MM-DD
const DateFormat = "2006-01-02"

// DateString календарная дата в формате "YYYY-MM-DD" (civil date, без времени и зоны)
type DateString string

// NewDateString создает DateString из time.Time (берёт только дату)
func NewDateString(t time.Time) DateString {
	return DateString(t.Format(DateFormat))
}

// NewDateStringFromString создает DateString из строки с валидацией
func NewDateStringFromString(s string) (DateString, error) {
	ds := DateString(s)
	if err := ds.Validate(); err != nil {
		return "", err
	}
	return ds, nil
}

// Validate проверяет, что значение является существующей календарной датой
func (d DateString) Validate() error {
	parsed, err := time.Parse(DateFormat, string(d))
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", string(d))
	}
	// time.Parse нормализует некорректные даты (например, 2025-02-30 -> 2025-03-02),
	// поэтому сверяем обратное форматирование
	if parsed.Format(DateFormat) != string(d) {
		return fmt.Errorf("invalid date %q: no such calendar date", string(d))
	}
	return nil
}

// IsZero возвращает true, если значение не задано
func (d DateString) IsZero() bool {
	return d == ""
}

// String возвращает строковое представление "YYYY-MM-DD"
func (d DateString) String() string {
	return string(d)
}

// Components возвращает год, месяц и день даты
func (d DateString) Components() (year int, month time.Month, day int, err error) {
	parsed, err := time.Parse(DateFormat, string(d))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", string(d))
	}
	y, m, dd := parsed.Date()
	return y, m, dd, nil
}

// Weekday возвращает день недели для даты
func (d DateString) Weekday() (time.Weekday, error) {
	parsed, err := time.Parse(DateFormat, string(d))
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", string(d))
	}
	return parsed.Weekday(), nil
}

// Value реализует driver.Valuer для записи в БД
func (d DateString) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return string(d), nil
}

// Scan реализует sql.Scanner для чтения из БД
// Поддерживает string, []byte и time.Time (колонки типа DATE)
func (d *DateString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
		return nil
	case string:
		if len(v) > 10 {
			v = v[:10]
		}
		*d = DateString(v)
		return nil
	case []byte:
		s := string(v)
		if len(s) > 10 {
			s = s[:10]
		}
		*d = DateString(s)
		return nil
	case time.Time:
		*d = NewDateString(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into DateString", src)
	}
}
