package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonmate/SM-AppointmentService/internal/domain"
	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

func civil(date, tm string) domain.CivilDateTime {
	return domain.CivilDateTime{
		Date: types.DateString(date),
		Time: types.TimeString(tm),
	}
}

func TestLoadZone(t *testing.T) {
	loc, err := LoadZone("America/Bogota")
	require.NoError(t, err)
	assert.Equal(t, "America/Bogota", loc.String())

	_, err = LoadZone("")
	assert.ErrorIs(t, err, ErrZoneConversion)

	_, err = LoadZone("Mars/Olympus_Mons")
	assert.ErrorIs(t, err, ErrZoneConversion)
}

func TestToInstant(t *testing.T) {
	tests := []struct {
		name  string
		civil domain.CivilDateTime
		zone  string
		want  time.Time
	}{
		{
			// Богота круглый год UTC-5
			name:  "Bogota fixed offset",
			civil: civil("2025-03-10", "09:00"),
			zone:  "America/Bogota",
			want:  time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		},
		{
			// Нью-Йорк до перевода часов: EST, UTC-5
			name:  "New York before DST switch",
			civil: civil("2025-03-08", "09:00"),
			zone:  "America/New_York",
			want:  time.Date(2025, 3, 8, 14, 0, 0, 0, time.UTC),
		},
		{
			// Нью-Йорк после перевода часов: EDT, UTC-4.
			// Одно и то же локальное время даёт другой момент UTC
			name:  "New York after DST switch",
			civil: civil("2025-03-10", "09:00"),
			zone:  "America/New_York",
			want:  time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
		},
		{
			name:  "Madrid winter",
			civil: civil("2025-01-15", "10:30"),
			zone:  "Europe/Madrid",
			want:  time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "Madrid summer",
			civil: civil("2025-07-15", "10:30"),
			zone:  "Europe/Madrid",
			want:  time.Date(2025, 7, 15, 8, 30, 0, 0, time.UTC),
		},
		{
			name:  "UTC midnight",
			civil: civil("2025-06-01", "00:00"),
			zone:  "UTC",
			want:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInstant(tt.civil, tt.zone)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestToInstant_DSTGap(t *testing.T) {
	// 2025-03-09 02:30 в Нью-Йорке не существует: часы прыгают с 02:00 на 03:00
	_, err := ToInstant(civil("2025-03-09", "02:30"), "America/New_York")
	assert.ErrorIs(t, err, ErrZoneConversion)

	// 2025-03-30 02:30 в Мадриде не существует
	_, err = ToInstant(civil("2025-03-30", "02:30"), "Europe/Madrid")
	assert.ErrorIs(t, err, ErrZoneConversion)

	// Граница гэпа: 03:00 уже существует
	got, err := ToInstant(civil("2025-03-09", "03:00"), "America/New_York")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 9, 7, 0, 0, 0, time.UTC)))
}

func TestToInstant_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		civil domain.CivilDateTime
		zone  string
	}{
		{"invalid date", civil("2025-02-30", "09:00"), "UTC"},
		{"bad date format", civil("10.03.2025", "09:00"), "UTC"},
		{"bad time format", civil("2025-03-10", "9am"), "UTC"},
		{"empty time", civil("2025-03-10", ""), "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToInstant(tt.civil, tt.zone)
			assert.ErrorIs(t, err, ErrInvalidCivilTime)
		})
	}

	_, err := ToInstant(civil("2025-03-10", "09:00"), "Not/AZone")
	assert.ErrorIs(t, err, ErrZoneConversion)
}

func TestToCivil(t *testing.T) {
	instant := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	got, err := ToCivil(instant, "America/Bogota")
	require.NoError(t, err)
	assert.Equal(t, types.DateString("2025-03-10"), got.Date)
	assert.Equal(t, types.TimeString("09:00"), got.Time)

	// Перевод через полночь: вечер UTC это уже следующий день в Мадриде летом
	got, err = ToCivil(time.Date(2025, 7, 15, 22, 30, 0, 0, time.UTC), "Europe/Madrid")
	require.NoError(t, err)
	assert.Equal(t, types.DateString("2025-07-16"), got.Date)
	assert.Equal(t, types.TimeString("00:30"), got.Time)

	_, err = ToCivil(instant, "Not/AZone")
	assert.ErrorIs(t, err, ErrZoneConversion)
}

// Round-trip: ToCivil(ToInstant(x)) воспроизводит x в точности
func TestRoundTrip(t *testing.T) {
	cases := []struct {
		civil domain.CivilDateTime
		zone  string
	}{
		{civil("2025-03-10", "09:00"), "America/Bogota"},
		{civil("2025-03-08", "23:45"), "America/New_York"},
		{civil("2025-03-09", "03:00"), "America/New_York"},
		{civil("2025-11-02", "01:30"), "America/Bogota"},
		{civil("2025-06-21", "12:00"), "Asia/Tokyo"},
		{civil("2025-12-31", "23:59"), "Pacific/Auckland"},
	}

	for _, tc := range cases {
		instant, err := ToInstant(tc.civil, tc.zone)
		require.NoError(t, err, "zone=%s civil=%s %s", tc.zone, tc.civil.Date, tc.civil.Time)

		back, err := ToCivil(instant, tc.zone)
		require.NoError(t, err)
		assert.Equal(t, tc.civil, back, "round-trip drift in zone %s", tc.zone)
	}
}

func TestDateRangeToInstantRange(t *testing.T) {
	start, end, err := DateRangeToInstantRange(
		types.DateString("2025-03-10"),
		types.DateString("2025-03-12"),
		"America/Bogota",
	)
	require.NoError(t, err)

	// 00:00 локальных первого дня и 23:59 локальных последнего дня
	assert.True(t, start.Equal(time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC)))
	assert.True(t, end.Equal(time.Date(2025, 3, 13, 4, 59, 0, 0, time.UTC)))

	_, _, err = DateRangeToInstantRange(
		types.DateString("bad-date"),
		types.DateString("2025-03-12"),
		"America/Bogota",
	)
	require.Error(t, err)
}

func TestIsFutureOrPresent(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	// 09:00 в Боготе это ровно 14:00 UTC - момент "сейчас" ещё не прошёл
	ok, err := IsFutureOrPresent(civil("2025-03-10", "09:00"), "America/Bogota", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsFutureOrPresent(civil("2025-03-10", "08:59"), "America/Bogota", now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsFutureOrPresent(civil("2025-03-11", "09:00"), "America/Bogota", now)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = IsFutureOrPresent(civil("2025-03-10", "09:00"), "Not/AZone", now)
	require.Error(t, err)
}
