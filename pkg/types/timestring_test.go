package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeString_Validate(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, s := range valid {
		assert.NoError(t, TimeString(s).Validate(), s)
	}

	invalid := []string{"", "24:00", "9:30", "09:60", "09-30", "morning"}
	for _, s := range invalid {
		assert.Error(t, TimeString(s).Validate(), s)
	}
}

func TestTimeString_Minutes(t *testing.T) {
	m, err := TimeString("00:00").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	m, err = TimeString("09:30").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = TimeString("23:59").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 1439, m)

	_, err = TimeString("bad").Minutes()
	assert.Error(t, err)
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("09:30").AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:30"), got)

	got, err = TimeString("09:45").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:15"), got)

	got, err = TimeString("10:00").AddMinutes(-30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:30"), got)

	// Выход за пределы суток
	_, err = TimeString("23:30").AddMinutes(60)
	assert.Error(t, err)

	_, err = TimeString("00:30").AddMinutes(-60)
	assert.Error(t, err)
}

func TestTimeString_Comparison(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("10:30").IsAfter("10:00"))
	assert.False(t, TimeString("10:00").IsAfter("10:00"))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan("09:30:00"))
	assert.Equal(t, TimeString("09:30"), ts)

	require.NoError(t, ts.Scan([]byte("18:00:00")))
	assert.Equal(t, TimeString("18:00"), ts)

	require.NoError(t, ts.Scan(time.Date(2025, 3, 10, 14, 45, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("14:45"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestDateString_Validate(t *testing.T) {
	valid := []string{"2025-01-01", "2024-02-29", "2025-12-31"}
	for _, s := range valid {
		assert.NoError(t, DateString(s).Validate(), s)
	}

	// 2025 не високосный; нормализация time.Parse не должна маскировать ошибку
	invalid := []string{"", "2025-02-29", "2025-02-30", "2025-13-01", "10.03.2025", "2025-3-1"}
	for _, s := range invalid {
		assert.Error(t, DateString(s).Validate(), s)
	}
}

func TestDateString_Components(t *testing.T) {
	year, month, day, err := DateString("2025-03-10").Components()
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.March, month)
	assert.Equal(t, 10, day)

	_, _, _, err = DateString("bad").Components()
	assert.Error(t, err)
}

func TestDateString_Weekday(t *testing.T) {
	wd, err := DateString("2025-03-10").Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, wd)

	wd, err = DateString("2025-03-16").Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, wd)
}

func TestDateString_Scan(t *testing.T) {
	var ds DateString

	require.NoError(t, ds.Scan("2025-03-10T00:00:00Z"))
	assert.Equal(t, DateString("2025-03-10"), ds)

	require.NoError(t, ds.Scan(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, DateString("2025-03-10"), ds)

	require.NoError(t, ds.Scan(nil))
	assert.True(t, ds.IsZero())
}
