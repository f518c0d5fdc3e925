package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/salonmate/SM-AppointmentService/pkg/types"
)

func TestWeekSchedule_ForWeekday(t *testing.T) {
	open := types.TimeString("09:00")
	close := types.TimeString("18:00")

	week := WeekSchedule{
		Monday:  DaySchedule{IsOpen: true, OpenTime: &open, CloseTime: &close},
		Tuesday: DaySchedule{IsOpen: true, OpenTime: &open, CloseTime: &close},
		Sunday:  DaySchedule{IsOpen: false},
	}

	monday := week.ForWeekday(time.Monday)
	assert.True(t, monday.IsOpen)
	assert.Equal(t, open, *monday.OpenTime)
	assert.Equal(t, close, *monday.CloseTime)

	sunday := week.ForWeekday(time.Sunday)
	assert.False(t, sunday.IsOpen)
	assert.Nil(t, sunday.OpenTime)

	// День без явного расписания закрыт
	saturday := week.ForWeekday(time.Saturday)
	assert.False(t, saturday.IsOpen)
}
