package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointment_StatusHelpers(t *testing.T) {
	tests := []struct {
		status      AppointmentStatus
		active      bool
		terminal    bool
		cancellable bool
	}{
		{StatusPending, true, false, true},
		{StatusConfirmed, true, false, true},
		{StatusInProgress, true, false, true},
		{StatusCompleted, false, true, false},
		{StatusCanceled, false, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			a := &Appointment{Status: tt.status}
			assert.Equal(t, tt.active, a.IsActive())
			assert.Equal(t, tt.terminal, a.IsTerminal())
			assert.Equal(t, tt.cancellable, a.CanBeCancelled())
		})
	}
}

func TestAppointment_ServiceTotals(t *testing.T) {
	a := &Appointment{
		Services: []AppointmentService{
			{ServiceID: 1, Name: "Стрижка", DurationMinutes: 60, Price: 1500},
			{ServiceID: 2, Name: "Укладка", DurationMinutes: 30, Price: 800.50},
		},
	}

	assert.Equal(t, 90, a.TotalDurationMinutes())
	assert.InDelta(t, 2300.50, a.ServicesTotal(), 0.001)

	empty := &Appointment{}
	assert.Equal(t, 0, empty.TotalDurationMinutes())
	assert.Equal(t, 0.0, empty.ServicesTotal())
}

func TestAppointment_Overlaps(t *testing.T) {
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	a := &Appointment{
		StartAt: base,
		EndAt:   base.Add(time.Hour),
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"identical interval", base, base.Add(time.Hour), true},
		{"contained interval", base.Add(15 * time.Minute), base.Add(30 * time.Minute), true},
		{"overlaps start", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), true},
		{"overlaps end", base.Add(30 * time.Minute), base.Add(90 * time.Minute), true},
		// Смежные интервалы не пересекаются
		{"ends where appointment starts", base.Add(-time.Hour), base, false},
		{"starts where appointment ends", base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"fully before", base.Add(-2 * time.Hour), base.Add(-time.Hour), false},
		{"fully after", base.Add(2 * time.Hour), base.Add(3 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.start, tt.end))
		})
	}
}

func TestParseAppointmentStatus(t *testing.T) {
	for _, valid := range []string{"pending", "confirmed", "in_progress", "completed", "canceled"} {
		status, ok := ParseAppointmentStatus(valid)
		assert.True(t, ok)
		assert.Equal(t, AppointmentStatus(valid), status)
	}

	_, ok := ParseAppointmentStatus("cancelled")
	assert.False(t, ok)

	_, ok = ParseAppointmentStatus("")
	assert.False(t, ok)
}

func TestParseEvidenceKind(t *testing.T) {
	kind, ok := ParseEvidenceKind("before")
	assert.True(t, ok)
	assert.Equal(t, EvidenceBefore, kind)

	kind, ok = ParseEvidenceKind("after")
	assert.True(t, ok)
	assert.Equal(t, EvidenceAfter, kind)

	_, ok = ParseEvidenceKind("during")
	assert.False(t, ok)
}

func TestSchedulingConfig_Hierarchy(t *testing.T) {
	branchID := int64(5)
	serviceID := int64(7)

	global := &SchedulingConfig{BusinessID: 1}
	assert.True(t, global.IsGlobalConfig())
	assert.False(t, global.IsBranchSpecific())
	assert.False(t, global.IsServiceAtBranch())

	branch := &SchedulingConfig{BusinessID: 1, BranchID: &branchID}
	assert.False(t, branch.IsGlobalConfig())
	assert.True(t, branch.IsBranchSpecific())
	assert.False(t, branch.IsServiceAtBranch())

	serviceAtBranch := &SchedulingConfig{BusinessID: 1, BranchID: &branchID, ServiceID: &serviceID}
	assert.False(t, serviceAtBranch.IsGlobalConfig())
	assert.False(t, serviceAtBranch.IsBranchSpecific())
	assert.True(t, serviceAtBranch.IsServiceAtBranch())

	unlimited := &SchedulingConfig{AdvanceBookingDays: 0}
	assert.False(t, unlimited.HasAdvanceBookingLimit())

	limited := &SchedulingConfig{AdvanceBookingDays: 30}
	assert.True(t, limited.HasAdvanceBookingLimit())
}
