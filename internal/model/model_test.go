package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, AppointmentStatusScheduled.CanTransitionTo(AppointmentStatusCompleted))
	assert.True(t, AppointmentStatusCompleted.CanTransitionTo(AppointmentStatusCompleted))
	assert.False(t, AppointmentStatusCompleted.CanTransitionTo(AppointmentStatusScheduled))
	assert.False(t, AppointmentStatus("cancelled").Valid())
}

func TestHasSlotIn(t *testing.T) {
	morning := &Doctor{AvailableTimes: []string{"09:00", "11:30"}}
	mixed := &Doctor{AvailableTimes: []string{"bogus", "12:00"}}
	empty := &Doctor{}

	assert.True(t, morning.HasSlotIn(AM))
	assert.False(t, morning.HasSlotIn(PM))
	assert.True(t, mixed.HasSlotIn(PM))
	assert.False(t, mixed.HasSlotIn(AM))
	assert.False(t, empty.HasSlotIn(AM))
}

func TestParseDayHalf(t *testing.T) {
	h, ok := ParseDayHalf(" pm ")
	assert.True(t, ok)
	assert.Equal(t, PM, h)

	_, ok = ParseDayHalf("noon")
	assert.False(t, ok)
}

func TestParseAppointmentTime(t *testing.T) {
	loc := time.FixedZone("clinic", 2*60*60)

	local, err := ParseAppointmentTime("2025-01-01T09:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 9, 0, 0, 0, loc), local)

	zoned, err := ParseAppointmentTime("2025-01-01T07:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, "09:00", zoned.Format(TimeOfDayLayout))

	_, err = ParseAppointmentTime("tomorrow", loc)
	assert.Error(t, err)
}

func TestAppointmentView(t *testing.T) {
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	detail := &AppointmentDetail{
		Appointment: Appointment{AppointmentTime: at, Status: AppointmentStatusScheduled},
		DoctorName:  "Dr. Lee",
	}

	view := detail.View(time.UTC)
	assert.Equal(t, "2025-01-01", view.AppointmentDate)
	assert.Equal(t, "09:00", view.TimeOfDay)
	assert.Equal(t, at.Add(time.Hour), view.EndTime)
	assert.Equal(t, "Dr. Lee", view.DoctorName)
}
