package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	start := time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC)

	e, err := NewEvent(uuid.New(), "Audience TGI", TypeHearing, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, e.Status)
	assert.Equal(t, DefaultReminderMinutes, e.ReminderMinutes)

	same, err := NewEvent(uuid.New(), "Dépôt", TypeDeadline, start, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, start, same.EndAt)

	_, err = NewEvent(uuid.New(), "Bad", TypeMeeting, start, start.Add(-time.Minute))
	assert.Error(t, err)
	_, err = NewEvent(uuid.New(), "", TypeMeeting, start, start)
	assert.Error(t, err)
	_, err = NewEvent(uuid.New(), "X", EventType("party"), start, start)
	assert.Error(t, err)
}

func TestEvent_ReminderDue(t *testing.T) {
	start := time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC)
	e, _ := NewEvent(uuid.New(), "Audience", TypeHearing, start, start)
	require.NoError(t, e.SetReminder(60))

	assert.False(t, e.ReminderDue(start.Add(-61*time.Minute)))
	assert.True(t, e.ReminderDue(start.Add(-60*time.Minute)))
	assert.True(t, e.ReminderDue(start.Add(-time.Minute)))
	assert.False(t, e.ReminderDue(start), "no reminder once the event started")

	e.MarkReminderSent(start.Add(-30 * time.Minute))
	assert.False(t, e.ReminderDue(start.Add(-10*time.Minute)))

	require.NoError(t, e.Reschedule("Audience", TypeHearing, start.Add(24*time.Hour), start.Add(24*time.Hour)))
	assert.Nil(t, e.ReminderSentAt, "moving the event re-arms the reminder")

	require.NoError(t, e.SetReminder(0))
	assert.False(t, e.ReminderDue(start))
	assert.Error(t, e.SetReminder(-5))
}

func TestEvent_Lifecycle(t *testing.T) {
	start := time.Now().Add(time.Hour)
	e, _ := NewEvent(uuid.New(), "RDV", TypeMeeting, start, start)

	require.NoError(t, e.Cancel())
	assert.Error(t, e.Cancel())
	assert.Error(t, e.Complete())
	assert.False(t, e.ReminderDue(start.Add(-time.Minute)))
	assert.Error(t, e.Reschedule("RDV", TypeMeeting, start, start))
}
