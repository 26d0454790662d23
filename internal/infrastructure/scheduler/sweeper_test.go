package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lexdesk/backend/internal/application/calendar"
	"github.com/lexdesk/backend/internal/application/invoice"
	"github.com/lexdesk/backend/internal/application/subscription"
	"github.com/lexdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedRun struct {
	job    string
	failed int
	err    error
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []recordedRun
}

func (r *fakeRecorder) RecordJob(_ context.Context, job string, _ time.Duration, failed int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, recordedRun{job: job, failed: failed, err: err})
}

func (r *fakeRecorder) all() []recordedRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRun(nil), r.runs...)
}

type MockSweeper struct{ mock.Mock }

func (m *MockSweeper) Sweep(ctx context.Context) (subscription.SweepResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(subscription.SweepResult), args.Error(1)
}

type MockReminders struct{ mock.Mock }

func (m *MockReminders) SendReminders(ctx context.Context, horizon time.Duration) (calendar.ReminderRun, error) {
	args := m.Called(ctx, horizon)
	return args.Get(0).(calendar.ReminderRun), args.Error(1)
}

type MockOverdue struct{ mock.Mock }

func (m *MockOverdue) MarkOverdue(ctx context.Context) (invoice.OverdueRun, error) {
	args := m.Called(ctx)
	return args.Get(0).(invoice.OverdueRun), args.Error(1)
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:       true,
		SweepInterval: time.Hour,
		JobTimeout:    time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func TestSweeper_RunOnce_RunsJobsInOrder(t *testing.T) {
	subs := new(MockSweeper)
	reminders := new(MockReminders)
	overdue := new(MockOverdue)
	subs.On("Sweep", mock.Anything).Return(subscription.SweepResult{Scanned: 4, Expired: 1, Failed: 1}, nil)
	reminders.On("SendReminders", mock.Anything, 48*time.Hour).Return(calendar.ReminderRun{Checked: 2, Sent: 2}, nil)
	overdue.On("MarkOverdue", mock.Anything).Return(invoice.OverdueRun{Checked: 3, Marked: 3}, nil)

	rec := &fakeRecorder{}
	s := NewSweeper(testConfig(), rec, nil,
		SubscriptionSweepJob(subs, nil),
		EventRemindersJob(reminders, 48*time.Hour, nil),
		InvoiceOverdueJob(overdue, nil))

	require.NoError(t, s.RunOnce(context.Background()))

	subs.AssertExpectations(t)
	reminders.AssertExpectations(t)
	overdue.AssertExpectations(t)
	assert.Equal(t, []recordedRun{
		{job: JobSubscriptionSweep, failed: 1},
		{job: JobEventReminders},
		{job: JobInvoiceOverdue},
	}, rec.all())
}

func TestSweeper_RunOnce_FailingJobDoesNotStopOthers(t *testing.T) {
	boom := errors.New("database unavailable")
	var calls atomic.Int32
	failing := Job{Name: "failing", Run: func(context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	}}
	panicking := Job{Name: "panicking", Run: func(context.Context) (int, error) {
		panic("nil map")
	}}
	var ran bool
	healthy := Job{Name: "healthy", Run: func(context.Context) (int, error) {
		ran = true
		return 0, nil
	}}

	rec := &fakeRecorder{}
	s := NewSweeper(testConfig(), rec, nil, failing, panicking, healthy)
	require.NoError(t, s.RunOnce(context.Background()))

	assert.EqualValues(t, 3, calls.Load(), "one attempt plus two retries")
	assert.True(t, ran)
	runs := rec.all()
	require.Len(t, runs, 3)
	assert.ErrorIs(t, runs[0].err, boom)
	assert.ErrorIs(t, runs[1].err, errJobPanicked)
	assert.NoError(t, runs[2].err)
}

func TestSweeper_RunOnce_RetrySucceeds(t *testing.T) {
	var calls atomic.Int32
	flaky := Job{Name: "flaky", Run: func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("timeout")
		}
		return 0, nil
	}}
	rec := &fakeRecorder{}
	s := NewSweeper(testConfig(), rec, nil, flaky)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.EqualValues(t, 2, calls.Load())
	assert.NoError(t, rec.all()[0].err)
}

func TestSweeper_RunOnce_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	slow := Job{Name: "slow", Run: func(context.Context) (int, error) {
		close(started)
		<-release
		return 0, nil
	}}
	s := NewSweeper(testConfig(), nil, nil, slow)

	done := make(chan error)
	go func() { done <- s.RunOnce(context.Background()) }()
	<-started

	assert.ErrorIs(t, s.RunOnce(context.Background()), ErrRunInProgress)
	close(release)
	require.NoError(t, <-done)
}

func TestSweeper_JobTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.JobTimeout = 10 * time.Millisecond
	cfg.RetryAttempts = 0
	blocked := Job{Name: "blocked", Run: func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}
	rec := &fakeRecorder{}
	s := NewSweeper(cfg, rec, nil, blocked)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.ErrorIs(t, rec.all()[0].err, context.DeadlineExceeded)
}

func TestSweeper_StartStop(t *testing.T) {
	ran := make(chan struct{}, 1)
	job := Job{Name: "tick", Run: func(context.Context) (int, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return 0, nil
	}}
	s := NewSweeper(testConfig(), nil, nil, job)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("first sweep did not run on start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Trigger(context.Background()), ErrSchedulerNotRunning)
}

func TestSweeper_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	s := NewSweeper(cfg, nil, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestEventRemindersJob_DefaultHorizon(t *testing.T) {
	reminders := new(MockReminders)
	reminders.On("SendReminders", mock.Anything, 24*time.Hour).Return(calendar.ReminderRun{Failed: 2}, nil)

	failed, err := EventRemindersJob(reminders, 0, nil).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, failed)
	reminders.AssertExpectations(t)
}
