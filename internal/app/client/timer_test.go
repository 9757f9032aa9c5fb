package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timekeeper/internal/app/client/config"
	"timekeeper/internal/domain/task"
	"timekeeper/internal/utils/logger"
)

func newTestTimer(t *testing.T) (*Timer, *SQLiteStorage) {
	t.Helper()

	storage := newTestStorage(t)
	timer, err := NewTimer(storage, config.Pomodoro{
		WorkMinutes:       25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
		CyclesBeforeLong:  4,
		SnoozeMinutes:     5,
	}, 5*time.Minute, logger.New("local"))
	require.NoError(t, err)

	return timer, storage
}

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, "2025-06-01T"+clock+":00Z")
	require.NoError(t, err)
	return parsed
}

func TestTimer_StartStop(t *testing.T) {
	timer, storage := newTestTimer(t)

	started, err := timer.Start("Написать отчёт @work #docs $50", "USD")
	require.NoError(t, err)
	assert.Equal(t, TimerRunning, timer.State())
	assert.Equal(t, "Написать отчёт", started.Name)
	assert.Equal(t, "work", started.Project)
	assert.True(t, started.IsRunning())

	stopped, err := timer.Stop()
	require.NoError(t, err)
	assert.Equal(t, TimerStopped, timer.State())
	assert.False(t, stopped.IsRunning())

	// завершение прошло через хранилище и помечено для отправки
	dirty, err := storage.DirtyTasks()
	require.NoError(t, err)
	require.Len(t, dirty, 1)
	assert.Equal(t, stopped.StopTime, dirty[0].StopTime)
}

func TestTimer_StopWithoutRunning(t *testing.T) {
	timer, _ := newTestTimer(t)

	_, err := timer.Stop()
	assert.ErrorIs(t, err, ErrTimerNotRunning)
}

func TestTimer_StartStopsPrevious(t *testing.T) {
	timer, storage := newTestTimer(t)

	first, err := timer.Start("Первая", "")
	require.NoError(t, err)

	_, err = timer.Start("Вторая", "")
	require.NoError(t, err)

	// на устройстве не больше одного идущего таймера
	running, err := storage.RunningTask()
	require.NoError(t, err)
	assert.Equal(t, "Вторая", running.Name)

	finished, err := storage.GetTask(first.UID)
	require.NoError(t, err)
	assert.False(t, finished.IsRunning())
}

func TestTimer_RestoredAfterRestart(t *testing.T) {
	timer, storage := newTestTimer(t)

	_, err := timer.Start("Идущая", "")
	require.NoError(t, err)

	restarted, err := NewTimer(storage, timer.cfg, timer.idleThreshold, timer.log)
	require.NoError(t, err)
	assert.Equal(t, TimerRunning, restarted.State())

	current, ok := restarted.Current()
	require.True(t, ok)
	assert.Equal(t, "Идущая", current.Name)
}

func TestTimer_IdleDiscardTruncatesStop(t *testing.T) {
	timer, storage := newTestTimer(t)

	// таймер запущен в 10:00
	timer.now = func() time.Time { return at(t, "10:00") }
	started, err := timer.Start("Долгая задача", "")
	require.NoError(t, err)

	// в 10:20 датчик сообщает о 7 минутах простоя: простой начался в 10:13
	timer.now = func() time.Time { return at(t, "10:20") }
	require.NoError(t, timer.IdleSignal(7*time.Minute))
	assert.Equal(t, TimerIdlePending, timer.State())

	// пользователь решает отбросить простой позже, в 10:22
	timer.now = func() time.Time { return at(t, "10:22") }
	stopped, err := timer.IdleDiscard()
	require.NoError(t, err)

	assert.Equal(t, at(t, "10:13").UnixMilli(), stopped.StopTime,
		"задача обрывается моментом начала простоя, а не моментом решения")
	assert.Equal(t, TimerStopped, timer.State())

	saved, err := storage.GetTask(started.UID)
	require.NoError(t, err)
	assert.Equal(t, stopped.StopTime, saved.StopTime)
}

func TestTimer_IdleBelowThresholdIgnored(t *testing.T) {
	timer, _ := newTestTimer(t)

	_, err := timer.Start("Задача", "")
	require.NoError(t, err)

	require.NoError(t, timer.IdleSignal(3*time.Minute))
	assert.Equal(t, TimerRunning, timer.State())
}

func TestTimer_IdleContinue(t *testing.T) {
	timer, _ := newTestTimer(t)

	_, err := timer.Start("Задача", "")
	require.NoError(t, err)

	require.NoError(t, timer.IdleSignal(10*time.Minute))
	assert.Equal(t, TimerIdlePending, timer.State())

	require.NoError(t, timer.IdleContinue())
	assert.Equal(t, TimerRunning, timer.State())
}

func TestTimer_PomodoroLongBreakEveryFourth(t *testing.T) {
	timer, _ := newTestTimer(t)

	_, err := timer.Start("Задача", "")
	require.NoError(t, err)

	for cycle := 1; cycle <= 4; cycle++ {
		state, err := timer.PomodoroElapsed()
		require.NoError(t, err)

		if cycle == 4 {
			assert.Equal(t, TimerLongBreak, state)
		} else {
			assert.Equal(t, TimerBreak, state)
		}

		require.NoError(t, timer.Acknowledge())
		assert.Equal(t, TimerRunning, timer.State())
	}
}

func TestTimer_SnoozeReturnsToSameBreak(t *testing.T) {
	timer, _ := newTestTimer(t)

	_, err := timer.Start("Задача", "")
	require.NoError(t, err)

	_, err = timer.PomodoroElapsed()
	require.NoError(t, err)
	assert.Equal(t, TimerBreak, timer.State())

	require.NoError(t, timer.Snooze())
	assert.Equal(t, TimerSnoozed, timer.State())

	state, err := timer.SnoozeElapsed()
	require.NoError(t, err)
	assert.Equal(t, TimerBreak, state)
}

func TestTimer_InvalidTransitions(t *testing.T) {
	timer, _ := newTestTimer(t)

	_, err := timer.IdleDiscard()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.ErrorIs(t, timer.Snooze(), ErrInvalidTransition)
	assert.ErrorIs(t, timer.Acknowledge(), ErrInvalidTransition)

	_, err = timer.PomodoroElapsed()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = timer.Start("", "")
	assert.ErrorIs(t, err, task.ErrInvalidRecord)
}
