package client

import (
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"timekeeper/internal/app/client/config"
	"timekeeper/internal/domain/task"
)

// TimerState - состояние таймера
type TimerState string

const (
	TimerStopped     TimerState = "stopped"
	TimerRunning     TimerState = "running"
	TimerIdlePending TimerState = "idle_pending"
	TimerBreak       TimerState = "pomodoro_break"
	TimerLongBreak   TimerState = "pomodoro_long_break"
	TimerSnoozed     TimerState = "snoozed"
)

// Timer - конечный автомат учёта времени. Сигнал простоя приходит
// снаружи; автомат лишь решает, что делать с идущей задачей. Каждое
// завершение задачи проходит через хранилище, чтобы изменение попало
// в синхронизацию.
type Timer struct {
	storage *SQLiteStorage
	log     *slog.Logger
	cfg     config.Pomodoro

	idleThreshold time.Duration

	mu          gosync.Mutex
	state       TimerState
	current     task.Task
	idleBegan   time.Time
	afterSnooze TimerState
	workCycles  int

	now func() time.Time
}

// NewTimer создает таймер и восстанавливает идущую задачу после
// перезапуска процесса
func NewTimer(storage *SQLiteStorage, cfg config.Pomodoro, idleThreshold time.Duration, log *slog.Logger) (*Timer, error) {
	t := &Timer{
		storage:       storage,
		log:           log.With("component", "timer"),
		cfg:           cfg,
		idleThreshold: idleThreshold,
		state:         TimerStopped,
		now:           time.Now,
	}

	running, err := storage.RunningTask()
	switch {
	case err == nil:
		t.current = running
		t.state = TimerRunning
	case errors.Is(err, task.ErrNotFound):
	default:
		return nil, err
	}

	return t, nil
}

// State возвращает текущее состояние таймера
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Current возвращает идущую задачу
func (t *Timer) Current() (task.Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TimerStopped {
		return task.Task{}, false
	}
	return t.current, true
}

// Start разбирает строку вида "Имя @Проект #теги $ставка" и запускает
// таймер. Уже идущая задача сначала останавливается: на устройстве
// может идти только один таймер.
func (t *Timer) Start(input, currency string) (task.Task, error) {
	name, project, tags, rate, ok := task.ParseInput(input)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: пустое имя задачи", task.ErrInvalidRecord)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TimerRunning || t.state == TimerIdlePending {
		if _, err := t.finalize(t.now()); err != nil {
			return task.Task{}, err
		}
	}

	newTask := task.NewTask(name, project, tags, rate, currency, t.now(), time.Time{})
	if err := t.storage.SaveTask(newTask); err != nil {
		return task.Task{}, err
	}

	t.current = newTask
	t.state = TimerRunning
	t.workCycles = 0
	t.log.Info("таймер запущен", "task", newTask.Name)

	return newTask, nil
}

// StartShortcut запускает таймер по шаблону
func (t *Timer) StartShortcut(sc task.Shortcut) (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TimerRunning || t.state == TimerIdlePending {
		if _, err := t.finalize(t.now()); err != nil {
			return task.Task{}, err
		}
	}

	newTask := task.NewTask(sc.Name, sc.Project, sc.Tags, sc.Rate, sc.Currency, t.now(), time.Time{})
	if err := t.storage.SaveTask(newTask); err != nil {
		return task.Task{}, err
	}

	t.current = newTask
	t.state = TimerRunning
	t.workCycles = 0

	return newTask, nil
}

// Stop останавливает таймер и записывает завершённую задачу
func (t *Timer) Stop() (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TimerStopped {
		return task.Task{}, ErrTimerNotRunning
	}

	return t.finalize(t.now())
}

// finalize завершает идущую задачу указанным временем остановки.
// Вызывается под мьютексом.
func (t *Timer) finalize(stop time.Time) (task.Task, error) {
	done := t.current
	done.StopTime = stop.UnixMilli()
	done.UpdatedAt = t.now().UnixMilli()

	if err := t.storage.SaveTask(done); err != nil {
		return task.Task{}, err
	}

	t.current = task.Task{}
	t.state = TimerStopped
	t.log.Info("таймер остановлен", "task", done.Name, "duration", done.TotalTime())

	return done, nil
}

// IdleSignal принимает сигнал простоя от внешнего датчика. Простой не
// короче порога переводит идущий таймер в ожидание решения пользователя.
func (t *Timer) IdleSignal(idle time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerRunning {
		return nil
	}
	if idle < t.idleThreshold {
		return nil
	}

	t.idleBegan = t.now().Add(-idle)
	t.state = TimerIdlePending
	t.log.Info("обнаружен простой", "began", t.idleBegan)

	return nil
}

// IdleDiscard отбрасывает время простоя: задача завершается моментом
// начала простоя, а не моментом решения
func (t *Timer) IdleDiscard() (task.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerIdlePending {
		return task.Task{}, ErrInvalidTransition
	}

	return t.finalize(t.idleBegan)
}

// IdleContinue игнорирует простой и продолжает отсчёт
func (t *Timer) IdleContinue() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerIdlePending {
		return ErrInvalidTransition
	}

	t.state = TimerRunning
	return nil
}

// PomodoroElapsed фиксирует конец рабочего интервала. Каждый N-й
// интервал даёт длинный перерыв.
func (t *Timer) PomodoroElapsed() (TimerState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerRunning {
		return t.state, ErrInvalidTransition
	}

	t.workCycles++
	if t.workCycles%t.cfg.CyclesBeforeLong == 0 {
		t.state = TimerLongBreak
	} else {
		t.state = TimerBreak
	}

	return t.state, nil
}

// Snooze откладывает перерыв
func (t *Timer) Snooze() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerBreak && t.state != TimerLongBreak {
		return ErrInvalidTransition
	}

	t.afterSnooze = t.state
	t.state = TimerSnoozed
	return nil
}

// SnoozeElapsed возвращает таймер в отложенный перерыв
func (t *Timer) SnoozeElapsed() (TimerState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerSnoozed {
		return t.state, ErrInvalidTransition
	}

	t.state = t.afterSnooze
	return t.state, nil
}

// Acknowledge завершает перерыв и возвращает таймер к работе
func (t *Timer) Acknowledge() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimerBreak && t.state != TimerLongBreak {
		return ErrInvalidTransition
	}

	t.state = TimerRunning
	return nil
}
