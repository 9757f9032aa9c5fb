package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"timekeeper/internal/app/client/config"
	"timekeeper/internal/app/client/crypto"
	"timekeeper/internal/domain/task"
)

// App связывает хранилище, сессию, таймер и движок синхронизации.
// Сетевые проблемы никогда не блокируют локальную работу: команды
// таймера и правки задач выполняются без сервера.
type App struct {
	config  *config.Config
	log     *slog.Logger
	storage *SQLiteStorage
	session *Session
	tracker *Tracker
	sync    *SyncEngine
	timer   *Timer
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	storage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("инициализация хранилища: %w", err)
	}

	keyCache := crypto.NewKeyCache(cfg.KeyCachePath)
	session := NewSession(storage, keyCache, log)
	tracker := NewTracker(storage, log)

	engine := NewSyncEngine(storage, tracker, session,
		time.Duration(cfg.SyncInterval)*time.Second, log)

	timer, err := NewTimer(storage, cfg.Pomodoro,
		time.Duration(cfg.IdleThresholdMinutes)*time.Minute, log)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("инициализация таймера: %w", err)
	}

	return &App{
		config:  cfg,
		log:     log,
		storage: storage,
		session: session,
		tracker: tracker,
		sync:    engine,
		timer:   timer,
	}, nil
}

// Close закрывает локальное хранилище
func (a *App) Close() error {
	return a.storage.Close()
}

// Run крутит фоновую синхронизацию до отмены контекста
func (a *App) Run(ctx context.Context) {
	a.sync.Run(ctx)
}

// Timer возвращает конечный автомат таймера
func (a *App) Timer() *Timer {
	return a.timer
}

// Session возвращает менеджер сессии
func (a *App) Session() *Session {
	return a.session
}

// ==================== Auth ====================

// Register создает аккаунт и выполняет вход
func (a *App) Register(ctx context.Context, serverURL, email string, passphrase []byte) error {
	return a.session.Login(ctx, serverURL, email, passphrase, true)
}

// Login выполняет вход в существующий аккаунт
func (a *App) Login(ctx context.Context, serverURL, email string, passphrase []byte) error {
	return a.session.Login(ctx, serverURL, email, passphrase, false)
}

// Logout отзывает сессию устройства и затирает секреты
func (a *App) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

// Unlock разворачивает ключ аккаунта парольной фразой после истечения
// кэша ключа
func (a *App) Unlock(passphrase []byte) error {
	return a.session.Unlock(passphrase)
}

// ==================== Tasks ====================

// StartTask запускает таймер по строке описания и пинает синхронизацию
func (a *App) StartTask(input string) (task.Task, error) {
	started, err := a.timer.Start(input, "")
	if err != nil {
		return task.Task{}, err
	}

	a.sync.Trigger()
	return started, nil
}

// StopTask останавливает идущий таймер
func (a *App) StopTask() (task.Task, error) {
	stopped, err := a.timer.Stop()
	if err != nil {
		return task.Task{}, err
	}

	a.sync.Trigger()
	return stopped, nil
}

// ListTasks возвращает живые задачи, новые сначала
func (a *App) ListTasks(limit int) ([]task.Task, error) {
	return a.storage.ListTasks(limit)
}

// DeleteTask ставит надгробие на задачу
func (a *App) DeleteTask(uid string) error {
	if err := a.storage.DeleteTask(uid); err != nil {
		return err
	}

	a.sync.Trigger()
	return nil
}

// ==================== Shortcuts ====================

// CreateShortcut создает шаблон быстрого старта. Живые шаблоны не могут
// делить одно имя.
func (a *App) CreateShortcut(input, colorHex string) (task.Shortcut, error) {
	name, project, tags, rate, ok := task.ParseInput(input)
	if !ok {
		return task.Shortcut{}, fmt.Errorf("%w: пустое имя шаблона", task.ErrInvalidRecord)
	}

	existing, err := a.storage.ListShortcuts()
	if err != nil {
		return task.Shortcut{}, err
	}
	for _, sc := range existing {
		if sc.Name == name {
			return task.Shortcut{}, fmt.Errorf("%w: шаблон %q уже существует", task.ErrInvalidRecord, name)
		}
	}

	sc := task.NewShortcut(name, project, tags, rate, "", colorHex)
	if err := a.storage.SaveShortcut(sc); err != nil {
		return task.Shortcut{}, err
	}

	a.sync.Trigger()
	return sc, nil
}

// ListShortcuts возвращает живые шаблоны
func (a *App) ListShortcuts() ([]task.Shortcut, error) {
	return a.storage.ListShortcuts()
}

// DeleteShortcut ставит надгробие на шаблон
func (a *App) DeleteShortcut(uid string) error {
	if err := a.storage.DeleteShortcut(uid); err != nil {
		return err
	}

	a.sync.Trigger()
	return nil
}

// StartFromShortcut запускает таймер по имени шаблона
func (a *App) StartFromShortcut(name string) (task.Task, error) {
	shortcuts, err := a.storage.ListShortcuts()
	if err != nil {
		return task.Task{}, err
	}

	for _, sc := range shortcuts {
		if sc.Name == name {
			started, err := a.timer.StartShortcut(sc)
			if err != nil {
				return task.Task{}, err
			}
			a.sync.Trigger()
			return started, nil
		}
	}

	return task.Task{}, task.ErrNotFound
}

// ==================== Sync ====================

// Sync выполняет один цикл синхронизации немедленно
func (a *App) Sync(ctx context.Context) (*SyncResult, error) {
	result, err := a.sync.SyncOnce(ctx)
	if errors.Is(err, ErrSyncInFlight) {
		return nil, nil
	}
	return result, err
}

// OnSyncEvent задает приёмник событий синхронизации
func (a *App) OnSyncEvent(fn func(SyncEvent, *SyncResult)) {
	a.sync.OnEvent(fn)
}

// RequestFullSync сбрасывает водяной знак: следующий цикл перечитает
// ленту сервера с нуля и переотправит все локальные записи
func (a *App) RequestFullSync() error {
	return a.storage.RequestFullSync()
}

// Cursor возвращает водяной знак синхронизации
func (a *App) Cursor() (Cursor, error) {
	return a.storage.Cursor()
}

// DirtyCount возвращает количество неподтверждённых записей
func (a *App) DirtyCount() (int, error) {
	tasks, err := a.storage.DirtyTasks()
	if err != nil {
		return 0, err
	}
	shortcuts, err := a.storage.DirtyShortcuts()
	if err != nil {
		return 0, err
	}
	return len(tasks) + len(shortcuts), nil
}
