package client

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"timekeeper/internal/app/client/crypto"
	"timekeeper/internal/domain/task"
)

// Окно удержания надгробий: подтверждённое сервером надгробие живёт
// локально ещё 90 дней, чтобы отставшие устройства успели его получить
const tombstoneRetention = 90 * 24 * time.Hour

// SQLiteStorage - локальное хранилище устройства. Единственный писатель
// в процессе; каждая мутация выполняется в своей транзакции.
type SQLiteStorage struct {
	db *sql.DB
}

// Credentials - сохранённый аккаунт устройства. Ключ аккаунта хранится
// только в обёрнутом виде; токены позволяют продолжать синхронизацию
// без ввода парольной фразы.
type Credentials struct {
	Email           string
	ServerURL       string
	DeviceID        string
	WrappedKey      *crypto.WrappedKey
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt int64
}

// Cursor - водяной знак синхронизации аккаунта
type Cursor struct {
	LastRevision  int64
	NeedsFullSync bool
	LastSyncedAt  int64
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			uid TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			project TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			rate REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT '',
			start_time INTEGER NOT NULL,
			stop_time INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0,
			dirty INTEGER NOT NULL DEFAULT 1
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_start ON tasks(start_time);
		CREATE INDEX IF NOT EXISTS idx_tasks_dirty ON tasks(dirty);

		CREATE TABLE IF NOT EXISTS shortcuts (
			uid TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			project TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			rate REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT '',
			color_hex TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0,
			dirty INTEGER NOT NULL DEFAULT 1
		);

		CREATE INDEX IF NOT EXISTS idx_shortcuts_dirty ON shortcuts(dirty);

		CREATE TABLE IF NOT EXISTS sync_cursor (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_revision INTEGER NOT NULL DEFAULT 0,
			needs_full_sync INTEGER NOT NULL DEFAULT 0,
			last_synced_at INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS credentials (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			email TEXT NOT NULL,
			server_url TEXT NOT NULL,
			device_id TEXT NOT NULL,
			wrapped_key TEXT NOT NULL,
			access_token TEXT NOT NULL DEFAULT '',
			refresh_token TEXT NOT NULL DEFAULT '',
			access_expires_at INTEGER NOT NULL DEFAULT 0
		);
	`)

	return err
}

// ==================== Tasks ====================

// SaveTask сохраняет задачу и помечает её грязной
func (s *SQLiteStorage) SaveTask(t task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.upsertTask(t, true)
}

// ApplyRemoteTask записывает задачу, пришедшую с сервера, без пометки
// грязной: она уже известна серверу
func (s *SQLiteStorage) ApplyRemoteTask(t task.Task) error {
	return s.upsertTask(t, false)
}

// upsertTask записывает версию задачи. Локальная правка строго
// продвигает updated_at относительно хранимой версии, иначе правка в ту
// же миллисекунду, что и снимок push'а, прошла бы охрану MarkTaskClean.
// Серверная версия применяется с её updated_at как есть.
func (s *SQLiteStorage) upsertTask(t task.Task, dirty bool) error {
	_, err := s.db.Exec(`
		INSERT INTO tasks (uid, name, project, tags, rate, currency,
		                   start_time, stop_time, updated_at, deleted, dirty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (uid) DO UPDATE SET
			name = excluded.name, project = excluded.project,
			tags = excluded.tags, rate = excluded.rate,
			currency = excluded.currency, start_time = excluded.start_time,
			stop_time = excluded.stop_time,
			updated_at = CASE WHEN excluded.dirty
				THEN MAX(excluded.updated_at, tasks.updated_at + 1)
				ELSE excluded.updated_at END,
			deleted = excluded.deleted, dirty = excluded.dirty
	`, t.UID, t.Name, t.Project, t.Tags, t.Rate, t.Currency,
		t.StartTime, t.StopTime, t.UpdatedAt, t.Deleted, dirty)

	if err != nil {
		return fmt.Errorf("ошибка сохранения задачи: %w", err)
	}

	return nil
}

// GetTask возвращает задачу по uid, включая надгробия. Вызывающий сам
// решает, интересны ли ему удалённые записи.
func (s *SQLiteStorage) GetTask(uid string) (task.Task, error) {
	var t task.Task
	err := s.db.QueryRow(`
		SELECT uid, name, project, tags, rate, currency,
		       start_time, stop_time, updated_at, deleted
		FROM tasks WHERE uid = ?
	`, uid).Scan(&t.UID, &t.Name, &t.Project, &t.Tags, &t.Rate, &t.Currency,
		&t.StartTime, &t.StopTime, &t.UpdatedAt, &t.Deleted)

	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("ошибка получения задачи: %w", err)
	}

	return t, nil
}

// ListTasks возвращает живые задачи, новые сначала
func (s *SQLiteStorage) ListTasks(limit int) ([]task.Task, error) {
	query := `
		SELECT uid, name, project, tags, rate, currency,
		       start_time, stop_time, updated_at, deleted
		FROM tasks WHERE deleted = 0
		ORDER BY start_time DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// RunningTask возвращает задачу с идущим таймером, если она есть
func (s *SQLiteStorage) RunningTask() (task.Task, error) {
	var t task.Task
	err := s.db.QueryRow(`
		SELECT uid, name, project, tags, rate, currency,
		       start_time, stop_time, updated_at, deleted
		FROM tasks WHERE deleted = 0 AND stop_time = 0
	`).Scan(&t.UID, &t.Name, &t.Project, &t.Tags, &t.Rate, &t.Currency,
		&t.StartTime, &t.StopTime, &t.UpdatedAt, &t.Deleted)

	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("ошибка поиска идущей задачи: %w", err)
	}

	return t, nil
}

// DeleteTask ставит надгробие: запись остаётся до подтверждения сервером
// и разносится по остальным устройствам
func (s *SQLiteStorage) DeleteTask(uid string) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET deleted = 1, updated_at = MAX(?, updated_at + 1), dirty = 1
		WHERE uid = ?
	`, time.Now().UnixMilli(), uid)
	if err != nil {
		return fmt.Errorf("ошибка удаления задачи: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrNotFound
	}

	return nil
}

// DirtyTasks возвращает задачи с неподтверждёнными изменениями,
// включая надгробия
func (s *SQLiteStorage) DirtyTasks() ([]task.Task, error) {
	rows, err := s.db.Query(`
		SELECT uid, name, project, tags, rate, currency,
		       start_time, stop_time, updated_at, deleted
		FROM tasks WHERE dirty = 1
		ORDER BY updated_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки грязных задач: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// MarkTaskClean снимает грязный бит, но только если запись не менялась
// после снимка: updated_at служит охранным условием
func (s *SQLiteStorage) MarkTaskClean(uid string, updatedAt int64) error {
	_, err := s.db.Exec(`
		UPDATE tasks SET dirty = 0 WHERE uid = ? AND updated_at = ?
	`, uid, updatedAt)
	if err != nil {
		return fmt.Errorf("ошибка подтверждения задачи: %w", err)
	}
	return nil
}

func scanTasks(rows *sql.Rows) ([]task.Task, error) {
	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(&t.UID, &t.Name, &t.Project, &t.Tags, &t.Rate,
			&t.Currency, &t.StartTime, &t.StopTime, &t.UpdatedAt, &t.Deleted); err != nil {
			return nil, fmt.Errorf("ошибка сканирования задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ==================== Shortcuts ====================

// SaveShortcut сохраняет шаблон и помечает его грязным
func (s *SQLiteStorage) SaveShortcut(sc task.Shortcut) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	return s.upsertShortcut(sc, true)
}

// ApplyRemoteShortcut записывает шаблон, пришедший с сервера
func (s *SQLiteStorage) ApplyRemoteShortcut(sc task.Shortcut) error {
	return s.upsertShortcut(sc, false)
}

func (s *SQLiteStorage) upsertShortcut(sc task.Shortcut, dirty bool) error {
	_, err := s.db.Exec(`
		INSERT INTO shortcuts (uid, name, project, tags, rate, currency,
		                       color_hex, updated_at, deleted, dirty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (uid) DO UPDATE SET
			name = excluded.name, project = excluded.project,
			tags = excluded.tags, rate = excluded.rate,
			currency = excluded.currency, color_hex = excluded.color_hex,
			updated_at = CASE WHEN excluded.dirty
				THEN MAX(excluded.updated_at, shortcuts.updated_at + 1)
				ELSE excluded.updated_at END,
			deleted = excluded.deleted, dirty = excluded.dirty
	`, sc.UID, sc.Name, sc.Project, sc.Tags, sc.Rate, sc.Currency,
		sc.ColorHex, sc.UpdatedAt, sc.Deleted, dirty)

	if err != nil {
		return fmt.Errorf("ошибка сохранения шаблона: %w", err)
	}

	return nil
}

// GetShortcut возвращает шаблон по uid, включая надгробия
func (s *SQLiteStorage) GetShortcut(uid string) (task.Shortcut, error) {
	var sc task.Shortcut
	err := s.db.QueryRow(`
		SELECT uid, name, project, tags, rate, currency, color_hex, updated_at, deleted
		FROM shortcuts WHERE uid = ?
	`, uid).Scan(&sc.UID, &sc.Name, &sc.Project, &sc.Tags, &sc.Rate,
		&sc.Currency, &sc.ColorHex, &sc.UpdatedAt, &sc.Deleted)

	if errors.Is(err, sql.ErrNoRows) {
		return task.Shortcut{}, task.ErrNotFound
	}
	if err != nil {
		return task.Shortcut{}, fmt.Errorf("ошибка получения шаблона: %w", err)
	}

	return sc, nil
}

// ListShortcuts возвращает живые шаблоны по алфавиту
func (s *SQLiteStorage) ListShortcuts() ([]task.Shortcut, error) {
	rows, err := s.db.Query(`
		SELECT uid, name, project, tags, rate, currency, color_hex, updated_at, deleted
		FROM shortcuts WHERE deleted = 0
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	return scanShortcuts(rows)
}

// DeleteShortcut ставит надгробие на шаблон
func (s *SQLiteStorage) DeleteShortcut(uid string) error {
	res, err := s.db.Exec(`
		UPDATE shortcuts SET deleted = 1, updated_at = MAX(?, updated_at + 1), dirty = 1
		WHERE uid = ?
	`, time.Now().UnixMilli(), uid)
	if err != nil {
		return fmt.Errorf("ошибка удаления шаблона: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrNotFound
	}

	return nil
}

// DirtyShortcuts возвращает шаблоны с неподтверждёнными изменениями
func (s *SQLiteStorage) DirtyShortcuts() ([]task.Shortcut, error) {
	rows, err := s.db.Query(`
		SELECT uid, name, project, tags, rate, currency, color_hex, updated_at, deleted
		FROM shortcuts WHERE dirty = 1
		ORDER BY updated_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки грязных шаблонов: %w", err)
	}
	defer rows.Close()

	return scanShortcuts(rows)
}

// MarkShortcutClean снимает грязный бит при неизменном updated_at
func (s *SQLiteStorage) MarkShortcutClean(uid string, updatedAt int64) error {
	_, err := s.db.Exec(`
		UPDATE shortcuts SET dirty = 0 WHERE uid = ? AND updated_at = ?
	`, uid, updatedAt)
	if err != nil {
		return fmt.Errorf("ошибка подтверждения шаблона: %w", err)
	}
	return nil
}

func scanShortcuts(rows *sql.Rows) ([]task.Shortcut, error) {
	var shortcuts []task.Shortcut
	for rows.Next() {
		var sc task.Shortcut
		if err := rows.Scan(&sc.UID, &sc.Name, &sc.Project, &sc.Tags, &sc.Rate,
			&sc.Currency, &sc.ColorHex, &sc.UpdatedAt, &sc.Deleted); err != nil {
			return nil, fmt.Errorf("ошибка сканирования шаблона: %w", err)
		}
		shortcuts = append(shortcuts, sc)
	}
	return shortcuts, rows.Err()
}

// ==================== Sync cursor ====================

// Cursor возвращает водяной знак синхронизации
func (s *SQLiteStorage) Cursor() (Cursor, error) {
	var c Cursor
	err := s.db.QueryRow(`
		SELECT last_revision, needs_full_sync, last_synced_at FROM sync_cursor WHERE id = 1
	`).Scan(&c.LastRevision, &c.NeedsFullSync, &c.LastSyncedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Cursor{}, nil
	}
	if err != nil {
		return Cursor{}, fmt.Errorf("ошибка чтения курсора: %w", err)
	}

	return c, nil
}

// AdvanceCursor продвигает водяной знак. Вызывается только после того,
// как и применение чужих изменений, и подтверждение своих завершились.
func (s *SQLiteStorage) AdvanceCursor(revision int64) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_cursor (id, last_revision, needs_full_sync, last_synced_at)
		VALUES (1, ?, 0, ?)
		ON CONFLICT (id) DO UPDATE SET
			last_revision = excluded.last_revision,
			needs_full_sync = 0,
			last_synced_at = excluded.last_synced_at
	`, revision, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("ошибка продвижения курсора: %w", err)
	}
	return nil
}

// RequestFullSync сбрасывает курсор и помечает все записи грязными:
// следующий цикл заберёт ленту с нуля и переотправит всё своё
func (s *SQLiteStorage) RequestFullSync() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sync_cursor (id, last_revision, needs_full_sync, last_synced_at)
		VALUES (1, 0, 1, 0)
		ON CONFLICT (id) DO UPDATE SET last_revision = 0, needs_full_sync = 1
	`)
	if err != nil {
		return fmt.Errorf("ошибка сброса курсора: %w", err)
	}

	if _, err := tx.Exec(`UPDATE tasks SET dirty = 1`); err != nil {
		return fmt.Errorf("ошибка пометки задач: %w", err)
	}
	if _, err := tx.Exec(`UPDATE shortcuts SET dirty = 1`); err != nil {
		return fmt.Errorf("ошибка пометки шаблонов: %w", err)
	}

	return tx.Commit()
}

// ==================== Credentials ====================

// SaveCredentials сохраняет аккаунт устройства
func (s *SQLiteStorage) SaveCredentials(c *Credentials) error {
	wrapped, err := json.Marshal(c.WrappedKey)
	if err != nil {
		return fmt.Errorf("ошибка сериализации обёрнутого ключа: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO credentials (id, email, server_url, device_id, wrapped_key,
		                         access_token, refresh_token, access_expires_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email, server_url = excluded.server_url,
			device_id = excluded.device_id, wrapped_key = excluded.wrapped_key,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			access_expires_at = excluded.access_expires_at
	`, c.Email, c.ServerURL, c.DeviceID, string(wrapped),
		c.AccessToken, c.RefreshToken, c.AccessExpiresAt)

	if err != nil {
		return fmt.Errorf("ошибка сохранения аккаунта: %w", err)
	}

	return nil
}

// LoadCredentials возвращает аккаунт устройства
func (s *SQLiteStorage) LoadCredentials() (*Credentials, error) {
	var c Credentials
	var wrapped string

	err := s.db.QueryRow(`
		SELECT email, server_url, device_id, wrapped_key,
		       access_token, refresh_token, access_expires_at
		FROM credentials WHERE id = 1
	`).Scan(&c.Email, &c.ServerURL, &c.DeviceID, &wrapped,
		&c.AccessToken, &c.RefreshToken, &c.AccessExpiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения аккаунта: %w", err)
	}

	if err := json.Unmarshal([]byte(wrapped), &c.WrappedKey); err != nil {
		return nil, fmt.Errorf("ошибка разбора обёрнутого ключа: %w", err)
	}

	return &c, nil
}

// UpdateTokens обновляет токены аккаунта после входа или refresh
func (s *SQLiteStorage) UpdateTokens(access, refresh string, expiresAt int64) error {
	res, err := s.db.Exec(`
		UPDATE credentials SET access_token = ?, refresh_token = ?, access_expires_at = ?
		WHERE id = 1
	`, access, refresh, expiresAt)
	if err != nil {
		return fmt.Errorf("ошибка обновления токенов: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoCredentials
	}

	return nil
}

// ClearCredentials удаляет аккаунт устройства
func (s *SQLiteStorage) ClearCredentials() error {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE id = 1`); err != nil {
		return fmt.Errorf("ошибка удаления аккаунта: %w", err)
	}
	return nil
}

// ==================== Maintenance ====================

// PurgeTombstones физически удаляет подтверждённые сервером надгробия
// старше окна удержания. Грязные надгробия не трогаем: они ещё не
// доехали до сервера.
func (s *SQLiteStorage) PurgeTombstones() (int64, error) {
	before := time.Now().Add(-tombstoneRetention).UnixMilli()

	var purged int64
	for _, table := range []string{"tasks", "shortcuts"} {
		res, err := s.db.Exec(
			`DELETE FROM `+table+` WHERE deleted = 1 AND dirty = 0 AND updated_at < ?`, before)
		if err != nil {
			return purged, fmt.Errorf("ошибка очистки надгробий %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		purged += n
	}

	return purged, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
