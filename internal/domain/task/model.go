package task

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind - тип синхронизируемой записи
type Kind string

const (
	KindTask     Kind = "task"
	KindShortcut Kind = "shortcut"
)

// Task - завершённая или идущая запись учёта времени.
// StopTime == 0 означает, что таймер ещё идёт; такая запись может быть
// только одна на устройстве.
type Task struct {
	UID       string  `json:"uid"`
	Name      string  `json:"name"`
	Project   string  `json:"project,omitempty"`
	Tags      string  `json:"tags,omitempty"`
	Rate      float64 `json:"rate,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	StartTime int64   `json:"start_time"`
	StopTime  int64   `json:"stop_time,omitempty"`
	UpdatedAt int64   `json:"updated_at"`
	Deleted   bool    `json:"deleted,omitempty"`
}

// NewTask создает новую задачу с UID, вычисленным из содержимого
func NewTask(name, project, tags string, rate float64, currency string, start, stop time.Time) Task {
	startMs := start.UnixMilli()
	stopMs := int64(0)
	if !stop.IsZero() {
		stopMs = stop.UnixMilli()
	}

	return Task{
		UID:       GenerateTaskUID(name, startMs, stopMs),
		Name:      name,
		Project:   project,
		Tags:      tags,
		Rate:      rate,
		Currency:  currency,
		StartTime: startMs,
		StopTime:  stopMs,
		UpdatedAt: time.Now().UnixMilli(),
	}
}

// Validate проверяет инварианты задачи
func (t *Task) Validate() error {
	if t.UID == "" {
		return fmt.Errorf("%w: пустой uid", ErrInvalidRecord)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: пустое имя задачи", ErrInvalidRecord)
	}
	if t.StopTime != 0 && t.StartTime > t.StopTime {
		return fmt.Errorf("%w: start_time позже stop_time", ErrInvalidRecord)
	}
	return nil
}

// IsRunning проверяет, идёт ли таймер задачи
func (t *Task) IsRunning() bool {
	return t.StopTime == 0
}

// TotalTime возвращает длительность задачи
func (t *Task) TotalTime() time.Duration {
	if t.IsRunning() {
		return 0
	}
	return time.Duration(t.StopTime-t.StartTime) * time.Millisecond
}

// TotalEarnings возвращает заработок по задаче
func (t *Task) TotalEarnings() float64 {
	return t.TotalTime().Hours() * t.Rate
}

func (t *Task) String() string {
	s := t.Name
	if t.Project != "" {
		s += " @" + t.Project
	}
	if t.Tags != "" {
		s += " #" + t.Tags
	}
	if t.Rate != 0 {
		s += fmt.Sprintf(" $%.2f", t.Rate)
	}
	return s
}

// Shortcut - шаблон для быстрого старта таймера
type Shortcut struct {
	UID       string  `json:"uid"`
	Name      string  `json:"name"`
	Project   string  `json:"project,omitempty"`
	Tags      string  `json:"tags,omitempty"`
	Rate      float64 `json:"rate,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	ColorHex  string  `json:"color_hex,omitempty"`
	UpdatedAt int64   `json:"updated_at"`
	Deleted   bool    `json:"deleted,omitempty"`
}

// NewShortcut создает новый шаблон с UID, вычисленным из содержимого
func NewShortcut(name, project, tags string, rate float64, currency, colorHex string) Shortcut {
	return Shortcut{
		UID:       GenerateShortcutUID(name, project, tags, rate, currency),
		Name:      name,
		Project:   project,
		Tags:      tags,
		Rate:      rate,
		Currency:  currency,
		ColorHex:  colorHex,
		UpdatedAt: time.Now().UnixMilli(),
	}
}

// Validate проверяет инварианты шаблона
func (s *Shortcut) Validate() error {
	if s.UID == "" {
		return fmt.Errorf("%w: пустой uid", ErrInvalidRecord)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: пустое имя шаблона", ErrInvalidRecord)
	}
	return nil
}

func (s *Shortcut) String() string {
	out := s.Name
	if s.Project != "" {
		out += " @" + s.Project
	}
	if s.Tags != "" {
		out += " #" + s.Tags
	}
	if s.Rate != 0 {
		out += fmt.Sprintf(" $%.2f", s.Rate)
	}
	return out
}

// GenerateTaskUID вычисляет стабильный идентификатор задачи.
// UID присваивается при создании и больше никогда не меняется,
// даже если поля задачи редактируются.
func GenerateTaskUID(name string, startMs, stopMs int64) string {
	input := name + strconv.FormatInt(startMs, 10) + strconv.FormatInt(stopMs, 10)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// GenerateShortcutUID вычисляет стабильный идентификатор шаблона
func GenerateShortcutUID(name, project, tags string, rate float64, currency string) string {
	input := name + project + tags + strconv.FormatFloat(rate, 'f', -1, 64) + currency
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ParseInput разбирает строку вида "Имя задачи @Проект #тег1 #тег2 $10.50"
// на составляющие. Маркеры @, # и $ распознаются только в начале слова.
// Возвращает false, если имя задачи пустое.
func ParseInput(input string) (name, project, tags string, rate float64, ok bool) {
	const (
		stateName = iota
		stateProject
		stateTags
	)

	var nameParts, projectParts, tagParts []string
	state := stateName

	for _, word := range strings.Fields(input) {
		switch {
		case strings.HasPrefix(word, "@"):
			state = stateProject
			projectParts = projectParts[:0]
			if rest := strings.TrimPrefix(word, "@"); rest != "" {
				projectParts = append(projectParts, rest)
			}
		case strings.HasPrefix(word, "#") && state != stateTags:
			state = stateTags
			if rest := strings.TrimPrefix(word, "#"); rest != "" {
				tagParts = append(tagParts, rest)
			}
		case strings.HasPrefix(word, "$"):
			if parsed, err := strconv.ParseFloat(strings.TrimPrefix(word, "$"), 64); err == nil {
				rate = parsed
				continue
			}
			// не число - оставляем слово как есть в текущей секции
			fallthrough
		default:
			switch state {
			case stateProject:
				projectParts = append(projectParts, word)
			case stateTags:
				tagParts = append(tagParts, word)
			default:
				nameParts = append(nameParts, word)
			}
		}
	}

	name = strings.Join(nameParts, " ")
	if name == "" {
		return "", "", "", 0, false
	}

	return name, strings.Join(projectParts, " "), strings.Join(tagParts, " "), rate, true
}
