package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	stop := start.Add(25 * time.Minute)

	tk := NewTask("Написать отчет", "Работа", "документы", 15.5, "USD", start, stop)

	require.NoError(t, tk.Validate())
	assert.Len(t, tk.UID, 64)
	assert.Equal(t, start.UnixMilli(), tk.StartTime)
	assert.Equal(t, stop.UnixMilli(), tk.StopTime)
	assert.False(t, tk.IsRunning())
	assert.Equal(t, 25*time.Minute, tk.TotalTime())
	assert.InDelta(t, 15.5*25.0/60.0, tk.TotalEarnings(), 0.001)
	assert.NotZero(t, tk.UpdatedAt)
}

func TestNewTask_Running(t *testing.T) {
	tk := NewTask("Идущая задача", "", "", 0, "", time.Now(), time.Time{})

	require.NoError(t, tk.Validate())
	assert.True(t, tk.IsRunning())
	assert.Zero(t, tk.TotalTime())
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{
			name: "корректная задача",
			task: Task{UID: "abc", Name: "Задача", StartTime: 100, StopTime: 200},
		},
		{
			name:    "пустой uid",
			task:    Task{Name: "Задача", StartTime: 100, StopTime: 200},
			wantErr: true,
		},
		{
			name:    "пустое имя",
			task:    Task{UID: "abc", StartTime: 100, StopTime: 200},
			wantErr: true,
		},
		{
			name:    "start позже stop",
			task:    Task{UID: "abc", Name: "Задача", StartTime: 300, StopTime: 200},
			wantErr: true,
		},
		{
			name: "идущая задача без stop",
			task: Task{UID: "abc", Name: "Задача", StartTime: 300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGenerateTaskUID_Stable(t *testing.T) {
	uid1 := GenerateTaskUID("Задача", 1000, 2000)
	uid2 := GenerateTaskUID("Задача", 1000, 2000)
	uid3 := GenerateTaskUID("Задача", 1000, 2001)

	assert.Equal(t, uid1, uid2)
	assert.NotEqual(t, uid1, uid3)
	assert.Len(t, uid1, 64)
}

func TestNewShortcut(t *testing.T) {
	sc := NewShortcut("Созвон", "Команда", "встречи", 0, "", "#FF5733")

	require.NoError(t, sc.Validate())
	assert.Len(t, sc.UID, 64)
	assert.Equal(t, "#FF5733", sc.ColorHex)

	same := NewShortcut("Созвон", "Команда", "встречи", 0, "", "#000000")
	assert.Equal(t, sc.UID, same.UID, "цвет не входит в uid")
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantName    string
		wantProject string
		wantTags    string
		wantRate    float64
		wantOK      bool
	}{
		{
			name:        "все секции",
			input:       "Проверка @Проект $10.0 #bond james bond #007",
			wantName:    "Проверка",
			wantProject: "Проект",
			wantTags:    "bond james bond #007",
			wantRate:    10.0,
			wantOK:      true,
		},
		{
			name:     "только имя",
			input:    "Просто задача",
			wantName: "Просто задача",
			wantOK:   true,
		},
		{
			name:        "проект после тегов",
			input:       "Задача без ставки #tag1 #tag2 @Новый Проект",
			wantName:    "Задача без ставки",
			wantProject: "Новый Проект",
			wantTags:    "tag1 #tag2",
			wantOK:      true,
		},
		{
			name:     "некорректная ставка остаётся текстом",
			input:    "Задача $abc",
			wantName: "Задача $abc",
			wantOK:   true,
		},
		{
			name:   "пустая строка",
			input:  "   ",
			wantOK: false,
		},
		{
			name:   "нет имени",
			input:  "@Проект #тег",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, project, tags, rate, ok := ParseInput(tt.input)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantProject, project)
			assert.Equal(t, tt.wantTags, tags)
			assert.Equal(t, tt.wantRate, rate)
		})
	}
}
