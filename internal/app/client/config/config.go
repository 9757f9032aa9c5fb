package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultEnv       = "local"
	defaultLogLevel  = "info"
	defaultConfigDir = ".timekeeper"
)

// Pomodoro - настройки помодоро-таймера. Длинный перерыв выбирается
// каждый N-й рабочий интервал.
type Pomodoro struct {
	WorkMinutes       int `mapstructure:"pomodoro_work_minutes"`
	ShortBreakMinutes int `mapstructure:"pomodoro_short_break_minutes"`
	LongBreakMinutes  int `mapstructure:"pomodoro_long_break_minutes"`
	CyclesBeforeLong  int `mapstructure:"pomodoro_cycles_before_long"`
	SnoozeMinutes     int `mapstructure:"pomodoro_snooze_minutes"`
}

type Config struct {
	Env                  string `mapstructure:"app_env"`
	LogLevel             string `mapstructure:"log_level"`
	ConfigDir            string `mapstructure:"config_dir"`
	DataPath             string `mapstructure:"data_path"`
	KeyCachePath         string `mapstructure:"key_cache_path"`
	SyncInterval         int    `mapstructure:"sync_interval_seconds"`
	IdleThresholdMinutes int    `mapstructure:"idle_threshold_minutes"`
	Pomodoro             Pomodoro
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("SYNC_INTERVAL_SECONDS", 30)
	viper.SetDefault("IDLE_THRESHOLD_MINUTES", 5)
	viper.SetDefault("POMODORO_WORK_MINUTES", 25)
	viper.SetDefault("POMODORO_SHORT_BREAK_MINUTES", 5)
	viper.SetDefault("POMODORO_LONG_BREAK_MINUTES", 15)
	viper.SetDefault("POMODORO_CYCLES_BEFORE_LONG", 4)
	viper.SetDefault("POMODORO_SNOOZE_MINUTES", 5)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("Ошибка создания директории конфигурации: %v\n", err)
	}

	config := &Config{
		Env:                  viper.GetString("APP_ENV"),
		LogLevel:             viper.GetString("LOG_LEVEL"),
		ConfigDir:            configDir,
		DataPath:             filepath.Join(configDir, "timekeeper.db"),
		KeyCachePath:         filepath.Join(configDir, "session.key"),
		SyncInterval:         viper.GetInt("SYNC_INTERVAL_SECONDS"),
		IdleThresholdMinutes: viper.GetInt("IDLE_THRESHOLD_MINUTES"),
		Pomodoro: Pomodoro{
			WorkMinutes:       viper.GetInt("POMODORO_WORK_MINUTES"),
			ShortBreakMinutes: viper.GetInt("POMODORO_SHORT_BREAK_MINUTES"),
			LongBreakMinutes:  viper.GetInt("POMODORO_LONG_BREAK_MINUTES"),
			CyclesBeforeLong:  viper.GetInt("POMODORO_CYCLES_BEFORE_LONG"),
			SnoozeMinutes:     viper.GetInt("POMODORO_SNOOZE_MINUTES"),
		},
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval_seconds должен быть положительным")
	}
	if c.IdleThresholdMinutes <= 0 {
		return fmt.Errorf("idle_threshold_minutes должен быть положительным")
	}
	if c.Pomodoro.WorkMinutes <= 0 || c.Pomodoro.CyclesBeforeLong <= 0 {
		return fmt.Errorf("некорректные настройки помодоро")
	}
	return nil
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
