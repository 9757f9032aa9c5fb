// cmd/client/cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/exp/slog"

	"timekeeper/internal/app/client"
	"timekeeper/internal/app/client/config"
	"timekeeper/internal/utils/logger"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *slog.Logger
	app *client.App
)

var rootCmd = &cobra.Command{
	Use:   "timekeeper",
	Short: "Timekeeper - учёт времени с шифрованной синхронизацией",
	Long: `Timekeeper — локальный трекер задач с синхронизацией между
устройствами. Записи шифруются на устройстве ключом аккаунта;
сервер видит только шифротекст.

Таймер, список задач и правки работают без сети — синхронизация
догонит, когда сервер станет доступен.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg = config.MustLoad()
	log = logger.New(cfg.Env)

	var err error
	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	// Команды в подпакетах достают приложение из контекста
	cmd.SetContext(context.WithValue(cmd.Context(), "app", app))

	return nil
}
