// cmd/client/cmd/sync/sync.go
package sync

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"timekeeper/internal/app/client"
	"timekeeper/internal/app/client/crypto"
)

var fullResync bool

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизировать с сервером",
	Long: `Выполняет один цикл синхронизации: забирает изменения с других
устройств, разрешает конфликты и отправляет свои. Флаг --full
перечитывает ленту сервера с нуля.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value("app").(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if fullResync {
			if err := app.RequestFullSync(); err != nil {
				return err
			}
		}

		result, err := app.Sync(cmd.Context())
		if errors.Is(err, crypto.ErrKeyNotLoaded) {
			if err = unlock(app); err != nil {
				return err
			}
			result, err = app.Sync(cmd.Context())
		}
		if err != nil {
			if errors.Is(err, client.ErrReauthRequired) {
				return fmt.Errorf("сессия недействительна, выполните: timekeeper auth login")
			}
			return err
		}

		if result == nil {
			fmt.Println("Синхронизация уже выполняется")
			return nil
		}

		color.Green("Синхронизация завершена")
		fmt.Printf("Получено: %d, применено: %d, отправлено: %d\n",
			result.Pulled, result.Applied, result.Pushed)
		if result.Skipped > 0 {
			color.Yellow("Пропущено нечитаемых записей: %d", result.Skipped)
		}
		fmt.Printf("Ревизия сервера: %d\n", result.Revision)

		return nil
	},
}

// unlock запрашивает парольную фразу и разворачивает ключ аккаунта,
// когда кэш ключа истёк
func unlock(app *client.App) error {
	color.Yellow("Кэш ключа истёк, нужна парольная фраза")
	fmt.Print("Парольная фраза: ")
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("ошибка чтения парольной фразы: %w", err)
	}
	defer crypto.ClearMemory(passphrase)

	if err := app.Unlock(passphrase); err != nil {
		if errors.Is(err, crypto.ErrWrongPassphrase) {
			return fmt.Errorf("парольная фраза не подходит")
		}
		return err
	}

	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&fullResync, "full", false, "перечитать ленту сервера с нуля")
}
