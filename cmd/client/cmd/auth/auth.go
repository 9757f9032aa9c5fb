// cmd/client/cmd/auth/auth.go
package auth

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"timekeeper/internal/app/client"
)

var serverURL string

var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление аккаунтом",
	Long: `Вход, регистрация и выход из аккаунта синхронизации.

Парольная фраза не покидает устройство: сервер получает только её
детерминированный дайджест, а ключ аккаунта хранится обёрнутым.`,
}

func init() {
	AuthCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера синхронизации (с http:// или https://)")

	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(registerCmd)
	AuthCmd.AddCommand(logoutCmd)
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value("app").(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

func readPassphrase(confirm bool) ([]byte, error) {
	fmt.Print("Парольная фраза: ")
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения парольной фразы: %w", err)
	}

	if len(passphrase) < 8 {
		return nil, fmt.Errorf("парольная фраза должна содержать минимум 8 символов")
	}

	if confirm {
		fmt.Print("Повторите парольную фразу: ")
		again, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения парольной фразы: %w", err)
		}
		if string(passphrase) != string(again) {
			return nil, fmt.Errorf("парольные фразы не совпадают")
		}
	}

	return passphrase, nil
}
