// cmd/client/cmd/auth/login.go
package auth

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"timekeeper/internal/app/client/crypto"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Войти в аккаунт",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if serverURL == "" {
			return fmt.Errorf("укажите адрес сервера: --server https://...")
		}

		passphrase, err := readPassphrase(false)
		if err != nil {
			return err
		}
		defer crypto.ClearMemory(passphrase)

		if err := app.Login(cmd.Context(), serverURL, args[0], passphrase); err != nil {
			return err
		}

		color.Green("Вход выполнен: %s", args[0])

		// первый цикл сразу, чтобы подтянуть данные с других устройств
		if result, err := app.Sync(cmd.Context()); err != nil {
			color.Yellow("Синхронизация не удалась: %v", err)
		} else if result != nil {
			fmt.Printf("Получено записей: %d, отправлено: %d\n", result.Applied, result.Pushed)
		}

		return nil
	},
}
