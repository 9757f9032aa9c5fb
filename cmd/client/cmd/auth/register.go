// cmd/client/cmd/auth/register.go
package auth

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"timekeeper/internal/app/client/crypto"
)

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Создать аккаунт и войти",
	Long: `Создает аккаунт на сервере синхронизации и генерирует ключ
аккаунта. Ключ оборачивается парольной фразой и хранится только на
устройстве: восстановить данные без фразы невозможно.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if serverURL == "" {
			return fmt.Errorf("укажите адрес сервера: --server https://...")
		}

		passphrase, err := readPassphrase(true)
		if err != nil {
			return err
		}
		defer crypto.ClearMemory(passphrase)

		if err := app.Register(cmd.Context(), serverURL, args[0], passphrase); err != nil {
			return err
		}

		color.Green("Аккаунт создан: %s", args[0])
		fmt.Println("Сохраните парольную фразу: без неё данные не восстановить.")

		return nil
	},
}
