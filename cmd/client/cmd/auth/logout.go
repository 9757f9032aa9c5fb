// cmd/client/cmd/auth/logout.go
package auth

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из аккаунта на этом устройстве",
	Long: `Отзывает сессию устройства на сервере и затирает токены и ключ
аккаунта в памяти. Локальные данные и обёрнутый ключ остаются на диске
до следующего входа.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.Logout(cmd.Context()); err != nil {
			return err
		}

		color.Green("Выход выполнен")
		return nil
	},
}
