// cmd/client/cmd/status.go
package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать состояние таймера и синхронизации",
	RunE: func(cmd *cobra.Command, args []string) error {
		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		if current, ok := app.Timer().Current(); ok {
			elapsed := time.Since(time.UnixMilli(current.StartTime)).Round(time.Second)
			fmt.Printf("Таймер: %s %s (%s)\n", green("идёт"), cyan(current.String()), elapsed)
		} else {
			fmt.Printf("Таймер: %s\n", yellow("остановлен"))
		}

		fmt.Printf("Сессия: %s\n", app.Session().State())

		cursor, err := app.Cursor()
		if err != nil {
			return err
		}

		if cursor.LastSyncedAt > 0 {
			fmt.Printf("Последняя синхронизация: %s (ревизия %d)\n",
				time.UnixMilli(cursor.LastSyncedAt).Format("2006-01-02 15:04:05"),
				cursor.LastRevision)
		} else {
			fmt.Printf("Синхронизация ещё не выполнялась\n")
		}

		dirty, err := app.DirtyCount()
		if err != nil {
			return err
		}
		if dirty > 0 {
			fmt.Printf("Ожидают отправки: %s\n", yellow(dirty))
		}

		return nil
	},
}
