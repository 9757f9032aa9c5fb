// cmd/client/cmd/track/stop.go
package track

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var StopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Остановить таймер",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		stopped, err := app.StopTask()
		if err != nil {
			return err
		}

		color.Green("Таймер остановлен: %s", stopped.String())
		fmt.Printf("Длительность: %s\n", stopped.TotalTime().Round(time.Second))
		if stopped.Rate > 0 {
			fmt.Printf("Заработано: %.2f %s\n", stopped.TotalEarnings(), stopped.Currency)
		}

		return nil
	},
}
