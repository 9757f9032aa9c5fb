// cmd/client/cmd/track/list.go
package track

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listLimit int

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать задачи",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		tasks, err := app.ListTasks(listLimit)
		if err != nil {
			return err
		}

		if len(tasks) == 0 {
			fmt.Println("Задач пока нет")
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()

		for _, t := range tasks {
			start := time.UnixMilli(t.StartTime).Format("2006-01-02 15:04")
			if t.IsRunning() {
				fmt.Printf("%s  %s  %s  %s\n", t.UID[:8], start, cyan(t.String()), green("идёт"))
			} else {
				fmt.Printf("%s  %s  %s  %s\n", t.UID[:8], start, cyan(t.String()),
					t.TotalTime().Round(time.Second))
			}
		}

		return nil
	},
}

func init() {
	ListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "сколько задач показать")
}
