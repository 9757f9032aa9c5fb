// cmd/client/cmd/track/start.go
package track

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var fromShortcut string

var StartCmd = &cobra.Command{
	Use:   "start [описание задачи]",
	Short: "Запустить таймер",
	Long: `Запускает таймер по строке описания:

    timekeeper start "Правки макета @design #ui $40"

@слово задает проект, #слова - теги, $число - почасовую ставку.
Идущий таймер при этом останавливается: на устройстве не может идти
два таймера сразу.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if fromShortcut != "" {
			started, err := app.StartFromShortcut(fromShortcut)
			if err != nil {
				return err
			}
			color.Green("Таймер запущен: %s", started.String())
			return nil
		}

		started, err := app.StartTask(strings.Join(args, " "))
		if err != nil {
			return err
		}

		color.Green("Таймер запущен: %s", started.String())
		return nil
	},
}

func init() {
	StartCmd.Flags().StringVarP(&fromShortcut, "shortcut", "s", "", "запустить по имени шаблона")
}
