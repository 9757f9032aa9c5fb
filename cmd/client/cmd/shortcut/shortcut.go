// cmd/client/cmd/shortcut/shortcut.go
package shortcut

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"timekeeper/internal/app/client"
)

var colorHex string

var ShortcutCmd = &cobra.Command{
	Use:   "shortcut",
	Short: "Шаблоны быстрого старта",
	Long: `Шаблон хранит готовое сочетание проекта, тегов и ставки, чтобы
запускать частые задачи одной командой: timekeeper start -s <имя>.`,
}

var createCmd = &cobra.Command{
	Use:   "create <описание>",
	Short: "Создать шаблон",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		sc, err := app.CreateShortcut(strings.Join(args, " "), colorHex)
		if err != nil {
			return err
		}

		color.Green("Шаблон создан: %s", sc.String())
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать шаблоны",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		shortcuts, err := app.ListShortcuts()
		if err != nil {
			return err
		}

		if len(shortcuts) == 0 {
			fmt.Println("Шаблонов пока нет")
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		for _, sc := range shortcuts {
			fmt.Printf("%s  %s\n", sc.UID[:8], cyan(sc.String()))
		}

		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <имя>",
	Short: "Удалить шаблон",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		shortcuts, err := app.ListShortcuts()
		if err != nil {
			return err
		}

		for _, sc := range shortcuts {
			if sc.Name == args[0] {
				if err := app.DeleteShortcut(sc.UID); err != nil {
					return err
				}
				color.Green("Шаблон удалён")
				return nil
			}
		}

		return fmt.Errorf("шаблон %q не найден", args[0])
	},
}

func init() {
	createCmd.Flags().StringVar(&colorHex, "color", "", "цвет шаблона, например #FF8800")

	ShortcutCmd.AddCommand(createCmd)
	ShortcutCmd.AddCommand(listCmd)
	ShortcutCmd.AddCommand(deleteCmd)
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value("app").(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
