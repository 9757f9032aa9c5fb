// cmd/client/cmd/track/delete.go
package track

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"timekeeper/internal/domain/task"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete <uid>",
	Short: "Удалить задачу",
	Long: `Ставит на задачу надгробие: запись исчезает из списков, а факт
удаления разносится по остальным устройствам при синхронизации.
Принимается полный uid или его уникальный префикс.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		uid, err := resolveUID(app, args[0])
		if err != nil {
			return err
		}

		if err := app.DeleteTask(uid); err != nil {
			return err
		}

		color.Green("Задача удалена")
		return nil
	},
}

// resolveUID разрешает префикс uid в полный идентификатор
func resolveUID(app appLister, prefix string) (string, error) {
	tasks, err := app.ListTasks(0)
	if err != nil {
		return "", err
	}

	var found string
	for _, t := range tasks {
		if len(prefix) <= len(t.UID) && t.UID[:len(prefix)] == prefix {
			if found != "" {
				return "", fmt.Errorf("префикс %q неоднозначен", prefix)
			}
			found = t.UID
		}
	}

	if found == "" {
		return "", task.ErrNotFound
	}

	return found, nil
}

type appLister interface {
	ListTasks(limit int) ([]task.Task, error)
}
