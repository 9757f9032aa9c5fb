// cmd/client/cmd/track/track.go
package track

import (
	"fmt"

	"github.com/spf13/cobra"

	"timekeeper/internal/app/client"
)

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value("app").(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
