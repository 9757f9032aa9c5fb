// cmd/client/cmd/init.go
package cmd

import (
	"timekeeper/cmd/client/cmd/auth"
	"timekeeper/cmd/client/cmd/shortcut"
	syncmd "timekeeper/cmd/client/cmd/sync"
	"timekeeper/cmd/client/cmd/track"
)

func init() {
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(track.StartCmd)
	rootCmd.AddCommand(track.StopCmd)
	rootCmd.AddCommand(track.ListCmd)
	rootCmd.AddCommand(track.DeleteCmd)
	rootCmd.AddCommand(shortcut.ShortcutCmd)
	rootCmd.AddCommand(syncmd.SyncCmd)
	rootCmd.AddCommand(statusCmd)
}
