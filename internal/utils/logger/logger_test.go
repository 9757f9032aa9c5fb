package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"timekeeper/internal/app/server/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		debugOn bool
	}{
		{name: "local пишет debug", env: config.EnvLocal, debugOn: true},
		{name: "dev пишет debug", env: config.EnvDev, debugOn: true},
		{name: "prod начинается с info", env: config.EnvProd, debugOn: false},
		{name: "неизвестное окружение как local", env: "staging", debugOn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.env)
			require.NotNil(t, log)

			ctx := context.Background()
			assert.Equal(t, tt.debugOn, log.Enabled(ctx, slog.LevelDebug))
			assert.True(t, log.Enabled(ctx, slog.LevelInfo), "info включен везде")
		})
	}
}
