package health

import (
	"context"
	"errors"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(_ context.Context) error {
	return p.err
}

func TestHandler_healthCheck(t *testing.T) {
	handler := NewHandler(&stubPinger{}, slog.Default(), huma.Middlewares{})

	output, err := handler.healthCheck(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, "Ok", output.Body.Status)
	assert.Equal(t, "Ok", output.Body.Database)
}

func TestHandler_healthCheck_DatabaseDown(t *testing.T) {
	handler := NewHandler(&stubPinger{err: errors.New("connection refused")},
		slog.Default(), huma.Middlewares{})

	output, err := handler.healthCheck(context.Background(), &Input{})

	require.Error(t, err)
	assert.Nil(t, output)

	var status huma.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 503, status.GetStatus())
}
