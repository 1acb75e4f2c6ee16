package providers

import (
	"io"
	"log/slog"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taplistapp/taplist-server/internal/logger"
)

func TestProvideSlogLogger(t *testing.T) {
	injector := do.New()

	log := logger.New(logger.Config{Writer: io.Discard, Environment: "production"})
	do.ProvideValue(injector, log)
	do.Provide(injector, ProvideSlogLogger)

	slogger, err := do.Invoke[*slog.Logger](injector)
	require.NoError(t, err)
	assert.Same(t, log.Logger, slogger)
}
