package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitWithExporter_RecordsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	shutdown, err := InitWithExporter("scheduler-sim", "test", exp, nil)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "dispatch.handle")
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "dispatch.handle", spans[0].Name)
	require.NoError(t, shutdown(context.Background()))
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.json")
	shutdown, err := Init("scheduler-sim", "test", path)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "file-span")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "file-span")
}
