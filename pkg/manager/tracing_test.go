package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/tecu23/sideduel-server/internal/rules"
	"github.com/tecu23/sideduel-server/pkg/events"
	"github.com/tecu23/sideduel-server/pkg/repository"
)

func TestActionsRecordSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	m := NewManager(
		repository.NewInMemoryRepository(zap.NewNop()),
		rules.NewStandard(),
		events.NewPublisher(),
		zap.NewNop(),
		WithTracer(tp.Tracer("test")),
	)

	ctx := context.Background()
	_, err := m.Join(ctx, "g1", "alice", "alice")
	require.NoError(t, err)
	_, err = m.MoveMain(ctx, "g1", "bob", mv("e7e5"))
	require.ErrorIs(t, err, ErrNotParticipant)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "manager.Join", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "manager.MoveMain", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, ErrNotParticipant.Error(), spans[1].Status().Description)
}
