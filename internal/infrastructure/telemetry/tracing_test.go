package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/minicrm/backend/internal/domain/lead"
	"github.com/minicrm/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestTracer installs a global provider backed by an in-memory span recorder
func setupTestTracer(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr, tp
}

func TestStartServiceSpan(t *testing.T) {
	sr, _ := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "lead", "create", attribute.String("lead.source", "Web"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "lead.create", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.Contains(t, spans[0].Attributes(), attribute.String("lead.source", "Web"))
}

func TestRecordError(t *testing.T) {
	sr, _ := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "lead", "list")
	telemetry.RecordError(span, errors.New("connection refused"))
	span.End()

	_, ok := telemetry.StartServiceSpan(context.Background(), "lead", "delete")
	telemetry.RecordError(ok, nil)
	ok.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "connection refused", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)

	// nil span is tolerated
	telemetry.RecordError(nil, errors.New("x"))
}

func TestRegisterDBTracing(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		assert.NoError(t, telemetry.RegisterDBTracing(nil, telemetry.DBTracingConfig{}, zap.NewNop()))
	})

	t.Run("statements become spans", func(t *testing.T) {
		sr := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
		defer tp.Shutdown(context.Background())

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.SetMaxOpenConns(1)
		defer sqlDB.Close()

		require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{
			Enabled:        true,
			DBSystem:       "sqlite",
			TracerProvider: tp,
		}, zap.NewNop()))

		require.NoError(t, db.AutoMigrate(&lead.Lead{}))
		before := len(sr.Ended())

		var leads []lead.Lead
		require.NoError(t, db.WithContext(context.Background()).Find(&leads).Error)

		assert.Greater(t, len(sr.Ended()), before)
	})
}
