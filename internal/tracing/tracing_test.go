package tracing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"resume-insight-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "ab...gh", TruncateString("abcdefgh", 7))
	assert.Equal(t, "简历...内容", TruncateString("简历中的很多内容", 7))
	assert.Equal(t, "", TruncateString("abc", 0))
	assert.True(t, utf8.ValidString(TruncateString(strings.Repeat("简", 300), DefaultMaxLength)))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "*", MaskSecret("a"))
	assert.Equal(t, "k*", MaskSecret("k1"))
	assert.Equal(t, "ab**", MaskSecret("abcd"))
	assert.Equal(t, "Be********en", MaskSecret("Bearer token"))
}

func TestSafeRedisKey(t *testing.T) {
	short := "app:resume:categories:abc:2"
	assert.Equal(t, short, SafeRedisKey(short))
	assert.Len(t, []rune(SafeRedisKey(strings.Repeat("k", 500))), MaxRedisLength-1)
}

func spanAttrs(t *testing.T, recorder *tracetest.SpanRecorder) map[attribute.Key]attribute.Value {
	t.Helper()
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	RecordError(span, errors.New(strings.Repeat("x", 500)), ErrorTypeExternal)
	RecordError(span, nil, ErrorTypeInternal)
	span.End()

	assert.Equal(t, codes.Error, recorder.Ended()[0].Status().Code)
	attrs := spanAttrs(t, recorder)
	assert.Equal(t, "external_system", attrs["error.type"].AsString())
	assert.LessOrEqual(t, len(attrs["error.message"].AsString()), DefaultMaxLength)
}

func TestRecordError_DeadlineIsTimeout(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	RecordError(span, fmt.Errorf("embedding: %w", context.DeadlineExceeded), ErrorTypeExternal)
	span.End()

	assert.Equal(t, "timeout", spanAttrs(t, recorder)["error.type"].AsString())
}

func TestRecordHTTPError(t *testing.T) {
	for _, tt := range []struct {
		status   int
		category string
	}{
		{400, "client_error"},
		{500, "server_error"},
	} {
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		_, span := tp.Tracer("test").Start(context.Background(), "http")
		RecordHTTPError(span, errors.New("request failed"), tt.status)
		span.End()

		attrs := spanAttrs(t, recorder)
		assert.Equal(t, tt.category, attrs["error.category"].AsString())
		assert.Equal(t, int64(tt.status), attrs["http.status_code"].AsInt64())
		assert.Equal(t, "http", attrs["error.type"].AsString())
	}
}

func TestInitProvider_Disabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = InitProvider(context.Background(), config.TracingConfig{Enabled: true}, "test")
	assert.Error(t, err)
}
