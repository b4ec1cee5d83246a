package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 写入 span 的 error.type，便于按来源过滤
type ErrorType string

const (
	ErrorTypeHTTP       ErrorType = "http"
	ErrorTypeRedis      ErrorType = "redis"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInternal   ErrorType = "internal"
	// ErrorTypeExternal 嵌入服务、NER sidecar、对象存储
	ErrorTypeExternal ErrorType = "external_system"
	// ErrorTypeTimeout 由 RecordError 根据 context 错误自动归类
	ErrorTypeTimeout ErrorType = "timeout"
)

// RecordError 在 span 上记录错误。超时类错误统一归为 ErrorTypeTimeout，
// error.message 截断到 DefaultMaxLength。
func RecordError(span trace.Span, err error, errorType ErrorType, attrs ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		errorType = ErrorTypeTimeout
	}

	message := TruncateString(err.Error(), DefaultMaxLength)
	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", message),
	)
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Error, message)
}

// RecordHTTPError 记录请求级错误，附带状态码和 client_error / server_error 分类
func RecordHTTPError(span trace.Span, err error, statusCode int) {
	category := "server_error"
	if statusCode >= 400 && statusCode < 500 {
		category = "client_error"
	}
	RecordError(span, err, ErrorTypeHTTP,
		attribute.Int("http.status_code", statusCode),
		attribute.String("error.category", category),
	)
}
