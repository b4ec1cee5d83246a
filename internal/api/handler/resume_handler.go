package handler

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/processor"
	"resume-insight-go/internal/tracing"
	"resume-insight-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader 响应中回传的请求ID头
const RequestIDHeader = "X-Request-ID"

// ResumeMatcher 处理器依赖的简历服务能力，由 processor.ResumeService 实现
type ResumeMatcher interface {
	Match(ctx context.Context, resumeText interface{}, topK int) (*types.MatchResult, error)
	MatchFile(ctx context.Context, reader io.Reader, filename string, topK int) (*types.MatchResult, error)
	Clean(ctx context.Context, resumeText interface{}) (string, error)
	Categories() []string
}

var _ ResumeMatcher = (*processor.ResumeService)(nil)

// ResumeHandler 简历匹配HTTP处理器
type ResumeHandler struct {
	service ResumeMatcher
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(service ResumeMatcher) *ResumeHandler {
	return &ResumeHandler{service: service}
}

// withRequestID 生成UUIDv7请求ID并挂到日志上下文
func withRequestID(ctx context.Context, c *app.RequestContext) (context.Context, string) {
	requestID := string(c.GetHeader(RequestIDHeader))
	if requestID == "" {
		if id, err := uuid.NewV7(); err == nil {
			requestID = id.String()
		}
	}
	c.Header(RequestIDHeader, requestID)
	l := logger.Ctx(ctx).With().Str("request_id", requestID).Logger()
	return l.WithContext(ctx), requestID
}

// writeError 输入错误返回400，其余一律500，且不返回部分结果
func writeError(ctx context.Context, c *app.RequestContext, requestID string, err error) {
	status := consts.StatusInternalServerError
	message := "内部错误"
	if processor.IsInputError(err) {
		status = consts.StatusBadRequest
		message = err.Error()
	}
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)
	logger.Ctx(ctx).Warn().Err(err).Int("status", status).Msg("请求处理失败")
	c.JSON(status, types.ErrorResponse{Error: message, RequestID: requestID})
}

// HandleMatch POST /api/v1/resume/match
func (h *ResumeHandler) HandleMatch(ctx context.Context, c *app.RequestContext) {
	ctx, requestID := withRequestID(ctx, c)

	var req types.MatchRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, types.ErrorResponse{Error: "请求体不是合法的JSON", RequestID: requestID})
		return
	}

	result, err := h.service.Match(ctx, req.ResumeText, req.TopK)
	if err != nil {
		writeError(ctx, c, requestID, err)
		return
	}
	c.JSON(consts.StatusOK, result)
}

// HandleMatchFile POST /api/v1/resume/match/file (multipart, 字段 file, 可选 top_k)
func (h *ResumeHandler) HandleMatchFile(ctx context.Context, c *app.RequestContext) {
	ctx, requestID := withRequestID(ctx, c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, types.ErrorResponse{Error: "文件未找到", RequestID: requestID})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		c.JSON(consts.StatusBadRequest, types.ErrorResponse{Error: "仅支持PDF文件", RequestID: requestID})
		return
	}

	topK := 0
	if v := c.PostForm("top_k"); v != "" {
		if topK, err = strconv.Atoi(v); err != nil {
			c.JSON(consts.StatusBadRequest, types.ErrorResponse{Error: "top_k 必须是整数", RequestID: requestID})
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(ctx, c, requestID, err)
		return
	}
	defer file.Close()

	result, err := h.service.MatchFile(ctx, file, fileHeader.Filename, topK)
	if err != nil {
		writeError(ctx, c, requestID, err)
		return
	}
	c.JSON(consts.StatusOK, result)
}

// HandleClean POST /api/v1/resume/clean
func (h *ResumeHandler) HandleClean(ctx context.Context, c *app.RequestContext) {
	ctx, requestID := withRequestID(ctx, c)

	var req types.CleanRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, types.ErrorResponse{Error: "请求体不是合法的JSON", RequestID: requestID})
		return
	}

	cleaned, err := h.service.Clean(ctx, req.ResumeText)
	if err != nil {
		writeError(ctx, c, requestID, err)
		return
	}
	c.JSON(consts.StatusOK, types.CleanResponse{CleanedText: cleaned})
}

// HandleCategories GET /api/v1/categories
func (h *ResumeHandler) HandleCategories(_ context.Context, c *app.RequestContext) {
	categories := h.service.Categories()
	c.JSON(consts.StatusOK, types.CategoriesResponse{Categories: categories, Count: len(categories)})
}

// HandleHealth GET /api/v1/health
func (h *ResumeHandler) HandleHealth(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}
