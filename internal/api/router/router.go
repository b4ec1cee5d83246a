package router

import (
	"context"
	"strings"

	"resume-insight-go/internal/api/handler"
	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/tracing"
	"resume-insight-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册 API 路由。apiKeys 非空时，除健康检查外的接口都需要 Bearer 鉴权。
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, apiKeys []string) {
	api := h.Group("/api/v1")

	// 健康检查不鉴权
	api.GET("/health", resumeHandler.HandleHealth)

	protected := api.Group("")
	if len(apiKeys) > 0 {
		protected.Use(newKeyAuth(apiKeys))
	}

	protected.POST("/resume/match", resumeHandler.HandleMatch)
	protected.POST("/resume/match/file", resumeHandler.HandleMatchFile)
	protected.POST("/resume/clean", resumeHandler.HandleClean)
	protected.GET("/categories", resumeHandler.HandleCategories)
}

// newKeyAuth 基于配置的 API Key 列表构建鉴权中间件
func newKeyAuth(apiKeys []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			allowed[k] = struct{}{}
		}
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			_, ok := allowed[key]
			return ok, nil
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			presented := strings.TrimSpace(strings.TrimPrefix(string(c.GetHeader("Authorization")), "Bearer"))
			logger.Ctx(ctx).Warn().Err(err).
				Str("path", string(c.Path())).
				Str("api_key", tracing.MaskSecret(presented)).
				Msg("API Key 鉴权失败")
			c.AbortWithStatusJSON(consts.StatusUnauthorized, types.ErrorResponse{Error: "无效或缺失的API Key"})
		}),
	)
}
