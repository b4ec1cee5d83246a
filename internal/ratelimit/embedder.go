package ratelimit

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"
)

// RateLimitedEmbedder 对向量化调用进行限流的代理。只等待令牌，不做重试。
type RateLimitedEmbedder struct {
	original    embedding.Embedder
	rateLimiter *TokenBucket
}

// NewRateLimitedEmbedder 创建限流代理，qpm <= 0 时直接返回原始 Embedder
func NewRateLimitedEmbedder(original embedding.Embedder, qpm int) embedding.Embedder {
	if qpm <= 0 {
		return original
	}
	return &RateLimitedEmbedder{
		original:    original,
		rateLimiter: NewTokenBucket(qpm, qpm/2), // 容量设为QPM的一半，允许一定的突发流量
	}
}

// EmbedStrings 等待令牌后调用原始 Embedder
func (rl *RateLimitedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if err := rl.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	return rl.original.EmbedStrings(ctx, texts, opts...)
}

// GetDimensions 透传原始 Embedder 声明的维度
func (rl *RateLimitedEmbedder) GetDimensions() int {
	if dp, ok := rl.original.(interface{ GetDimensions() int }); ok {
		return dp.GetDimensions()
	}
	return 0
}
