package processor

import (
	"context"
	"fmt"
	"sort"

	"resume-insight-go/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// CategoryScore 单个类别的间隔分数
type CategoryScore struct {
	Label  string
	Margin float64
}

// ResumeClassifier 脱敏 -> 向量化 -> 线性模型打分 -> 取前 top_k 个类别
type ResumeClassifier struct {
	redactor   *Redactor
	embedder   TextEmbedder
	model      RankingModel
	classes    []string
	dimensions int
}

// NewResumeClassifier 创建分类器，所有依赖由调用方显式传入
func NewResumeClassifier(redactor *Redactor, embedder TextEmbedder, model RankingModel, opts ...ClassifierOpt) (*ResumeClassifier, error) {
	if redactor == nil {
		return nil, NewConfigError(ErrConfiguration, "脱敏器不能为空")
	}
	if embedder == nil {
		return nil, NewConfigError(ErrConfiguration, "嵌入器不能为空")
	}
	if model == nil {
		return nil, NewConfigError(ErrModelNotFound, "排序模型不能为空")
	}

	classes := model.Classes()
	if len(classes) == 0 {
		return nil, NewConfigError(ErrConfiguration, "排序模型没有任何类别")
	}

	c := &ResumeClassifier{
		redactor: redactor,
		embedder: embedder,
		model:    model,
		classes:  append([]string(nil), classes...),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.dimensions == 0 {
		if dp, ok := embedder.(DimensionsProvider); ok {
			c.dimensions = dp.GetDimensions()
		}
	}
	if fc, ok := model.(FeatureCounter); ok && c.dimensions > 0 && fc.NumFeatures() != c.dimensions {
		return nil, NewConfigError(ErrConfiguration, "嵌入维度 %d 与模型特征数 %d 不一致",
			c.dimensions, fc.NumFeatures())
	}

	return c, nil
}

// Classes 模型的类别，按模型原始顺序
func (c *ResumeClassifier) Classes() []string {
	return append([]string(nil), c.classes...)
}

// Redactor 分类器使用的脱敏器
func (c *ResumeClassifier) Redactor() *Redactor {
	return c.redactor
}

func (c *ResumeClassifier) checkTopK(topK int) error {
	if topK < 1 || topK > len(c.classes) {
		return NewTopKError(topK, len(c.classes))
	}
	return nil
}

// Classify 对原始简历文本分类，内部先脱敏
func (c *ResumeClassifier) Classify(ctx context.Context, text string, topK int) ([]string, error) {
	if err := c.checkTopK(topK); err != nil {
		return nil, err
	}
	cleaned, err := c.redactor.Clean(ctx, text)
	if err != nil {
		return nil, err
	}
	return c.Rank(ctx, cleaned, topK)
}

// Rank 对已脱敏文本分类，返回间隔分数最高的 topK 个类别
func (c *ResumeClassifier) Rank(ctx context.Context, cleaned string, topK int) ([]string, error) {
	if err := c.checkTopK(topK); err != nil {
		return nil, err
	}
	scores, err := c.Scores(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, topK)
	for _, s := range scores[:topK] {
		labels = append(labels, s.Label)
	}
	return labels, nil
}

// Scores 返回所有类别的分数，按间隔降序。
// 分数相同的类别保持模型原始的类别顺序 (稳定排序)。
func (c *ResumeClassifier) Scores(ctx context.Context, cleaned string) ([]CategoryScore, error) {
	ctx, span := tracer.Start(ctx, "ResumeClassifier.Scores")
	defer span.End()

	vectors, err := c.embedder.EmbedStrings(ctx, []string{cleaned})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, err
	}
	if len(vectors) != 1 {
		err = fmt.Errorf("嵌入服务返回 %d 个向量，期望 1 个", len(vectors))
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, err
	}

	margins, err := c.model.DecisionFunction(vectors[0])
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}
	if len(margins) != len(c.classes) {
		err = fmt.Errorf("模型返回 %d 个分数，类别数为 %d", len(margins), len(c.classes))
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}

	scores := make([]CategoryScore, len(c.classes))
	for i, label := range c.classes {
		scores[i] = CategoryScore{Label: label, Margin: margins[i]}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Margin > scores[j].Margin
	})

	span.SetAttributes(
		attribute.Int("resume.embedding_dimensions", len(vectors[0])),
		attribute.String("resume.top_category", scores[0].Label),
	)
	return scores, nil
}
