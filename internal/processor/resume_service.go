package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"resume-insight-go/internal/tracing"
	"resume-insight-go/internal/types"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// 定义tracer
var tracer = otel.Tracer("processor")

var (
	ErrClassifierNotInit = errors.New("classifier is not initialized")
	ErrExtractorNotInit  = errors.New("skills extractor is not initialized")
	ErrPDFExtractorUnset = errors.New("pdf extractor is not configured")
)

// ResumeService 简历匹配服务：脱敏一次，然后在脱敏文本上分别做分类和技能抽取
type ResumeService struct {
	classifier   *ResumeClassifier
	extractor    *SkillsExtractor
	cache        CategoryCache
	pdfExtractor PDFExtractor
	defaultTopK  int
	logger       *zerolog.Logger
}

// NewResumeService 创建简历匹配服务
func NewResumeService(classifier *ResumeClassifier, extractor *SkillsExtractor, opts ...ServiceOpt) (*ResumeService, error) {
	if classifier == nil {
		return nil, ErrClassifierNotInit
	}
	if extractor == nil {
		return nil, ErrExtractorNotInit
	}
	nop := zerolog.Nop()
	s := &ResumeService{
		classifier:  classifier,
		extractor:   extractor,
		defaultTopK: 2,
		logger:      &nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultTopK > len(classifier.classes) {
		s.defaultTopK = len(classifier.classes)
	}
	return s, nil
}

// Categories 模型支持的全部类别
func (s *ResumeService) Categories() []string {
	return s.classifier.Classes()
}

// DefaultTopK 默认返回的类别数
func (s *ResumeService) DefaultTopK() int {
	return s.defaultTopK
}

// Clean 只做脱敏
func (s *ResumeService) Clean(ctx context.Context, resumeText interface{}) (string, error) {
	return s.classifier.redactor.CleanValue(ctx, resumeText)
}

// Match 脱敏后返回 top_k 个类别与技能映射。任何一步失败都不返回部分结果。
func (s *ResumeService) Match(ctx context.Context, resumeText interface{}, topK int) (*types.MatchResult, error) {
	ctx, span := tracer.Start(ctx, "ResumeService.Match")
	defer span.End()

	if topK == 0 {
		topK = s.defaultTopK
	}
	if err := s.classifier.checkTopK(topK); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	span.SetAttributes(attribute.Int("resume.top_k", topK))

	cleaned, err := s.classifier.redactor.CleanValue(ctx, resumeText)
	if err != nil {
		if IsInputError(err) {
			tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		} else {
			tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		}
		return nil, err
	}

	categories, err := s.rank(ctx, cleaned, topK)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, err
	}

	skills, err := s.extractor.Extract(ctx, cleaned)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}

	s.logger.Info().
		Int("cleaned_length", len(cleaned)).
		Strs("categories", categories).
		Int("skills", len(skills)).
		Msg("简历匹配完成")

	return &types.MatchResult{Categories: categories, Skills: skills}, nil
}

// MatchFile 从上传的PDF中提取文本后匹配
func (s *ResumeService) MatchFile(ctx context.Context, reader io.Reader, filename string, topK int) (*types.MatchResult, error) {
	if s.pdfExtractor == nil {
		return nil, ErrPDFExtractorUnset
	}
	text, _, err := s.pdfExtractor.ExtractTextFromReader(ctx, reader, filename, nil)
	if err != nil {
		return nil, fmt.Errorf("提取PDF文本失败: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, NewEmptyInputError("match_file")
	}
	return s.Match(ctx, text, topK)
}

// rank 先查缓存，未命中时调用分类器并回写。缓存读写失败只记录日志。
func (s *ResumeService) rank(ctx context.Context, cleaned string, topK int) ([]string, error) {
	if s.cache != nil {
		categories, ok, err := s.cache.GetCategories(ctx, cleaned, topK)
		if err != nil {
			s.logger.Warn().Err(err).Msg("读取分类缓存失败")
		} else if ok {
			s.logger.Debug().Int("top_k", topK).Msg("分类缓存命中")
			return categories, nil
		}
	}

	categories, err := s.classifier.Rank(ctx, cleaned, topK)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, cleaned, topK, categories); err != nil {
			s.logger.Warn().Err(err).Msg("写入分类缓存失败")
		}
	}
	return categories, nil
}
