package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"resume-insight-go/internal/config"
	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/nlp"
	"resume-insight-go/internal/parser"
	"resume-insight-go/internal/processor"
	"resume-insight-go/internal/ratelimit"
	"resume-insight-go/internal/storage"
)

// buildPipeline 按 nlp.ner.backend 组装语言处理流水线
func buildPipeline(ctx context.Context, cfg config.NERConfig) (*nlp.Pipeline, error) {
	tokenizer := nlp.NewRuleTokenizer()

	switch cfg.Backend {
	case "sidecar":
		if cfg.SidecarURL == "" {
			return nil, processor.NewConfigError(processor.ErrConfiguration, "nlp.ner.sidecar_url 不能为空")
		}
		ner, err := nlp.NewSidecarRecognizer(ctx, cfg.SidecarURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
		if err != nil {
			return nil, processor.NewConfigError(processor.ErrConfiguration, "连接NER sidecar失败: %v", err)
		}
		return nlp.NewPipeline(tokenizer, ner)
	case "ruler":
		patterns, err := nlp.LoadRulerPatterns(cfg.RulerPatterns)
		if err != nil {
			return nil, processor.NewConfigError(processor.ErrConfiguration, "加载实体词典失败: %v", err)
		}
		var opts []nlp.RulerOption
		if len(cfg.RulerLabels) > 0 {
			opts = append(opts, nlp.WithRulerLabels(cfg.RulerLabels...))
		}
		return nlp.NewPipeline(tokenizer, nlp.NewEntityRuler(tokenizer, patterns, opts...))
	case "none":
		return nlp.NewPipeline(tokenizer)
	default:
		return nil, processor.NewConfigError(processor.ErrConfiguration, "未知的NER后端 %q", cfg.Backend)
	}
}

// loadModel 从制品来源读取线性模型
func loadModel(ctx context.Context, store *storage.Storage, name string) (*parser.LinearModel, error) {
	rc, err := store.OpenArtifact(ctx, name)
	if err != nil {
		return nil, processor.NewConfigError(processor.ErrModelNotFound, "%s: %v", name, err)
	}
	defer rc.Close()
	return parser.LoadLinearModelFrom(rc)
}

// loadSkillMap 从制品来源读取技能词典
func loadSkillMap(ctx context.Context, store *storage.Storage, name string) (map[string]string, error) {
	rc, err := store.OpenArtifact(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, processor.NewConfigError(processor.ErrSkillMapNotFound, "%s", name)
		}
		return nil, processor.NewConfigError(processor.ErrSkillMapNotFound, "%s: %v", name, err)
	}
	defer rc.Close()
	return parser.LoadSkillMapFrom(rc)
}

// buildService 组装脱敏器、分类器、技能抽取器与匹配服务
func buildService(ctx context.Context, cfg *config.Config, store *storage.Storage) (*processor.ResumeService, error) {
	pipeline, err := buildPipeline(ctx, cfg.NLP.NER)
	if err != nil {
		return nil, err
	}
	nerLabels, _ := pipeline.NERLabels()
	logger.Info().Strs("pipes", pipeline.PipeNames()).Strs("ner_labels", nerLabels).Msg("语言处理流水线就绪")

	redactor, err := processor.NewRedactor(pipeline, cfg.NLP.PIIEntities)
	if err != nil {
		return nil, err
	}

	embedder, err := parser.NewOpenAIEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	limited := ratelimit.NewRateLimitedEmbedder(embedder, cfg.Embedding.QPM)

	model, err := loadModel(ctx, store, cfg.Classifier.ModelPath)
	if err != nil {
		return nil, err
	}
	classifier, err := processor.NewResumeClassifier(redactor, limited, model)
	if err != nil {
		return nil, err
	}

	skillMap, err := loadSkillMap(ctx, store, cfg.Skills.SkillMapPath)
	if err != nil {
		return nil, err
	}
	index, err := processor.CompileSkillIndex(pipeline, skillMap)
	if err != nil {
		return nil, err
	}
	extractor, err := processor.NewSkillsExtractor(pipeline, index)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("classes", len(model.Classes())).
		Int("features", model.NumFeatures()).
		Int("skill_phrases", index.Len()).
		Msg("模型与技能词典加载完成")

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx, parser.WithEinoLogger(logger.Logger))
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF提取器失败: %w", err)
	}

	serviceLogger := logger.Logger.With().Str("component", "resume_service").Logger()
	opts := []processor.ServiceOpt{
		processor.WithDefaultTopK(cfg.Classifier.DefaultTopK),
		processor.WithPDFExtractor(pdfExtractor),
		processor.WithServiceLogger(&serviceLogger),
	}
	if cache := store.CategoryCache(); cache != nil {
		opts = append(opts, processor.WithCategoryCache(cache))
	}
	return processor.NewResumeService(classifier, extractor, opts...)
}
