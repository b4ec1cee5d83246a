package processor

import (
	"context"
	"sort"
	"strings"

	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/nlp"
	"resume-insight-go/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// SkillIndex 技能短语索引：词典中的每个短语编译为一个不区分大小写的短语模式。
// 抽取结果以匹配到的原文为键，首选标签不参与匹配。
type SkillIndex struct {
	matcher *nlp.PhraseMatcher
}

// CompileSkillIndex 用引擎的分词器编译技能词典 (短语 -> 首选标签)，按短语排序后依次加入
func CompileSkillIndex(engine LanguageEngine, skillMap map[string]string) (*SkillIndex, error) {
	if engine == nil {
		return nil, NewConfigError(ErrConfiguration, "语言引擎不能为空")
	}
	phrases := make([]string, 0, len(skillMap))
	for phrase := range skillMap {
		phrases = append(phrases, phrase)
	}
	sort.Strings(phrases)

	idx := &SkillIndex{matcher: nlp.NewPhraseMatcher(nlp.AttrLOWER)}
	for _, phrase := range phrases {
		idx.matcher.Add(phrase, engine.MakeDoc(phrase))
	}
	return idx, nil
}

// Len 已编译的模式数量
func (i *SkillIndex) Len() int {
	return i.matcher.Len()
}

// SkillsExtractor 技能抽取：句子切分 + 短语匹配，每个技能只保留第一次出现所在的句子
type SkillsExtractor struct {
	engine LanguageEngine
	index  *SkillIndex
}

// NewSkillsExtractor 创建技能抽取器。引擎没有句子切分组件时自动安装默认组件。
func NewSkillsExtractor(engine LanguageEngine, index *SkillIndex) (*SkillsExtractor, error) {
	if engine == nil {
		return nil, NewConfigError(ErrConfiguration, "语言引擎不能为空")
	}
	if index == nil {
		return nil, NewConfigError(ErrSkillMapNotFound, "技能索引不能为空")
	}
	if engine.EnsurePipe(nlp.NewSentencizer(), true) {
		logger.Debug().Msg("语言引擎未配置句子切分组件，已安装默认组件")
	}
	return &SkillsExtractor{engine: engine, index: index}, nil
}

// Extract 返回 技能(匹配原文小写) -> 首次出现所在的句子
func (e *SkillsExtractor) Extract(ctx context.Context, text string) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "SkillsExtractor.Extract")
	defer span.End()

	skills := make(map[string]string)
	if strings.TrimSpace(text) == "" {
		return skills, nil
	}

	doc, err := e.engine.Process(ctx, text, nlp.OnlyPipes(nlp.PipeSentencizer))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}

	for _, m := range e.index.matcher.Match(doc) {
		key := strings.ToLower(doc.SpanText(m.Start, m.End))
		if _, seen := skills[key]; seen {
			continue
		}
		sentence := ""
		if s, ok := doc.SentenceOf(m.Start); ok {
			sentence = strings.TrimSpace(doc.SpanText(s.Start, s.End))
		}
		skills[key] = sentence
	}

	span.SetAttributes(attribute.Int("resume.skills_found", len(skills)))
	return skills, nil
}
