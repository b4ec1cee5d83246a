package processor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/nlp"
	"resume-insight-go/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Redactor 简历脱敏器：先按规则替换，再对NER识别出的白名单实体做替换。
// 构造完成后只读，可并发使用。
type Redactor struct {
	rules    []RedactionRule
	engine   LanguageEngine
	entities map[string]bool
}

// NewRedactor 创建脱敏器。entities 中的每个标签都必须是引擎NER组件声明过的标签。
func NewRedactor(engine LanguageEngine, entities []string, opts ...RedactorOpt) (*Redactor, error) {
	if engine == nil {
		return nil, NewConfigError(ErrConfiguration, "语言引擎不能为空")
	}

	r := &Redactor{
		rules:    DefaultRedactionRules(),
		engine:   engine,
		entities: make(map[string]bool, len(entities)),
	}
	for _, opt := range opts {
		opt(r)
	}

	if len(entities) > 0 {
		declared, err := engine.NERLabels()
		if err != nil {
			return nil, NewConfigError(ErrUnknownEntityLabel, "无法获取NER标签集合: %v", err)
		}
		known := make(map[string]bool, len(declared))
		for _, label := range declared {
			known[label] = true
		}
		var unknown []string
		for _, label := range entities {
			if !known[label] {
				unknown = append(unknown, label)
			}
			r.entities[label] = true
		}
		if len(unknown) > 0 {
			return nil, NewConfigError(ErrUnknownEntityLabel, "%s 不在NER标签集合 %v 中",
				strings.Join(unknown, ", "), declared)
		}
	}

	return r, nil
}

// Entities 返回脱敏实体标签白名单
func (r *Redactor) Entities() []string {
	out := make([]string, 0, len(r.entities))
	for label := range r.entities {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// CleanValue 接收任意类型的输入，非字符串返回 ErrInvalidInput
func (r *Redactor) CleanValue(ctx context.Context, v interface{}) (string, error) {
	text, ok := v.(string)
	if !ok {
		return "", NewInvalidInputError("clean", v)
	}
	return r.Clean(ctx, text)
}

// Clean 脱敏流程：
//  1. 删除噪声字符，合并空白
//  2. 按固定顺序应用规则，命中替换为 [LABEL]
//  3. 在第2步结果上运行NER
//  4. 白名单内的实体按起始偏移从右往左替换
func (r *Redactor) Clean(ctx context.Context, text string) (string, error) {
	ctx, span := tracer.Start(ctx, "Redactor.Clean")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		err := NewEmptyInputError("clean")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return "", err
	}
	span.SetAttributes(attribute.Int("resume.text_length", len(text)))

	cleaned, err := normalizeText(text)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return "", fmt.Errorf("clean: 文本归一化失败: %w", err)
	}
	for _, rule := range r.rules {
		if cleaned, err = rule.Apply(cleaned); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeInternal)
			return "", fmt.Errorf("clean: 规则 %s 执行失败: %w", rule.Label, err)
		}
	}

	if len(r.entities) == 0 || cleaned == "" {
		return cleaned, nil
	}

	doc, err := r.engine.Process(ctx, cleaned, nlp.OnlyPipes(nlp.PipeNER))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return "", err
	}

	result, redacted := redactEntities(cleaned, doc.Ents, r.entities)
	span.SetAttributes(attribute.Int("resume.entities_redacted", redacted))
	logger.Ctx(ctx).Debug().
		Int("text_length", len(text)).
		Int("cleaned_length", len(result)).
		Int("entities_redacted", redacted).
		Msg("简历脱敏完成")
	return result, nil
}

// redactEntities 从右往左替换实体，与已替换区间重叠的实体跳过
func redactEntities(text string, ents []nlp.Entity, allow map[string]bool) (string, int) {
	selected := make([]nlp.Entity, 0, len(ents))
	for _, e := range ents {
		if !allow[e.Label] {
			continue
		}
		if e.StartChar < 0 || e.EndChar > len(text) || e.StartChar >= e.EndChar {
			continue
		}
		selected = append(selected, e)
	}
	if len(selected) == 0 {
		return text, 0
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].StartChar > selected[j].StartChar
	})

	redacted := 0
	boundary := len(text)
	for _, e := range selected {
		if e.EndChar > boundary {
			continue
		}
		text = text[:e.StartChar] + "[" + e.Label + "]" + text[e.EndChar:]
		boundary = e.StartChar
		redacted++
	}
	return text, redacted
}
