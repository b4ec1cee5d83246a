package nlp

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// EntityRuler 基于词典的NER组件：每个标签对应一组短语，命中即标注为该标签。
// 适用于没有NER sidecar的部署和测试。
type EntityRuler struct {
	matcher *PhraseMatcher
	labels  []string
}

// RulerOption EntityRuler 配置选项
type RulerOption func(*rulerOptions)

type rulerOptions struct {
	attr   Attr
	labels []string
}

// WithRulerAttr 设置匹配属性，默认 AttrORTH
func WithRulerAttr(attr Attr) RulerOption {
	return func(o *rulerOptions) { o.attr = attr }
}

// WithRulerLabels 额外声明的标签，即使没有对应短语也会出现在 Labels() 中
func WithRulerLabels(labels ...string) RulerOption {
	return func(o *rulerOptions) { o.labels = append(o.labels, labels...) }
}

// NewEntityRuler 使用 tokenizer 把 patterns (标签 -> 短语列表) 编译为匹配器
func NewEntityRuler(tokenizer Tokenizer, patterns map[string][]string, opts ...RulerOption) *EntityRuler {
	if tokenizer == nil {
		tokenizer = NewRuleTokenizer()
	}
	o := &rulerOptions{attr: AttrORTH}
	for _, opt := range opts {
		opt(o)
	}

	matcher := NewPhraseMatcher(o.attr)
	labelSet := make(map[string]bool)
	for label, phrases := range patterns {
		labelSet[label] = true
		for _, phrase := range phrases {
			matcher.Add(label, &Doc{Text: phrase, Tokens: tokenizer.Tokenize(phrase)})
		}
	}
	for _, label := range o.labels {
		labelSet[label] = true
	}

	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return &EntityRuler{matcher: matcher, labels: labels}
}

// LoadRulerPatterns 从YAML文件读取 标签 -> 短语列表
func LoadRulerPatterns(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取实体词典失败: %w", err)
	}
	var patterns map[string][]string
	if err := yaml.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("解析实体词典失败: %w", err)
	}
	return patterns, nil
}

// Name 实现 Component 接口
func (r *EntityRuler) Name() string { return PipeNER }

// Labels 实现 LabelProvider 接口
func (r *EntityRuler) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Process 标注实体；重叠命中时保留最长的，长度相同时保留靠前的
func (r *EntityRuler) Process(_ context.Context, doc *Doc) error {
	matches := r.matcher.Match(doc)
	if len(matches) == 0 {
		doc.Ents = nil
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		li, lj := matches[i].End-matches[i].Start, matches[j].End-matches[j].Start
		if li != lj {
			return li > lj
		}
		return matches[i].Start < matches[j].Start
	})

	taken := make([]bool, len(doc.Tokens))
	var ents []Entity
	for _, m := range matches {
		free := true
		for k := m.Start; k < m.End; k++ {
			if taken[k] {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for k := m.Start; k < m.End; k++ {
			taken[k] = true
		}
		ents = append(ents, Entity{
			Label:     m.Key,
			StartChar: doc.Tokens[m.Start].Start,
			EndChar:   doc.Tokens[m.End-1].End,
		})
	}

	sort.Slice(ents, func(i, j int) bool { return ents[i].StartChar < ents[j].StartChar })
	doc.Ents = ents
	return nil
}
