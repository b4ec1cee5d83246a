package nlp

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// 组件名称
const (
	PipeSentencizer = "sentencizer"
	PipeNER         = "ner"
)

var (
	// ErrDuplicatePipe 同名组件已注册
	ErrDuplicatePipe = errors.New("组件已存在")
	// ErrNoEntityRecognizer 流水线中没有NER组件，无法提供标签集合
	ErrNoEntityRecognizer = errors.New("流水线中没有NER组件")
)

// Component 流水线组件，在 Doc 上就地写入结果。实现必须可并发调用。
type Component interface {
	Name() string
	Process(ctx context.Context, doc *Doc) error
}

// LabelProvider 声明自身输出标签集合的组件 (NER)
type LabelProvider interface {
	Labels() []string
}

// Pipeline 语言处理流水线：分词器 + 有序组件
type Pipeline struct {
	mu        sync.RWMutex
	tokenizer Tokenizer
	pipes     []Component
}

// NewPipeline 创建流水线，tokenizer 为 nil 时使用 RuleTokenizer
func NewPipeline(tokenizer Tokenizer, components ...Component) (*Pipeline, error) {
	if tokenizer == nil {
		tokenizer = NewRuleTokenizer()
	}
	p := &Pipeline{tokenizer: tokenizer}
	for _, c := range components {
		if err := p.AddPipe(c, false); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// HasPipe 是否已注册指定名称的组件
func (p *Pipeline) HasPipe(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexOf(name) >= 0
}

func (p *Pipeline) indexOf(name string) int {
	for i, c := range p.pipes {
		if c.Name() == name {
			return i
		}
	}
	return -1
}

// AddPipe 注册组件，first 为 true 时放在最前面；同名组件已存在时返回 ErrDuplicatePipe
func (p *Pipeline) AddPipe(c Component, first bool) error {
	if c == nil {
		return fmt.Errorf("组件不能为空")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.indexOf(c.Name()) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicatePipe, c.Name())
	}
	if first {
		p.pipes = append([]Component{c}, p.pipes...)
	} else {
		p.pipes = append(p.pipes, c)
	}
	return nil
}

// EnsurePipe 组件不存在时注册，已存在时不做任何事。返回是否发生了注册。
func (p *Pipeline) EnsurePipe(c Component, first bool) bool {
	if c == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.indexOf(c.Name()) >= 0 {
		return false
	}
	if first {
		p.pipes = append([]Component{c}, p.pipes...)
	} else {
		p.pipes = append(p.pipes, c)
	}
	return true
}

// PipeNames 按执行顺序返回组件名称
func (p *Pipeline) PipeNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.pipes))
	for _, c := range p.pipes {
		names = append(names, c.Name())
	}
	return names
}

// GetPipe 按名称获取组件
func (p *Pipeline) GetPipe(name string) (Component, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i := p.indexOf(name); i >= 0 {
		return p.pipes[i], true
	}
	return nil, false
}

// NERLabels 返回NER组件声明的标签集合
func (p *Pipeline) NERLabels() ([]string, error) {
	c, ok := p.GetPipe(PipeNER)
	if !ok {
		return nil, ErrNoEntityRecognizer
	}
	lp, ok := c.(LabelProvider)
	if !ok {
		return nil, fmt.Errorf("NER组件 %T 未声明标签集合", c)
	}
	return lp.Labels(), nil
}

// MakeDoc 只分词，不运行任何组件
func (p *Pipeline) MakeDoc(text string) *Doc {
	return &Doc{Text: text, Tokens: p.tokenizer.Tokenize(text)}
}

// ProcessOption 单次处理的选项
type ProcessOption func(*processOptions)

type processOptions struct {
	only map[string]bool
}

// OnlyPipes 只运行指定名称的组件，其余组件跳过
func OnlyPipes(names ...string) ProcessOption {
	return func(o *processOptions) {
		if o.only == nil {
			o.only = make(map[string]bool, len(names))
		}
		for _, name := range names {
			o.only[name] = true
		}
	}
}

// Process 分词后依次运行组件，默认运行全部
func (p *Pipeline) Process(ctx context.Context, text string, opts ...ProcessOption) (*Doc, error) {
	o := &processOptions{}
	for _, opt := range opts {
		opt(o)
	}

	p.mu.RLock()
	pipes := make([]Component, 0, len(p.pipes))
	for _, c := range p.pipes {
		if o.only == nil || o.only[c.Name()] {
			pipes = append(pipes, c)
		}
	}
	p.mu.RUnlock()

	doc := p.MakeDoc(text)
	for _, c := range pipes {
		if err := c.Process(ctx, doc); err != nil {
			return nil, fmt.Errorf("组件 %s 处理失败: %w", c.Name(), err)
		}
	}
	return doc, nil
}
