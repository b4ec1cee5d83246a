package processor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"resume-insight-go/internal/nlp"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/require"
)

// newTestEngine 用词典NER构造语言引擎
func newTestEngine(t *testing.T, patterns map[string][]string, extraLabels ...string) *nlp.Pipeline {
	t.Helper()
	ruler := nlp.NewEntityRuler(nil, patterns, nlp.WithRulerLabels(extraLabels...))
	p, err := nlp.NewPipeline(nil, ruler)
	require.NoError(t, err)
	return p
}

// stubNER 固定返回错误或不返回实体的NER组件
type stubNER struct {
	labels []string
	err    error
}

func (s *stubNER) Name() string     { return nlp.PipeNER }
func (s *stubNER) Labels() []string { return s.labels }
func (s *stubNER) Process(context.Context, *nlp.Doc) error {
	return s.err
}

// recordingEngine 记录每次 Process 收到的文本
type recordingEngine struct {
	*nlp.Pipeline
	mu    sync.Mutex
	texts []string
}

func (r *recordingEngine) Process(ctx context.Context, text string, opts ...nlp.ProcessOption) (*nlp.Doc, error) {
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
	return r.Pipeline.Process(ctx, text, opts...)
}

// fakeEmbedder 返回固定向量并记录输入
type fakeEmbedder struct {
	vector     []float64
	dimensions int
	err        error
	inputs     []string
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.inputs = append(f.inputs, texts...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) GetDimensions() int { return f.dimensions }

// fakeModel 忽略输入，返回预设的分数
type fakeModel struct {
	classes  []string
	margins  []float64
	features int
	err      error
}

func (m *fakeModel) Classes() []string { return m.classes }

func (m *fakeModel) DecisionFunction(x []float64) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.features > 0 && len(x) != m.features {
		return nil, fmt.Errorf("特征数不匹配: %d != %d", len(x), m.features)
	}
	return m.margins, nil
}

func (m *fakeModel) NumFeatures() int { return m.features }

// memoryCache 内存版分类缓存
type memoryCache struct {
	data   map[string][]string
	gets   int
	sets   int
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]string)}
}

func (c *memoryCache) key(text string, topK int) string {
	return fmt.Sprintf("%s|%d", text, topK)
}

func (c *memoryCache) GetCategories(_ context.Context, cleaned string, topK int) ([]string, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[c.key(cleaned, topK)]
	return v, ok, nil
}

func (c *memoryCache) SetCategories(_ context.Context, cleaned string, topK int, categories []string) error {
	c.sets++
	c.data[c.key(cleaned, topK)] = categories
	return nil
}

// fakePDFExtractor 把读取到的字节当作文本返回
type fakePDFExtractor struct {
	err error
}

func (f *fakePDFExtractor) ExtractTextFromReader(_ context.Context, reader io.Reader, _ string, _ interface{}) (string, map[string]interface{}, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, err
	}
	return string(data), map[string]interface{}{}, nil
}

var testClasses = []string{"Data Science", "Web Development", "DevOps", "Human Resources"}

func newTestClassifier(t *testing.T, margins []float64) (*ResumeClassifier, *fakeEmbedder) {
	t.Helper()
	engine := newTestEngine(t, map[string][]string{"PERSON": {"Jane Doe"}}, "GPE", "LOC")
	redactor, err := NewRedactor(engine, []string{"PERSON", "GPE", "LOC"})
	require.NoError(t, err)

	emb := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}, dimensions: 3}
	model := &fakeModel{classes: testClasses, margins: margins, features: 3}
	c, err := NewResumeClassifier(redactor, emb, model)
	require.NoError(t, err)
	return c, emb
}
