package processor

import (
	"context"
	"io"

	"resume-insight-go/internal/nlp"

	"github.com/cloudwego/eino/components/embedding"
)

//
// 语言引擎
//

// LanguageEngine 分词、句子切分与实体识别能力。实现必须可并发调用。
type LanguageEngine interface {
	// Process 分词并运行组件，opts 可限定只运行部分组件
	Process(ctx context.Context, text string, opts ...nlp.ProcessOption) (*nlp.Doc, error)

	// MakeDoc 只分词，用于编译短语模式
	MakeDoc(text string) *nlp.Doc

	// NERLabels 返回NER组件声明的标签集合
	NERLabels() ([]string, error)

	// HasPipe 是否已注册指定组件
	HasPipe(name string) bool

	// EnsurePipe 组件不存在时注册，已存在时无操作
	EnsurePipe(c nlp.Component, first bool) bool
}

//
// 向量嵌入与排序模型
//

// TextEmbedder 文本向量化接口 (符合 cloudwego/eino 规范)
type TextEmbedder = embedding.Embedder

// DimensionsProvider 声明输出向量维度的嵌入器
type DimensionsProvider interface {
	GetDimensions() int
}

// RankingModel 线性多分类模型，每个类别输出一个间隔分数
type RankingModel interface {
	// Classes 模型的类别顺序
	Classes() []string

	// DecisionFunction 返回与 Classes() 对齐的间隔分数
	DecisionFunction(x []float64) ([]float64, error)
}

// FeatureCounter 声明输入特征维度的模型
type FeatureCounter interface {
	NumFeatures() int
}

//
// PDF解析
//

// PDFExtractor PDF提取器接口
type PDFExtractor interface {
	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)
}

//
// 缓存
//

// CategoryCache 分类结果缓存
type CategoryCache interface {
	// GetCategories 命中时返回 true
	GetCategories(ctx context.Context, cleanedText string, topK int) ([]string, bool, error)

	// SetCategories 写入分类结果
	SetCategories(ctx context.Context, cleanedText string, topK int, categories []string) error
}
