package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"resume-insight-go/internal/config"
	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/processor"
	"resume-insight-go/internal/tracing"

	"github.com/cloudwego/eino/components/embedding"
)

// maxErrorBodyLength 错误信息中保留的响应体长度 (rune)
const maxErrorBodyLength = 256

// EmbeddingModelSpec 已知向量模型的维度信息
type EmbeddingModelSpec struct {
	Dimensions int
	// Configurable 是否支持在请求中指定输出维度
	Configurable bool
}

// knownEmbeddingModels 支持的模型标识
var knownEmbeddingModels = map[string]EmbeddingModelSpec{
	"all-MiniLM-L6-v2":                       {Dimensions: 384},
	"sentence-transformers/all-MiniLM-L6-v2": {Dimensions: 384},
	"all-mpnet-base-v2":                      {Dimensions: 768},
	"text-embedding-v3":                      {Dimensions: 1024, Configurable: true},
	"text-embedding-3-small":                 {Dimensions: 1536, Configurable: true},
	"text-embedding-3-large":                 {Dimensions: 3072, Configurable: true},
	"text-embedding-ada-002":                 {Dimensions: 1536},
}

// LookupEmbeddingModel 查找模型规格，extra 为配置中额外声明的模型
func LookupEmbeddingModel(model string, extra map[string]int) (EmbeddingModelSpec, bool) {
	if dims, ok := extra[model]; ok && dims > 0 {
		return EmbeddingModelSpec{Dimensions: dims}, true
	}
	spec, ok := knownEmbeddingModels[model]
	return spec, ok
}

// KnownEmbeddingModels 返回内置的模型标识，按字母排序
func KnownEmbeddingModels() []string {
	names := make([]string, 0, len(knownEmbeddingModels))
	for name := range knownEmbeddingModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAIEmbedder 实现 embedding.Embedder 接口，调用 OpenAI 兼容的 /embeddings 接口
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	sendDims   bool
	httpClient *http.Client
	baseURL    string
}

// NewOpenAIEmbedder 创建Embedder。未知的模型标识返回 ErrUnknownEmbeddingModel。
func NewOpenAIEmbedder(cfg config.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if cfg.Model == "" {
		return nil, processor.NewConfigError(processor.ErrUnknownEmbeddingModel, "模型标识不能为空")
	}
	spec, ok := LookupEmbeddingModel(cfg.Model, cfg.ExtraModels)
	if !ok {
		return nil, processor.NewConfigError(processor.ErrUnknownEmbeddingModel, "%q 不在支持列表中 %v",
			cfg.Model, KnownEmbeddingModels())
	}

	dimensions := spec.Dimensions
	sendDims := false
	if cfg.Dimensions > 0 && cfg.Dimensions != spec.Dimensions {
		if !spec.Configurable {
			return nil, processor.NewConfigError(processor.ErrConfiguration, "模型 %s 的输出维度固定为 %d，配置为 %d",
				cfg.Model, spec.Dimensions, cfg.Dimensions)
		}
		dimensions = cfg.Dimensions
		sendDims = true
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8081/v1/embeddings"
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIEmbedder{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: dimensions,
		sendDims:   sendDims,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}, nil
}

// GetDimensions 返回输出向量维度 (This is a helper, not part of eino.Embedder)
func (a *OpenAIEmbedder) GetDimensions() int {
	return a.dimensions
}

// Model 返回模型标识
func (a *OpenAIEmbedder) Model() string {
	return a.model
}

// OpenAIEmbeddingRequest OpenAI兼容请求结构
type OpenAIEmbeddingRequest struct {
	Input          interface{} `json:"input"` // string or []string
	Model          string      `json:"model"`
	Dimensions     int         `json:"dimensions,omitempty"`
	EncodingFormat string      `json:"encoding_format,omitempty"`
}

// OpenAIEmbeddingResponse OpenAI兼容响应结构
type OpenAIEmbeddingResponse struct {
	Object string            `json:"object"`
	Data   []OpenAIDataEntry `json:"data"`
	Model  string            `json:"model"`
	Usage  OpenAIUsage       `json:"usage"`
	ID     string            `json:"id,omitempty"`
	Error  *OpenAIError      `json:"error,omitempty"`
}

// OpenAIDataEntry part of the response
type OpenAIDataEntry struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// OpenAIUsage part of the response
type OpenAIUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// OpenAIError for API-level errors returned with 200 OK
type OpenAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    string `json:"code"`
}

// EmbedStrings 将文本转换为向量, 实现 cloudwego/eino embedding.Embedder 接口。
// 日志只记录条数与维度，不记录文本内容。
func (a *OpenAIEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := &embedding.Options{}
	options = embedding.GetCommonOptions(options, opts...)

	effectiveModel := a.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	var inputBody interface{}
	if len(texts) == 1 {
		inputBody = texts[0]
	} else {
		inputBody = texts
	}

	reqBody := OpenAIEmbeddingRequest{
		Input:          inputBody,
		Model:          effectiveModel,
		EncodingFormat: "float",
	}
	if a.sendDims {
		reqBody.Dimensions = a.dimensions
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var wrapped struct {
			Error *OpenAIError `json:"error"`
		}
		if json.Unmarshal(body, &wrapped) == nil && wrapped.Error != nil && wrapped.Error.Message != "" {
			return nil, fmt.Errorf("API调用失败, 状态码: %d, 类型: %s, 错误: %s, Code: %s",
				resp.StatusCode, wrapped.Error.Type, wrapped.Error.Message, wrapped.Error.Code)
		}
		return nil, fmt.Errorf("API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, tracing.TruncateString(strings.TrimSpace(string(body)), maxErrorBodyLength))
	}

	var parsedResp OpenAIEmbeddingResponse
	if err := json.Unmarshal(body, &parsedResp); err != nil {
		return nil, fmt.Errorf("解析响应JSON失败: %w", err)
	}

	// 检查响应中是否包含API级别的错误
	if parsedResp.Error != nil && parsedResp.Error.Message != "" {
		return nil, fmt.Errorf("API返回错误: 类型=%s, 消息='%s', Code=%s",
			parsedResp.Error.Type, parsedResp.Error.Message, parsedResp.Error.Code)
	}
	if len(parsedResp.Data) != len(texts) {
		return nil, fmt.Errorf("API返回 %d 个向量，请求了 %d 条文本", len(parsedResp.Data), len(texts))
	}

	// 按 index 还原顺序
	outputEmbeddings := make([][]float64, len(texts))
	for _, entry := range parsedResp.Data {
		if entry.Index < 0 || entry.Index >= len(texts) || outputEmbeddings[entry.Index] != nil {
			return nil, fmt.Errorf("API返回的向量下标无效: %d", entry.Index)
		}
		if len(entry.Embedding) != a.dimensions {
			return nil, fmt.Errorf("向量维度 %d 与模型 %s 的维度 %d 不一致", len(entry.Embedding), effectiveModel, a.dimensions)
		}
		outputEmbeddings[entry.Index] = entry.Embedding
	}

	logger.Ctx(ctx).Debug().
		Str("model", effectiveModel).
		Int("texts", len(texts)).
		Int("dimensions", a.dimensions).
		Int("prompt_tokens", parsedResp.Usage.PromptTokens).
		Dur("elapsed", time.Since(start)).
		Msg("向量化完成")

	return outputEmbeddings, nil
}
