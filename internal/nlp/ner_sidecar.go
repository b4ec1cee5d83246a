package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// SidecarRecognizer 调用外部NER服务 (例如基于spaCy的sidecar) 的NER组件。
//
// 协议:
//
//	GET  {base}/labels -> {"labels": ["PERSON", "GPE", ...]}
//	POST {base}/ner    {"text": "..."} -> {"ents": [{"start": 0, "end": 10, "label": "PERSON"}]}
//
// sidecar 返回的是字符偏移，这里统一换算为字节偏移。调用失败时直接返回错误，不降级。
type SidecarRecognizer struct {
	baseURL string
	http    *http.Client
	labels  []string
}

type nerRequest struct {
	Text string `json:"text"`
}

type nerResponse struct {
	Ents []nerEntity `json:"ents"`
}

type nerEntity struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

type labelsResponse struct {
	Labels []string `json:"labels"`
}

// NewSidecarRecognizer 创建客户端并拉取sidecar声明的标签集合
func NewSidecarRecognizer(ctx context.Context, baseURL string, timeout time.Duration) (*SidecarRecognizer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("NER sidecar 地址不能为空")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	r := &SidecarRecognizer{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/labels", nil)
	if err != nil {
		return nil, fmt.Errorf("ner: 创建请求失败: %w", err)
	}
	var lr labelsResponse
	if err := r.do(req, &lr); err != nil {
		return nil, fmt.Errorf("ner: 获取标签集合失败: %w", err)
	}
	if len(lr.Labels) == 0 {
		return nil, fmt.Errorf("ner: sidecar 未声明任何标签")
	}
	r.labels = lr.Labels
	return r, nil
}

// Name 实现 Component 接口
func (r *SidecarRecognizer) Name() string { return PipeNER }

// Labels 实现 LabelProvider 接口
func (r *SidecarRecognizer) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Process 实现 Component 接口
func (r *SidecarRecognizer) Process(ctx context.Context, doc *Doc) error {
	if strings.TrimSpace(doc.Text) == "" {
		doc.Ents = nil
		return nil
	}

	body, err := json.Marshal(nerRequest{Text: doc.Text})
	if err != nil {
		return fmt.Errorf("ner: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/ner", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ner: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result nerResponse
	if err := r.do(req, &result); err != nil {
		return err
	}

	offsets := runeByteOffsets(doc.Text)
	ents := make([]Entity, 0, len(result.Ents))
	for _, e := range result.Ents {
		if e.Start < 0 || e.End >= len(offsets) || e.Start >= e.End {
			return fmt.Errorf("ner: 实体偏移越界 [%d,%d)", e.Start, e.End)
		}
		ents = append(ents, Entity{
			Label:     e.Label,
			StartChar: offsets[e.Start],
			EndChar:   offsets[e.End],
		})
	}
	doc.Ents = ents
	return nil
}

func (r *SidecarRecognizer) do(req *http.Request, out interface{}) error {
	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("ner: sidecar 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ner: sidecar 返回状态码 %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ner: decode: %w", err)
	}
	return nil
}

// runeByteOffsets 第 i 个字符的字节偏移，末尾额外追加 len(s)
func runeByteOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
