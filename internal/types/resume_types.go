package types

// MatchRequest 匹配请求
type MatchRequest struct {
	// ResumeText 简历文本，绑定为 interface{} 以便区分非字符串输入
	ResumeText interface{} `json:"resume_text"`
	// TopK 返回的类别数，0 表示使用默认值
	TopK int `json:"top_k,omitempty"`
}

// MatchResult 匹配结果：按置信度排序的类别 + 技能到句子的映射
type MatchResult struct {
	Categories []string          `json:"categories"`
	Skills     map[string]string `json:"skills"`
}

// CleanRequest 脱敏请求
type CleanRequest struct {
	ResumeText interface{} `json:"resume_text"`
}

// CleanResponse 脱敏结果
type CleanResponse struct {
	CleanedText string `json:"cleaned_text"`
}

// CategoriesResponse 模型支持的全部类别
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Count      int      `json:"count"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
