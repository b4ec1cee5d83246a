package processor

import (
	"github.com/rs/zerolog"
)

// RedactorOpt 脱敏器选项
type RedactorOpt func(*Redactor)

// ClassifierOpt 分类器选项
type ClassifierOpt func(*ResumeClassifier)

// ServiceOpt 服务选项
type ServiceOpt func(*ResumeService)

// ----- 脱敏器选项 -----

// WithRedactionRules 替换默认规则集，顺序即执行顺序
func WithRedactionRules(rules []RedactionRule) RedactorOpt {
	return func(r *Redactor) {
		if len(rules) > 0 {
			r.rules = rules
		}
	}
}

// ----- 分类器选项 -----

// WithEmbeddingDimensions 声明嵌入向量维度，构造时与模型特征数校验
func WithEmbeddingDimensions(dimensions int) ClassifierOpt {
	return func(c *ResumeClassifier) {
		c.dimensions = dimensions
	}
}

// ----- 服务选项 -----

// WithCategoryCache 设置分类结果缓存，nil 表示不缓存
func WithCategoryCache(cache CategoryCache) ServiceOpt {
	return func(s *ResumeService) {
		s.cache = cache
	}
}

// WithDefaultTopK 设置请求未指定 top_k 时的默认值
func WithDefaultTopK(topK int) ServiceOpt {
	return func(s *ResumeService) {
		if topK > 0 {
			s.defaultTopK = topK
		}
	}
}

// WithPDFExtractor 设置PDF提取器，用于上传文件的匹配
func WithPDFExtractor(extractor PDFExtractor) ServiceOpt {
	return func(s *ResumeService) {
		s.pdfExtractor = extractor
	}
}

// WithServiceLogger 设置日志记录器
func WithServiceLogger(logger *zerolog.Logger) ServiceOpt {
	return func(s *ResumeService) {
		if logger != nil {
			s.logger = logger
		} else {
			nop := zerolog.Nop()
			s.logger = &nop
		}
	}
}
