package processor

import (
	"errors"
	"fmt"
)

// 输入错误：调用方参数不合法，立即返回，不重试
var (
	ErrInvalidInput   = errors.New("简历文本必须是字符串")
	ErrEmptyInput     = errors.New("简历文本不能为空")
	ErrTopKOutOfRange = errors.New("top_k 超出范围")
)

// 配置错误：只在组件构造时出现，组件不可用
var (
	ErrConfiguration         = errors.New("配置错误")
	ErrModelNotFound         = errors.New("模型文件不存在")
	ErrUnknownEntityLabel    = errors.New("未知的实体标签")
	ErrUnknownEmbeddingModel = errors.New("未知的向量模型")
	ErrSkillMapNotFound      = errors.New("技能词典文件不存在")
)

// ResumeProcessError 包含详细错误信息的自定义错误
type ResumeProcessError struct {
	Op      string
	BaseErr error
	Detail  string
}

func (e *ResumeProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s): %s", e.BaseErr, e.Op, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s)", e.BaseErr, e.Op)
}

func (e *ResumeProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// ConfigError 构造期配置错误，Kind 为具体的配置错误类别
type ConfigError struct {
	Kind   error
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Kind, e.Detail)
}

func (e *ConfigError) Unwrap() error {
	return e.Kind
}

// Is ConfigError 同时匹配 ErrConfiguration 与具体类别
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration || errors.Is(e.Kind, target)
}

// 错误构造函数
func NewInvalidInputError(op string, got interface{}) error {
	return &ResumeProcessError{
		Op:      op,
		BaseErr: ErrInvalidInput,
		Detail:  fmt.Sprintf("收到 %T", got),
	}
}

func NewEmptyInputError(op string) error {
	return &ResumeProcessError{
		Op:      op,
		BaseErr: ErrEmptyInput,
	}
}

func NewTopKError(topK, max int) error {
	return &ResumeProcessError{
		Op:      "classify",
		BaseErr: ErrTopKOutOfRange,
		Detail:  fmt.Sprintf("top_k=%d，取值范围为 1 到 %d", topK, max),
	}
}

func NewConfigError(kind error, format string, args ...interface{}) error {
	return &ConfigError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// IsInputError 是否为调用方输入错误
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrTopKOutOfRange)
}

// IsConfigurationError 是否为构造期配置错误
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrModelNotFound) ||
		errors.Is(err, ErrUnknownEntityLabel) ||
		errors.Is(err, ErrUnknownEmbeddingModel) ||
		errors.Is(err, ErrSkillMapNotFound)
}
