package tracing

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxLength span 属性与错误信息的默认长度上限
	DefaultMaxLength = 200

	// MaxRedisLength 缓存键属性的长度上限
	MaxRedisLength = 100
)

const ellipsis = "..."

// TruncateString 按 rune 截断，超长时保留首尾、中间以 ... 连接；不会切断多字节字符
func TruncateString(s string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	n := utf8.RuneCountInString(s)
	if n <= maxLength {
		return s
	}

	runes := []rune(s)
	if maxLength <= len(ellipsis) {
		return string(runes[:maxLength])
	}
	keep := (maxLength - len(ellipsis)) / 2
	if keep < 1 {
		keep = 1
	}
	return string(runes[:keep]) + ellipsis + string(runes[n-keep:])
}

// MaskSecret 掩码凭证类的值：短值只留首字符，长值保留首尾各两个字符
//
//	"k1"           -> "k*"
//	"Bearer token" -> "Be********en"
func MaskSecret(value string) string {
	runes := []rune(value)
	switch n := len(runes); {
	case n == 0:
		return ""
	case n == 1:
		return "*"
	case n <= 4:
		return string(runes[0]) + strings.Repeat("*", n-1)
	default:
		return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
	}
}

// SafeRedisKey 缓存键写入 span 前的截断
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}
