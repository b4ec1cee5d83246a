package processor

import (
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// RedactionRule 一条带标签的脱敏规则，命中内容替换为 "[Label]"
type RedactionRule struct {
	Label   string
	Pattern *regexp2.Regexp
}

// Token 替换后的占位符
func (r RedactionRule) Token() string {
	return "[" + r.Label + "]"
}

// Apply 替换全部命中。regexp2 只会在设置了 MatchTimeout 时返回错误。
func (r RedactionRule) Apply(text string) (string, error) {
	return r.Pattern.Replace(text, r.Token(), -1, -1)
}

// 规则顺序有意义：ADDRESS 必须先于 PHONE/ZIP，门牌号才不会被误标为邮编
var defaultRedactionRules = []RedactionRule{
	{
		Label: "ADDRESS",
		Pattern: regexp2.MustCompile(`\b\d{1,3}(?!\d)\s+[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,3}`+
			`(?:\s+(?:St|Street|Ave|Avenue|Rd|Road|Blvd|Boulevard`+
			`|Dr|Drive|Ln|Lane|Way|Ct|Court|Pl|Place|Pkwy|Parkway`+
			`|Hwy|Highway|Cir|Circle|Terrace|Ter)\.?)?`+
			`(?:[,\s]+(?:Apt|Apartment|Suite|Ste|Unit|Fl|Floor|#)`+
			`\s*[\w-]+)?`, regexp2.IgnoreCase),
	},
	{
		Label: "PHONE",
		Pattern: regexp2.MustCompile(`(?:`+
			`(?:\+|00)\d{1,3}[\s\-.]?(?:\(?\d{1,4}\)?[\s\-.]?)?\d{1,4}[\s\-.]?\d{1,4}[\s\-.]?\d{1,9}`+
			`|\(?\d{3}\)?[\s\-.]?\d{3}[\s\-.]?\d{4}`+
			`|\d{5}[\s\-.]?\d{3}[\s\-.]?\d{2,3}`+
			`|/(?:\+{0,1}\d+)(?:\s+|-)\({0,1}\d{1,3}\({0,1}(?:(?:\s*|-|\()\d{2,5}(?:\){0,1})\s*?){1,3}/`+
			`)`, regexp2.IgnoreCase),
	},
	{
		Label:   "ZIP",
		Pattern: regexp2.MustCompile(`\b\d{5}(?:-\d{4})?\b|\b\d{6}\b`, regexp2.None),
	},
	{
		Label:   "POBOX",
		Pattern: regexp2.MustCompile(`\bP\.?\s*O\.?\s*Box\s+\d+\b`, regexp2.IgnoreCase),
	},
	{
		Label:   "EMAIL",
		Pattern: regexp2.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`, regexp2.None),
	},
}

// DefaultRedactionRules 返回默认规则集的副本，顺序为 ADDRESS, PHONE, ZIP, POBOX, EMAIL
func DefaultRedactionRules() []RedactionRule {
	rules := make([]RedactionRule, len(defaultRedactionRules))
	copy(rules, defaultRedactionRules)
	return rules
}

var (
	// 允许保留的字符之外的全部删除
	disallowedChars = regexp2.MustCompile(`[^a-zA-Z0-9\s.,\-/()@+]`, regexp2.None)
	whitespaceRun   = regexp2.MustCompile(`\s+`, regexp2.None)
)

// normalizeText 删除噪声字符并合并空白。
// Unicode 空白先统一折叠为 ASCII 空格，包括 \s 不覆盖的 0x1C-0x1F。
func normalizeText(text string) (string, error) {
	text = strings.Map(foldSpace, text)
	text, err := disallowedChars.Replace(text, "", -1, -1)
	if err != nil {
		return "", err
	}
	text, err = whitespaceRun.Replace(text, " ", -1, -1)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// foldSpace Unicode 空白以及 0x1C-0x1F 分隔符映射为 ASCII 空格
func foldSpace(r rune) rune {
	if unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f) {
		return ' '
	}
	return r
}
