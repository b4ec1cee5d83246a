// Package nlp 提供简历文本处理所需的语言引擎能力：分词、句子切分、命名实体识别
// 以及基于词序列的短语匹配。组件以流水线(Pipeline)的方式组织，按名称注册。
package nlp

import "strings"

// Token 文本中的一个词元，偏移量均为 Doc.Text 中的字节偏移
type Token struct {
	Text  string
	Start int
	End   int
}

// Lower 返回词元的小写形式，用于 LOWER 属性匹配
func (t Token) Lower() string {
	return strings.ToLower(t.Text)
}

// Span 词元区间 [Start, End)
type Span struct {
	Start int
	End   int
}

// Entity 命名实体，StartChar/EndChar 为 Doc.Text 中的字节偏移
type Entity struct {
	Label     string
	StartChar int
	EndChar   int
}

// Doc 一次处理的结果
type Doc struct {
	Text   string
	Tokens []Token
	// Sents 句子区间，只有句子切分组件运行后才会填充
	Sents []Span
	Ents  []Entity
}

// SpanText 返回词元区间 [start, end) 覆盖的原文
func (d *Doc) SpanText(start, end int) string {
	if start < 0 || end > len(d.Tokens) || start >= end {
		return ""
	}
	return d.Text[d.Tokens[start].Start:d.Tokens[end-1].End]
}

// SentenceOf 返回包含第 i 个词元的句子区间
func (d *Doc) SentenceOf(i int) (Span, bool) {
	for _, s := range d.Sents {
		if i >= s.Start && i < s.End {
			return s, true
		}
	}
	return Span{}, false
}

// HasSents 报告句子边界是否已经设置
func (d *Doc) HasSents() bool {
	return len(d.Sents) > 0 || len(d.Tokens) == 0
}

// EntityText 返回实体覆盖的原文
func (d *Doc) EntityText(e Entity) string {
	if e.StartChar < 0 || e.EndChar > len(d.Text) || e.StartChar >= e.EndChar {
		return ""
	}
	return d.Text[e.StartChar:e.EndChar]
}
