package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer 将文本切分为词元
type Tokenizer interface {
	Tokenize(text string) []Token
}

// 前缀/后缀标点，会从空白分隔的片段两端剥离
const (
	prefixChars = `([{"'<«“‘`
	suffixChars = `)]}"'>»”’,;:!?.`
)

// RuleTokenizer 基于规则的英文分词器：
// 先按空白切分，再剥离前后缀标点，最后在字母数字之间的 '-' 与 '/' 处拆分。
type RuleTokenizer struct{}

// NewRuleTokenizer 创建分词器
func NewRuleTokenizer() *RuleTokenizer {
	return &RuleTokenizer{}
}

// Tokenize 实现 Tokenizer 接口
func (t *RuleTokenizer) Tokenize(text string) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		tokens = appendChunk(tokens, text, start, i)
	}
	return tokens
}

// appendChunk 处理一个不含空白的片段 text[start:end]
func appendChunk(tokens []Token, text string, start, end int) []Token {
	// 前缀
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !strings.ContainsRune(prefixChars, r) || start+size == end {
			break
		}
		tokens = append(tokens, Token{Text: text[start : start+size], Start: start, End: start + size})
		start += size
	}

	// 后缀，倒序收集后再追加
	var suffixes []Token
	for start < end {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !strings.ContainsRune(suffixChars, r) || end-size == start {
			break
		}
		if r == '.' && isDottedAbbreviation(text[start:end]) {
			break
		}
		suffixes = append(suffixes, Token{Text: text[end-size : end], Start: end - size, End: end})
		end -= size
	}

	tokens = appendInfixSplit(tokens, text, start, end)

	for k := len(suffixes) - 1; k >= 0; k-- {
		tokens = append(tokens, suffixes[k])
	}
	return tokens
}

// appendInfixSplit 在 "字母数字 [-/] 字母" 处拆分，例如 machine-learning、CI/CD
func appendInfixSplit(tokens []Token, text string, start, end int) []Token {
	if start >= end {
		return tokens
	}
	segStart := start
	prev := rune(-1)
	for pos := start; pos < end; {
		r, size := utf8.DecodeRuneInString(text[pos:end])
		if (r == '-' || r == '/') && pos > segStart && pos+size < end {
			next, _ := utf8.DecodeRuneInString(text[pos+size : end])
			if (unicode.IsLetter(prev) || unicode.IsDigit(prev)) && unicode.IsLetter(next) {
				tokens = append(tokens, Token{Text: text[segStart:pos], Start: segStart, End: pos})
				tokens = append(tokens, Token{Text: text[pos : pos+size], Start: pos, End: pos + size})
				segStart = pos + size
			}
		}
		prev = r
		pos += size
	}
	if segStart < end {
		tokens = append(tokens, Token{Text: text[segStart:end], Start: segStart, End: end})
	}
	return tokens
}

// isDottedAbbreviation 判断形如 "U.S." "P.O." 的缩写，末尾的点不剥离
func isDottedAbbreviation(s string) bool {
	if len(s) < 4 || len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i += 2 {
		if !isASCIILetter(s[i]) || s[i+1] != '.' {
			return false
		}
	}
	return true
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isPunctToken 词元是否全部由标点组成
func isPunctToken(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}
