package nlp

import "context"

// defaultPunctChars 句末标点
var defaultPunctChars = map[string]bool{
	".": true, "!": true, "?": true,
	"。": true, "！": true, "？": true, "…": true,
}

// Sentencizer 基于句末标点的句子切分组件。
// 句末标点之后第一个非标点词元开始新句子，因此右括号、引号仍归属上一句。
type Sentencizer struct {
	punctChars map[string]bool
}

// NewSentencizer 创建默认句子切分组件
func NewSentencizer() *Sentencizer {
	return &Sentencizer{punctChars: defaultPunctChars}
}

// Name 实现 Component 接口
func (s *Sentencizer) Name() string { return PipeSentencizer }

// Process 实现 Component 接口
func (s *Sentencizer) Process(_ context.Context, doc *Doc) error {
	doc.Sents = doc.Sents[:0]
	if len(doc.Tokens) == 0 {
		return nil
	}

	start := 0
	seenPeriod := false
	for i, tok := range doc.Tokens {
		isEnd := s.punctChars[tok.Text]
		if seenPeriod && !isEnd && !isPunctToken(tok.Text) {
			doc.Sents = append(doc.Sents, Span{Start: start, End: i})
			start = i
			seenPeriod = false
		} else if isEnd {
			seenPeriod = true
		}
	}
	doc.Sents = append(doc.Sents, Span{Start: start, End: len(doc.Tokens)})
	return nil
}
