package nlp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentenceTexts(doc *Doc) []string {
	out := make([]string, 0, len(doc.Sents))
	for _, s := range doc.Sents {
		out = append(out, doc.SpanText(s.Start, s.End))
	}
	return out
}

func TestSentencizer_Process(t *testing.T) {
	p, err := NewPipeline(nil, NewSentencizer())
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "两个句子",
			text: "I know Python. I also know SQL.",
			want: []string{"I know Python.", "I also know SQL."},
		},
		{
			name: "无句末标点",
			text: "Python and Go",
			want: []string{"Python and Go"},
		},
		{
			name: "右括号归属上一句",
			text: "Built APIs (mostly REST.) Then moved on!",
			want: []string{"Built APIs (mostly REST.)", "Then moved on!"},
		},
		{
			name: "连续标点",
			text: "Really?! Yes.",
			want: []string{"Really?!", "Yes."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := p.Process(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sentenceTexts(doc))
		})
	}
}

func TestSentencizer_EmptyDoc(t *testing.T) {
	doc := &Doc{}
	require.NoError(t, NewSentencizer().Process(context.Background(), doc))
	assert.Empty(t, doc.Sents)
	assert.True(t, doc.HasSents())
}

func TestDoc_SentenceOf(t *testing.T) {
	p, err := NewPipeline(nil, NewSentencizer())
	require.NoError(t, err)
	doc, err := p.Process(context.Background(), "A b. C d.")
	require.NoError(t, err)

	s, ok := doc.SentenceOf(3)
	require.True(t, ok)
	assert.Equal(t, "C d.", doc.SpanText(s.Start, s.End))

	_, ok = doc.SentenceOf(99)
	assert.False(t, ok)
}
