package nlp

// Attr 短语匹配比较的词元属性
type Attr int

const (
	// AttrORTH 原文精确匹配
	AttrORTH Attr = iota
	// AttrLOWER 小写后匹配
	AttrLOWER
)

// Match 一次短语命中，Start/End 为词元下标 [Start, End)
type Match struct {
	Key   string
	Start int
	End   int
}

type trieNode struct {
	children map[string]*trieNode
	keys     []string
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// PhraseMatcher 多词元短语精确匹配器，模式用与文档相同的分词器生成。
// 构建完成后只读，可并发调用 Match。
type PhraseMatcher struct {
	attr     Attr
	root     *trieNode
	patterns int
}

// NewPhraseMatcher 创建短语匹配器
func NewPhraseMatcher(attr Attr) *PhraseMatcher {
	return &PhraseMatcher{attr: attr, root: newTrieNode()}
}

func (m *PhraseMatcher) value(t Token) string {
	if m.attr == AttrLOWER {
		return t.Lower()
	}
	return t.Text
}

// Add 以 key 注册一组模式，空模式被忽略
func (m *PhraseMatcher) Add(key string, patterns ...*Doc) {
	for _, pattern := range patterns {
		if pattern == nil || len(pattern.Tokens) == 0 {
			continue
		}
		node := m.root
		for _, tok := range pattern.Tokens {
			v := m.value(tok)
			next, ok := node.children[v]
			if !ok {
				next = newTrieNode()
				node.children[v] = next
			}
			node = next
		}
		if len(node.keys) == 0 {
			m.patterns++
		}
		if !containsString(node.keys, key) {
			node.keys = append(node.keys, key)
		}
	}
}

// Len 已注册的不同模式数量
func (m *PhraseMatcher) Len() int {
	return m.patterns
}

// Match 返回所有命中(包括相互重叠的)，按起始位置、再按结束位置升序
func (m *PhraseMatcher) Match(doc *Doc) []Match {
	var matches []Match
	for i := range doc.Tokens {
		node := m.root
		for j := i; j < len(doc.Tokens); j++ {
			next, ok := node.children[m.value(doc.Tokens[j])]
			if !ok {
				break
			}
			node = next
			for _, key := range node.keys {
				matches = append(matches, Match{Key: key, Start: i, End: j + 1})
			}
		}
	}
	return matches
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
