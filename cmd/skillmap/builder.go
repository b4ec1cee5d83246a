package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// skillMapBuilder 汇总多个来源的技能短语 -> 首选标签。
// 分类体系CSV中的条目直接覆盖，其余来源只在键不存在时写入。
type skillMapBuilder struct {
	entries map[string]string
}

func newSkillMapBuilder() *skillMapBuilder {
	return &skillMapBuilder{entries: make(map[string]string)}
}

// normalize 小写并去掉首尾空白
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// setDefault 键不存在时写入
func (b *skillMapBuilder) setDefault(key, value string) bool {
	if key == "" {
		return false
	}
	if _, ok := b.entries[key]; ok {
		return false
	}
	b.entries[key] = value
	return true
}

// columnIndex 在表头中查找列，找不到返回错误
func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("缺少列 %q", name)
}

// AddTaxonomyCSV 读取分类体系CSV (preferredLabel, altLabels 以换行分隔)
func (b *skillMapBuilder) AddTaxonomyCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("读取CSV表头失败: %w", err)
	}
	prefIdx, err := columnIndex(header, "preferredLabel")
	if err != nil {
		return 0, err
	}
	altIdx, err := columnIndex(header, "altLabels")
	if err != nil {
		return 0, err
	}

	added := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return added, fmt.Errorf("读取CSV记录失败: %w", err)
		}
		if prefIdx >= len(record) {
			continue
		}
		preferred := normalize(record[prefIdx])
		if preferred == "" {
			continue
		}
		b.entries[preferred] = preferred
		added++

		if altIdx >= len(record) {
			continue
		}
		for _, alt := range strings.Split(record[altIdx], "\n") {
			if key := normalize(alt); key != "" {
				b.entries[key] = preferred
				added++
			}
		}
	}
	return added, nil
}

// AddColumnTSV 读取TSV中的单列术语，每个术语映射到自身
func (b *skillMapBuilder) AddColumnTSV(r io.Reader, column string) (int, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("读取TSV表头失败: %w", err)
	}
	idx, err := columnIndex(header, column)
	if err != nil {
		return 0, err
	}

	added := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return added, fmt.Errorf("读取TSV记录失败: %w", err)
		}
		if idx >= len(record) {
			continue
		}
		term := normalize(record[idx])
		if b.setDefault(term, term) {
			added++
		}
	}
	return added, nil
}

// Len 当前短语数
func (b *skillMapBuilder) Len() int {
	return len(b.entries)
}

// WriteJSON 输出 skill_map.json
func (b *skillMapBuilder) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(b.entries)
}

// addFile 打开文件并交给对应的读取函数，path 为空时跳过
func addFile(path string, add func(io.Reader) (int, error)) (int, error) {
	if path == "" {
		return 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n, err := add(f)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}
