package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"resume-insight-go/internal/processor"
)

// LoadSkillMap 读取技能词典 {短语: 首选标签}。文件不存在返回 ErrSkillMapNotFound，
// JSON 不合法时返回解析错误。
func LoadSkillMap(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, processor.NewConfigError(processor.ErrSkillMapNotFound, "%s", path)
		}
		return nil, fmt.Errorf("打开技能词典失败: %w", err)
	}
	defer f.Close()
	return LoadSkillMapFrom(f)
}

// LoadSkillMapFrom 从 reader 解析技能词典
func LoadSkillMapFrom(r io.Reader) (map[string]string, error) {
	var skills map[string]string
	if err := json.NewDecoder(r).Decode(&skills); err != nil {
		return nil, fmt.Errorf("解析技能词典失败: %w", err)
	}
	if skills == nil {
		skills = map[string]string{}
	}
	return skills, nil
}
