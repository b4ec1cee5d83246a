// skillmap 从技能分类体系与职业术语表构建 skill_map.json
package main

import (
	"bufio"
	"io"
	"os"

	"resume-insight-go/internal/config"
	"resume-insight-go/internal/logger"

	"github.com/spf13/pflag"
)

func main() {
	var (
		taxonomyCSV  string
		skillsTSV    string
		knowledgeTSV string
		techTSV      string
		output       string
	)
	pflag.StringVar(&taxonomyCSV, "taxonomy", "data/skills_en.csv", "技能分类体系CSV (preferredLabel, altLabels)")
	pflag.StringVar(&skillsTSV, "skills", "", "职业技能TSV (Element Name 列)")
	pflag.StringVar(&knowledgeTSV, "knowledge", "", "职业知识TSV (Element Name 列)")
	pflag.StringVar(&techTSV, "tech", "", "职业技术TSV (Example 列)")
	pflag.StringVarP(&output, "output", "o", "data/skill_map.json", "输出路径，- 表示标准输出")
	pflag.Parse()

	if _, err := logger.Init(config.LoggerConfig{Level: "info", Format: "pretty"}); err != nil {
		logger.Fatal().Err(err).Msg("初始化日志失败")
	}

	b := newSkillMapBuilder()
	sources := []struct {
		name string
		path string
		add  func(io.Reader) (int, error)
	}{
		{"taxonomy", taxonomyCSV, b.AddTaxonomyCSV},
		{"skills", skillsTSV, func(r io.Reader) (int, error) { return b.AddColumnTSV(r, "Element Name") }},
		{"knowledge", knowledgeTSV, func(r io.Reader) (int, error) { return b.AddColumnTSV(r, "Element Name") }},
		{"tech", techTSV, func(r io.Reader) (int, error) { return b.AddColumnTSV(r, "Example") }},
	}
	for _, src := range sources {
		n, err := addFile(src.path, src.add)
		if err != nil {
			logger.Fatal().Err(err).Str("source", src.name).Msg("读取来源失败")
		}
		if src.path != "" {
			logger.Info().Str("source", src.name).Int("added", n).Msg("来源已合并")
		}
	}

	var w io.Writer = os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			logger.Fatal().Err(err).Str("output", output).Msg("创建输出文件失败")
		}
		defer f.Close()
		buf := bufio.NewWriter(f)
		defer buf.Flush()
		w = buf
	}
	if err := b.WriteJSON(w); err != nil {
		logger.Fatal().Err(err).Msg("写入技能词典失败")
	}
	logger.Info().Int("phrases", b.Len()).Str("output", output).Msg("技能词典构建完成")
}
