package constants

import "time"

const (
	// ServiceName 服务名称，用于tracing与日志
	ServiceName = "resume-insight-go"

	// DefaultCategoryCacheTTL 分类结果缓存默认时长
	DefaultCategoryCacheTTL = time.Hour

	// 技能词典与模型在对象存储中的默认对象名
	DefaultModelObject    = "models/resume_classifier.json"
	DefaultSkillMapObject = "data/skill_map.json"
)
