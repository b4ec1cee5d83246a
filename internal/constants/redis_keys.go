package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"

	// EntityCategories 分类结果实体
	EntityCategories = "categories"

	// KeyResumeCategories 分类结果缓存 (STRING, JSON数组)
	// 格式: app:resume:categories:{textUUID}:{topK}
	KeyResumeCategories = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityCategories + ":%s:%d"
)
