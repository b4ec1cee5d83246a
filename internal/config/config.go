package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用程序配置
type Config struct {
	// 服务器配置
	Server ServerConfig `yaml:"server"`

	// 日志配置
	Logger LoggerConfig `yaml:"logger"`

	// 语言处理引擎配置 (NER / 句子切分)
	NLP NLPConfig `yaml:"nlp"`

	// 文本向量化配置
	Embedding EmbeddingConfig `yaml:"embedding"`

	// 岗位类别分类器配置
	Classifier ClassifierConfig `yaml:"classifier"`

	// 技能词典配置
	Skills SkillsConfig `yaml:"skills"`

	// 模型制品来源
	Artifacts ArtifactsConfig `yaml:"artifacts"`

	// MinIO配置 (artifacts.source=minio 时使用)
	MinIO MinIOConfig `yaml:"minio"`

	// Redis配置 (分类结果缓存)
	Redis RedisConfig `yaml:"redis"`

	// 链路追踪配置
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address string   `yaml:"address"`  // 例如 ":8080" or "0.0.0.0:8080"
	APIKeys []string `yaml:"api_keys"` // 为空时不启用鉴权
	// 单个请求体大小上限(MB)，主要约束PDF上传
	MaxRequestBodyMB int `yaml:"max_request_body_mb"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
	File         string `yaml:"file"`          // 可选，同时写入的日志文件
}

// NLPConfig 语言处理引擎配置
type NLPConfig struct {
	NER NERConfig `yaml:"ner"`
	// PIIEntities 需要脱敏的NER标签白名单，必须是NER组件声明过的标签
	PIIEntities []string `yaml:"pii_entities"`
}

// NERConfig 命名实体识别组件配置
type NERConfig struct {
	Backend        string `yaml:"backend"`         // sidecar, ruler, none
	SidecarURL     string `yaml:"sidecar_url"`     // 例如 http://localhost:8001
	TimeoutSeconds int    `yaml:"timeout_seconds"` // sidecar 超时(秒)
	// RulerPatterns 词典识别器的模式文件 (YAML: 标签 -> 短语列表)
	RulerPatterns string `yaml:"ruler_patterns"`
	// RulerLabels 词典识别器声明的标签集合，为空时取模式文件中的标签
	RulerLabels []string `yaml:"ruler_labels"`
}

// EmbeddingConfig OpenAI兼容的Embedding配置
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key,omitempty"`
	// QPM 每分钟请求数限制，0表示不限流
	QPM            int `yaml:"qpm"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// ExtraModels 额外允许的模型标识 -> 维度
	ExtraModels map[string]int `yaml:"extra_models"`
}

// ClassifierConfig 分类器配置
type ClassifierConfig struct {
	ModelPath   string `yaml:"model_path"`    // 线性模型JSON制品路径 (本地路径或MinIO对象名)
	DefaultTopK int    `yaml:"default_top_k"` // 请求未指定 top_k 时使用
}

// SkillsConfig 技能词典配置
type SkillsConfig struct {
	SkillMapPath string `yaml:"skill_map_path"` // skill_map.json 路径 (本地路径或MinIO对象名)
}

// ArtifactsConfig 制品来源配置
type ArtifactsConfig struct {
	Source string `yaml:"source"` // local, minio
}

// MinIOConfig MinIO配置结构
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	BucketName      string `yaml:"bucketName"` // 存放模型制品的存储桶
	Location        string `yaml:"location"`   // 可选，存储桶区域
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`  // 连接超时(秒)
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`  // 读取超时(秒)
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"` // 写入超时(秒)
	// 分类结果缓存过期时间(分钟)
	CacheTTLMinutes int `yaml:"cache_ttl_minutes"`
}

// TracingConfig OpenTelemetry 配置
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC 地址，例如 localhost:4317
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoadConfig 从文件加载配置，并允许环境变量覆盖敏感字段
func LoadConfig(configPath string) (*Config, error) {
	// 如果未指定配置文件路径，则尝试在默认位置查找
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config/config.yaml",
			"../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".resume-insight", "config.yaml"),
		}

		// 添加可执行文件所在目录
		if execPath, err := os.Executable(); err == nil {
			searchPaths = append(searchPaths, filepath.Join(filepath.Dir(execPath), "config.yaml"))
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}

		// 找不到配置文件时使用默认配置
		if configPath == "" {
			cfg := createDefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
	}

	cfg, err := LoadConfigFromFileOnly(configPath)
	if err != nil {
		return nil, err
	}

	// 从环境变量覆盖配置（如果存在）
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadConfigFromFileOnly 从文件加载配置，不尝试从环境变量覆盖
func LoadConfigFromFileOnly(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("必须提供配置文件路径")
	}

	// 检查文件是否存在
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	// 读取配置文件
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置文件
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

// applyEnvOverrides 环境变量覆盖密钥类配置
func applyEnvOverrides(config *Config) {
	// 工作目录下的 .env 只补充未设置的环境变量
	_ = godotenv.Load()

	if envKey := os.Getenv("EMBEDDING_API_KEY"); envKey != "" {
		config.Embedding.APIKey = envKey
	}
	if envURL := os.Getenv("EMBEDDING_BASE_URL"); envURL != "" {
		config.Embedding.BaseURL = envURL
	}
	if envKeys := os.Getenv("RESUME_API_KEYS"); envKeys != "" {
		var keys []string
		for _, k := range strings.Split(envKeys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		config.Server.APIKeys = keys
	}
	if envSecret := os.Getenv("MINIO_SECRET_ACCESS_KEY"); envSecret != "" {
		config.MinIO.SecretAccessKey = envSecret
	}
	if envPassword := os.Getenv("REDIS_PASSWORD"); envPassword != "" {
		config.Redis.Password = envPassword
	}
	if envSidecar := os.Getenv("NER_SIDECAR_URL"); envSidecar != "" {
		config.NLP.NER.SidecarURL = envSidecar
	}
}

// applyDefaults 为YAML中缺省的字段填充默认值
func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080" // 默认服务器地址
	}
	if config.Server.MaxRequestBodyMB <= 0 {
		config.Server.MaxRequestBodyMB = 10
	}

	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Logger.Format == "" {
		config.Logger.Format = "json"
	}

	if config.NLP.NER.Backend == "" {
		config.NLP.NER.Backend = "none"
	}
	if config.NLP.NER.TimeoutSeconds <= 0 {
		config.NLP.NER.TimeoutSeconds = 10
	}
	if config.NLP.PIIEntities == nil {
		// 没有NER组件时默认不做实体脱敏
		if config.NLP.NER.Backend == "none" {
			config.NLP.PIIEntities = []string{}
		} else {
			config.NLP.PIIEntities = []string{"PERSON", "GPE", "LOC"}
		}
	}

	// Ensure embedding defaults are set if not present in YAML
	if config.Embedding.Model == "" {
		config.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = "http://localhost:8081/v1/embeddings"
	}
	if config.Embedding.TimeoutSeconds <= 0 {
		config.Embedding.TimeoutSeconds = 30
	}

	if config.Classifier.ModelPath == "" {
		config.Classifier.ModelPath = "models/resume_classifier.json"
	}
	if config.Classifier.DefaultTopK <= 0 {
		config.Classifier.DefaultTopK = 2
	}
	if config.Skills.SkillMapPath == "" {
		config.Skills.SkillMapPath = "data/skill_map.json"
	}
	if config.Artifacts.Source == "" {
		config.Artifacts.Source = "local"
	}

	if config.Redis.CacheTTLMinutes <= 0 {
		config.Redis.CacheTTLMinutes = 60
	}
	if config.Redis.PoolSize <= 0 {
		config.Redis.PoolSize = 10
	}
	if config.Redis.DialTimeoutSeconds <= 0 {
		config.Redis.DialTimeoutSeconds = 5
	}
	if config.Redis.ReadTimeoutSeconds <= 0 {
		config.Redis.ReadTimeoutSeconds = 3
	}
	if config.Redis.WriteTimeoutSeconds <= 0 {
		config.Redis.WriteTimeoutSeconds = 3
	}

	if config.Tracing.ServiceName == "" {
		config.Tracing.ServiceName = "resume-insight-go"
	}
	if config.Tracing.SampleRatio <= 0 {
		config.Tracing.SampleRatio = 1.0
	}
}

// 创建一个默认配置，用于找不到配置文件或生成示例配置
func createDefaultConfig() *Config {
	config := &Config{}

	config.Server.Address = ":8080"
	config.Server.MaxRequestBodyMB = 10

	// 日志默认配置
	config.Logger.Level = "info"
	config.Logger.Format = "pretty" // 开发环境默认使用美化输出
	config.Logger.TimeFormat = "2006-01-02 15:04:05"
	config.Logger.ReportCaller = true

	// NER默认走sidecar，与spaCy en_core_web_md 的标签保持一致
	config.NLP.NER.Backend = "sidecar"
	config.NLP.NER.SidecarURL = "http://localhost:8001"
	config.NLP.NER.TimeoutSeconds = 10
	config.NLP.PIIEntities = []string{"PERSON", "GPE", "LOC"}

	config.Embedding.Model = "all-MiniLM-L6-v2"
	config.Embedding.Dimensions = 384
	config.Embedding.BaseURL = "http://localhost:8081/v1/embeddings"
	config.Embedding.TimeoutSeconds = 30

	config.Classifier.ModelPath = "models/resume_classifier.json"
	config.Classifier.DefaultTopK = 2
	config.Skills.SkillMapPath = "data/skill_map.json"
	config.Artifacts.Source = "local"

	// MinIO默认配置
	config.MinIO.Endpoint = "localhost:9000"
	config.MinIO.AccessKeyID = "minioadmin"
	config.MinIO.SecretAccessKey = "minioadmin123"
	config.MinIO.BucketName = "resume-models"

	// Redis默认配置 (默认不启用缓存)
	config.Redis.Enabled = false
	config.Redis.Address = "localhost:6379"
	config.Redis.PoolSize = 10
	config.Redis.MinIdleConns = 2
	config.Redis.DialTimeoutSeconds = 5
	config.Redis.ReadTimeoutSeconds = 3
	config.Redis.WriteTimeoutSeconds = 3
	config.Redis.CacheTTLMinutes = 60

	config.Tracing.Enabled = false
	config.Tracing.Endpoint = "localhost:4317"
	config.Tracing.Insecure = true
	config.Tracing.ServiceName = "resume-insight-go"
	config.Tracing.SampleRatio = 1.0

	return config
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	// 检查文件是否已存在
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	data, err := yaml.Marshal(createDefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}

// CacheTTL 返回分类结果缓存的过期时间
func (c *RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}
