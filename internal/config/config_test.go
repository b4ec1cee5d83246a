package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFileOnly 验证YAML配置能被正确加载，缺省字段被填充默认值
func TestLoadConfigFromFileOnly(t *testing.T) {
	yamlContent := `
server:
  address: ":9090"
nlp:
  ner:
    backend: sidecar
    sidecar_url: "http://ner:8001"
  pii_entities: ["PERSON", "ORG"]
embedding:
  model: text-embedding-v3
  dimensions: 1024
  extra_models:
    my-local-model: 256
classifier:
  default_top_k: 3
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadConfigFromFileOnly(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "sidecar", cfg.NLP.NER.Backend)
	assert.Equal(t, "http://ner:8001", cfg.NLP.NER.SidecarURL)
	assert.Equal(t, []string{"PERSON", "ORG"}, cfg.NLP.PIIEntities)
	assert.Equal(t, "text-embedding-v3", cfg.Embedding.Model)
	assert.Equal(t, map[string]int{"my-local-model": 256}, cfg.Embedding.ExtraModels)
	assert.Equal(t, 3, cfg.Classifier.DefaultTopK)

	// 默认值
	assert.Equal(t, 10, cfg.NLP.NER.TimeoutSeconds)
	assert.Equal(t, "models/resume_classifier.json", cfg.Classifier.ModelPath)
	assert.Equal(t, "data/skill_map.json", cfg.Skills.SkillMapPath)
	assert.Equal(t, "local", cfg.Artifacts.Source)
	assert.Equal(t, 60*time.Minute, cfg.Redis.CacheTTL())
}

// TestLoadConfigDefaultsPIIEntities 未配置白名单时，有NER后端用 PERSON/GPE/LOC，后端为 none 时为空
func TestLoadConfigDefaultsPIIEntities(t *testing.T) {
	dir := t.TempDir()

	bare := filepath.Join(dir, "bare.yaml")
	require.NoError(t, os.WriteFile(bare, []byte("server:\n  address: \":8080\"\n"), 0644))
	cfg, err := LoadConfigFromFileOnly(bare)
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.NLP.NER.Backend)
	assert.NotNil(t, cfg.NLP.PIIEntities)
	assert.Empty(t, cfg.NLP.PIIEntities)

	ruler := filepath.Join(dir, "ruler.yaml")
	require.NoError(t, os.WriteFile(ruler, []byte("nlp:\n  ner:\n    backend: ruler\n"), 0644))
	cfg, err = LoadConfigFromFileOnly(ruler)
	require.NoError(t, err)
	assert.Equal(t, []string{"PERSON", "GPE", "LOC"}, cfg.NLP.PIIEntities)

	// 显式配置的白名单保持不变，由脱敏器在启动时校验
	explicit := filepath.Join(dir, "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("nlp:\n  pii_entities: [PERSON]\n"), 0644))
	cfg, err = LoadConfigFromFileOnly(explicit)
	require.NoError(t, err)
	assert.Equal(t, []string{"PERSON"}, cfg.NLP.PIIEntities)
}

func TestLoadConfigFromFileOnly_Errors(t *testing.T) {
	_, err := LoadConfigFromFileOnly("")
	assert.Error(t, err)

	_, err = LoadConfigFromFileOnly(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("server: [unclosed"), 0644))
	_, err = LoadConfigFromFileOnly(badPath)
	assert.Error(t, err)
}

// TestLoadConfigEnvOverrides 环境变量覆盖密钥和API Key列表
func TestLoadConfigEnvOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("embedding:\n  api_key: from-file\n"), 0644))

	t.Setenv("EMBEDDING_API_KEY", "from-env")
	t.Setenv("RESUME_API_KEYS", "key-a, key-b,,")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Embedding.APIKey)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.Server.APIKeys)
}

// TestLoadConfigDotEnv .env 只补充未设置的变量，已有环境变量优先
func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("redis:\n  password: from-file\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("REDIS_PASSWORD=from-dotenv\nNER_SIDECAR_URL=http://dotenv:8001\n"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("NER_SIDECAR_URL", "http://env:8001")
	// Setenv 注册还原，随后清空，让 .env 的值生效
	t.Setenv("REDIS_PASSWORD", "")
	require.NoError(t, os.Unsetenv("REDIS_PASSWORD"))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Redis.Password)
	assert.Equal(t, "http://env:8001", cfg.NLP.NER.SidecarURL)
}

func TestCreateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, CreateSampleConfig(path))

	cfg, err := LoadConfigFromFileOnly(path)
	require.NoError(t, err)
	assert.Equal(t, "sidecar", cfg.NLP.NER.Backend)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)

	// 不覆盖已存在的文件
	assert.Error(t, CreateSampleConfig(path))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("", 5*time.Second))
	assert.Equal(t, 2*time.Minute, GetDuration("2m", 5*time.Second))
	assert.Equal(t, 5*time.Second, GetDuration("garbage", 5*time.Second))
}
