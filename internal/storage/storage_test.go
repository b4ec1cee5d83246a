package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resume-insight-go/internal/config"
	"resume-insight-go/internal/processor"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCategoriesKey(t *testing.T) {
	k1 := CategoriesKey("python developer", 2)
	k2 := CategoriesKey("python developer", 2)
	k3 := CategoriesKey("python developer", 3)
	k4 := CategoriesKey("go developer", 2)

	assert.Equal(t, k1, k2, "相同文本和topK应得到相同的键")
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.True(t, strings.HasPrefix(k1, "app:resume:categories:"))
	assert.True(t, strings.HasSuffix(k1, ":2"))
	assert.NotContains(t, k1, "python", "缓存键中不应出现明文")
}

func TestStorage_DisabledCache(t *testing.T) {
	cfg := &config.Config{}
	cfg.Artifacts.Source = "local"
	cfg.Redis.Enabled = false

	s, err := NewStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, s.CategoryCache())
	assert.NoError(t, s.Close())

	// nil Redis 上的读写是空操作
	var r *Redis
	cats, ok, err := r.GetCategories(context.Background(), "text", 2)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, cats)
	assert.NoError(t, r.SetCategories(context.Background(), "text", 2, []string{"DevOps"}))
}

func TestStorage_UnknownArtifactSource(t *testing.T) {
	cfg := &config.Config{}
	cfg.Artifacts.Source = "ftp"

	_, err := NewStorage(context.Background(), cfg, zerolog.Nop())
	assert.True(t, processor.IsConfigurationError(err))
}

func TestStorage_MinIOConfigValidation(t *testing.T) {
	cfg := &config.Config{}
	cfg.Artifacts.Source = "minio"

	_, err := NewStorage(context.Background(), cfg, zerolog.Nop())
	assert.ErrorIs(t, err, processor.ErrConfiguration)

	cfg.MinIO.Endpoint = "localhost:9000"
	cfg.MinIO.BucketName = "resume-models"
	s, err := NewStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, s.MinIO)

	bucket, key := s.MinIO.splitObjectName("resume-models/models/clf.json")
	assert.Equal(t, "resume-models", bucket)
	assert.Equal(t, "models/clf.json", key)

	bucket, key = s.MinIO.splitObjectName("/data/skill_map.json")
	assert.Equal(t, "resume-models", bucket)
	assert.Equal(t, "data/skill_map.json", key)
}

func TestStorage_OpenLocalArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skill_map.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"go":"go"}`), 0644))

	s, err := NewStorage(context.Background(), &config.Config{}, zerolog.Nop())
	require.NoError(t, err)

	rc, err := s.OpenArtifact(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"go":"go"}`, string(data))

	_, err = s.OpenArtifact(context.Background(), filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = s.OpenArtifact(context.Background(), "")
	assert.Error(t, err)
}

func TestRedis_CacheErrorsRecordedOnSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	// 指向不可达地址，读写都会失败
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	r := &Redis{Client: client, ttl: time.Minute}

	_, ok, err := r.GetCategories(context.Background(), "python developer", 2)
	require.Error(t, err)
	assert.False(t, ok)
	require.Error(t, r.SetCategories(context.Background(), "python developer", 2, []string{"DevOps"}))

	var cacheSpans int
	for _, span := range recorder.Ended() {
		if !strings.HasPrefix(span.Name(), "Redis.") {
			continue
		}
		cacheSpans++
		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range span.Attributes() {
			attrs[kv.Key] = kv.Value
		}
		assert.Equal(t, CategoriesKey("python developer", 2), attrs["cache.key"].AsString())
		assert.Equal(t, "redis", attrs["error.type"].AsString())
	}
	assert.Equal(t, 2, cacheSpans)
}
