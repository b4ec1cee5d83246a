package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"resume-insight-go/internal/config"
	"resume-insight-go/internal/processor"

	"github.com/rs/zerolog"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 对象存储 (artifacts.source=minio 时初始化)
	MinIO *MinIO

	// 键值存储 (redis.enabled=true 时初始化)
	Redis *Redis

	artifactSource string
}

// NewStorage 创建存储管理器。
// 与制品来源相关的组件初始化失败直接返回错误；缓存是可选的，失败只记录警告。
func NewStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{artifactSource: cfg.Artifacts.Source}

	switch cfg.Artifacts.Source {
	case "", "local":
		s.artifactSource = "local"
	case "minio":
		m, err := NewMinIO(&cfg.MinIO, logger)
		if err != nil {
			return nil, processor.NewConfigError(processor.ErrConfiguration, "初始化MinIO失败: %v", err)
		}
		s.MinIO = m
	default:
		return nil, processor.NewConfigError(processor.ErrConfiguration, "未知的制品来源 %q", cfg.Artifacts.Source)
	}

	if cfg.Redis.Enabled {
		r, err := NewRedisAdapter(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化Redis失败, 分类缓存已禁用")
		} else {
			s.Redis = r
			logger.Info().Str("address", cfg.Redis.Address).Msg("Redis分类缓存已启用")
		}
	}

	return s, nil
}

// CategoryCache 返回可用的分类缓存，未启用时返回 nil
func (s *Storage) CategoryCache() processor.CategoryCache {
	if s == nil || s.Redis == nil {
		return nil
	}
	return s.Redis
}

// OpenArtifact 按配置的来源打开制品 (模型JSON或技能词典)。
// local 模式下 name 是文件路径，minio 模式下是对象名。
// 本地文件不存在时返回的错误满足 os.IsNotExist / errors.Is(err, fs.ErrNotExist)。
func (s *Storage) OpenArtifact(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" {
		return nil, fmt.Errorf("制品路径不能为空")
	}
	if s.artifactSource == "minio" {
		if s.MinIO == nil {
			return nil, fmt.Errorf("MinIO未初始化")
		}
		data, err := s.MinIO.DownloadFile(ctx, name)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return os.Open(name)
}

// Close 关闭所有连接
func (s *Storage) Close() error {
	if s.Redis != nil {
		return s.Redis.Close()
	}
	// MinIO客户端不需要显式关闭
	return nil
}
