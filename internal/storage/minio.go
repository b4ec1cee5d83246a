package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"resume-insight-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// ObjectReader 只读对象存储接口，用于拉取模型与技能词典制品
type ObjectReader interface {
	DownloadFile(ctx context.Context, objectName string) ([]byte, error)
}

// 确保MinIO实现了ObjectReader接口
var _ ObjectReader = (*MinIO)(nil)

// MinIO 提供制品下载功能
type MinIO struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

// NewMinIO 创建MinIO客户端，不会主动连接服务端
func NewMinIO(cfg *config.MinIOConfig, logger zerolog.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("MinIO endpoint 不能为空")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("MinIO bucketName 不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	logger.Debug().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("MinIO客户端初始化成功")
	return &MinIO{client: client, bucket: cfg.BucketName, logger: logger}, nil
}

// splitObjectName 支持 "bucket/key" 形式覆盖默认存储桶
func (m *MinIO) splitObjectName(objectName string) (string, string) {
	name := strings.TrimPrefix(objectName, "/")
	if strings.HasPrefix(name, m.bucket+"/") {
		return m.bucket, strings.TrimPrefix(name, m.bucket+"/")
	}
	return m.bucket, name
}

// DownloadFile 下载对象的完整内容
func (m *MinIO) DownloadFile(ctx context.Context, objectName string) ([]byte, error) {
	bucketName, key := m.splitObjectName(objectName)
	if key == "" {
		return nil, fmt.Errorf("对象名不能为空")
	}

	obj, err := m.client.GetObject(ctx, bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, key, err)
	}
	defer obj.Close()

	// Stat 可以尽早发现对象不存在或无权限
	stat, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucketName, key, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, key, err)
	}
	m.logger.Debug().
		Str("bucket", bucketName).
		Str("object", key).
		Int64("size", stat.Size).
		Msg("MinIO对象下载完成")
	return data, nil
}
