package parser

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEinoPDFTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor.parser, "PDF提取器内部的parser不应为nil")
	assert.Equal(t, 30*time.Second, extractor.timeout)

	custom, err := NewEinoPDFTextExtractor(ctx,
		WithEinoLogger(zerolog.New(os.Stdout)),
		WithEinoTimeout(5*time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, custom.timeout)
}

// TestExtractTextFromMockPDF 非法PDF内容应返回错误，且保留传入的元数据
func TestExtractTextFromMockPDF(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	mockPDFContent := []byte("%PDF-1.5\nMock PDF content for testing\nThis is not a real PDF file\n")
	text, metadata, err := extractor.ExtractTextFromReader(ctx, bytes.NewReader(mockPDFContent), "mock_pdf.pdf",
		map[string]interface{}{"test_id": "mock_test_001"})

	if err == nil {
		t.Logf("注意：模拟PDF解析成功，文本长度 %d", len(text))
	}
	require.NotNil(t, metadata)
	assert.Equal(t, "mock_test_001", metadata["test_id"])
}

// TestExtractTextFromTestdata 存在 testdata 下的PDF时验证真实提取
func TestExtractTextFromTestdata(t *testing.T) {
	files, _ := filepath.Glob(filepath.Join("testdata", "*.pdf"))
	if len(files) == 0 {
		t.Skip("找不到测试PDF文件，跳过测试")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			text, metadata, err := extractor.ExtractTextFromReader(ctx, f, path, nil)
			require.NoError(t, err)
			assert.NotEmpty(t, strings.TrimSpace(text))
			assert.Equal(t, len(text), metadata["text_length"])
		})
	}
}
