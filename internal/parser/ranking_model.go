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

// LinearModel 线性多分类模型 (one-vs-rest)，由训练脚本导出为JSON:
//
//	{
//	  "classes":   ["Data Science", "DevOps", ...],
//	  "coef":      [[...], ...],   // 每个类别一行；二分类时只有一行
//	  "intercept": [...],
//	  "scaler":    {"mean": [...], "scale": [...]}   // 可选，标准化参数
//	}
type LinearModel struct {
	ClassLabels []string     `json:"classes"`
	Coef        [][]float64  `json:"coef"`
	Intercept   []float64    `json:"intercept"`
	Scaler      *ScalerParam `json:"scaler,omitempty"`
}

// ScalerParam 标准化参数 x' = (x - mean) / scale
type ScalerParam struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadLinearModel 从文件加载模型，文件不存在时返回 ErrModelNotFound
func LoadLinearModel(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, processor.NewConfigError(processor.ErrModelNotFound, "%s", path)
		}
		return nil, fmt.Errorf("打开模型文件失败: %w", err)
	}
	defer f.Close()
	return LoadLinearModelFrom(f)
}

// LoadLinearModelFrom 从 reader 解析并校验模型
func LoadLinearModelFrom(r io.Reader) (*LinearModel, error) {
	var m LinearModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("解析模型文件失败: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, processor.NewConfigError(processor.ErrConfiguration, "模型文件无效: %v", err)
	}
	return &m, nil
}

func (m *LinearModel) validate() error {
	if len(m.ClassLabels) < 2 {
		return fmt.Errorf("至少需要2个类别，实际 %d 个", len(m.ClassLabels))
	}
	rows := len(m.Coef)
	binary := len(m.ClassLabels) == 2 && rows == 1
	if !binary && rows != len(m.ClassLabels) {
		return fmt.Errorf("coef 行数 %d 与类别数 %d 不一致", rows, len(m.ClassLabels))
	}
	if len(m.Intercept) != rows {
		return fmt.Errorf("intercept 长度 %d 与 coef 行数 %d 不一致", len(m.Intercept), rows)
	}
	n := len(m.Coef[0])
	if n == 0 {
		return fmt.Errorf("coef 不能为空")
	}
	for i, row := range m.Coef {
		if len(row) != n {
			return fmt.Errorf("coef 第 %d 行长度 %d，期望 %d", i, len(row), n)
		}
	}
	if m.Scaler != nil {
		if len(m.Scaler.Mean) != n || len(m.Scaler.Scale) != n {
			return fmt.Errorf("scaler 维度与特征数 %d 不一致", n)
		}
	}
	return nil
}

// Classes 类别顺序
func (m *LinearModel) Classes() []string {
	return m.ClassLabels
}

// NumFeatures 输入特征维度
func (m *LinearModel) NumFeatures() int {
	return len(m.Coef[0])
}

// DecisionFunction 计算每个类别的间隔分数。二分类单行模型返回 [-d, d]。
func (m *LinearModel) DecisionFunction(x []float64) ([]float64, error) {
	n := m.NumFeatures()
	if len(x) != n {
		return nil, fmt.Errorf("输入向量维度 %d 与模型特征数 %d 不一致", len(x), n)
	}

	if m.Scaler != nil {
		scaled := make([]float64, n)
		for i, v := range x {
			scale := m.Scaler.Scale[i]
			if scale == 0 {
				scale = 1
			}
			scaled[i] = (v - m.Scaler.Mean[i]) / scale
		}
		x = scaled
	}

	margins := make([]float64, len(m.Coef))
	for i, row := range m.Coef {
		d := m.Intercept[i]
		for j, w := range row {
			d += w * x[j]
		}
		margins[i] = d
	}

	if len(margins) == 1 {
		return []float64{-margins[0], margins[0]}, nil
	}
	return margins, nil
}
