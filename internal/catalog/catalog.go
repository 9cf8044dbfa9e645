// Package catalog 提供仪表盘使用的静态参考数据
// 包括公共数据源目录和数据出境合规路径表
// 数据以 YAML 形式嵌入二进制，启动时解析一次，之后只读
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yuimhosin/datadashboard/internal/model"
)

//go:embed catalog.yaml
var defaultData []byte

// ErrUnknownCategory 分类筛选值无法识别
var ErrUnknownCategory = errors.New("unknown category")

// 表示"全部"的筛选值
var allFilters = []string{"", "all", "全部"}

// CategoryLabel 筛选标签
// Category 为空表示"全部"
type CategoryLabel struct {
	Label    string         `yaml:"label" json:"label"`
	Category model.Category `yaml:"category,omitempty" json:"category,omitempty"`
}

type document struct {
	Categories []CategoryLabel        `yaml:"categories"`
	Sources    []model.DataSource     `yaml:"sources"`
	Compliance []model.CompliancePath `yaml:"compliance"`
}

// Catalog 只读参考数据集
type Catalog struct {
	categories []CategoryLabel
	sources    []model.DataSource
	compliance []model.CompliancePath
}

// Load 解析内置的参考数据
func Load() (*Catalog, error) {
	return Parse(defaultData)
}

// MustLoad 与 Load 相同，解析失败时 panic
// 内置数据在编译期就已确定，失败只可能是数据文件本身写错了
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse 从 YAML 文档构建 Catalog
// 参数:
//   - data: YAML 文档内容
//
// 返回:
//   - *Catalog: 参考数据集
//   - error: 解析错误或数据校验错误
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Sources))
	for _, s := range doc.Sources {
		if s.ID == "" {
			return nil, errors.New("catalog: data source without id")
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate data source id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.QualityScore < 0 || s.QualityScore > 100 {
			return nil, fmt.Errorf("catalog: quality score of %q out of range: %d", s.ID, s.QualityScore)
		}
	}

	return &Catalog{
		categories: doc.Categories,
		sources:    doc.Sources,
		compliance: doc.Compliance,
	}, nil
}

// Categories 返回筛选标签（按展示顺序）
func (c *Catalog) Categories() []CategoryLabel {
	return append([]CategoryLabel(nil), c.categories...)
}

// Sources 按分类筛选数据源
// filter 可以是英文分类名（不区分大小写）或中文标签，
// 空字符串、"all"、"全部" 返回全部数据源
// 返回的切片是副本，保持声明顺序
func (c *Catalog) Sources(filter string) ([]model.DataSource, error) {
	filter = strings.TrimSpace(filter)
	for _, all := range allFilters {
		if strings.EqualFold(filter, all) {
			return append([]model.DataSource(nil), c.sources...), nil
		}
	}

	category, ok := c.resolveCategory(filter)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, filter)
	}

	result := make([]model.DataSource, 0, len(c.sources))
	for _, s := range c.sources {
		if s.Category == category {
			result = append(result, s)
		}
	}
	return result, nil
}

// Compliance 返回合规路径表（按声明顺序）
func (c *Catalog) Compliance() []model.CompliancePath {
	return append([]model.CompliancePath(nil), c.compliance...)
}

// resolveCategory 将筛选值解析为分类
func (c *Catalog) resolveCategory(filter string) (model.Category, bool) {
	for _, l := range c.categories {
		if l.Category != "" && l.Label == filter {
			return l.Category, true
		}
	}
	for _, cat := range []model.Category{
		model.CategoryTrade,
		model.CategoryEconomy,
		model.CategoryDemographics,
		model.CategoryHealth,
		model.CategoryGeospatial,
	} {
		if strings.EqualFold(filter, string(cat)) {
			return cat, true
		}
	}
	return "", false
}
