package model

// Category 数据源分类
type Category string

const (
	CategoryTrade        Category = "Trade"
	CategoryEconomy      Category = "Economy"
	CategoryDemographics Category = "Demographics"
	CategoryHealth       Category = "Health"
	CategoryGeospatial   Category = "Geospatial"
)

// DataSource 公共数据源条目
type DataSource struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Provider     string   `yaml:"provider" json:"provider"`
	Category     Category `yaml:"category" json:"category"`
	Description  string   `yaml:"description" json:"description"`
	URL          string   `yaml:"url" json:"url"`
	QualityScore int      `yaml:"quality_score" json:"qualityScore"` // 质量评分 0-100
}

// CompliancePath 数据出境合规路径
// 按数据类型和规模阈值给出对应的合规要求
type CompliancePath struct {
	ID          string `yaml:"id" json:"id"`
	Type        string `yaml:"type" json:"type"`
	Threshold   string `yaml:"threshold" json:"threshold"`
	Requirement string `yaml:"requirement" json:"requirement"`
	Description string `yaml:"description" json:"description"`
}
