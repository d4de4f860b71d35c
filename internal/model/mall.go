package model

// Mall 商城（用户维护的商城登记表条目）
type Mall struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Color      string   `json:"color,omitempty"`
	Categories []string `json:"categories"` // 仅该商城使用的分类，可为空
}

// MallPalette 商城标签颜色，按登记顺序轮换
var MallPalette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899", "#06B6D4", "#84CC16"}

// DefaultCategories 默认全局分类
var DefaultCategories = []string{"상의", "하의", "아우터", "신발", "가방", "액세서리", "뷰티", "식품", "가전", "기타"}

// UncategorizedLabel 统计时空分类的显示名
const UncategorizedLabel = "미분류"
