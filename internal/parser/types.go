package parser

import (
	"strconv"
	"strings"
	"time"

	"malldash/internal/model"
)

// CellKind 单元格原始类型
type CellKind int

const (
	CellBlank CellKind = iota
	CellText
	CellNumber
)

// Cell 已解码的单元格（文本 / 数值 / 空）
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell 文本单元格；空字符串视为空单元格
func TextCell(s string) Cell {
	if s == "" {
		return Cell{Kind: CellBlank}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell 数值单元格
func NumberCell(v float64) Cell {
	return Cell{Kind: CellNumber, Number: v}
}

// IsBlank 是否为空（纯空白文本也算空）
func (c Cell) IsBlank() bool {
	return c.String() == ""
}

// String 单元格文本（去首尾空白；数值不使用科学计数法）
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// Grid 单个 Sheet 的二维表格，第 0 行为表头
type Grid struct {
	Sheet string
	Rows  [][]Cell
}

// Row 数据行及其在表格中的下标（0 为表头）
type Row struct {
	Index int
	Cells []Cell
}

// FieldRole 规范字段角色
type FieldRole string

const (
	RoleDate       FieldRole = "date"
	RoleOrderNo    FieldRole = "orderNo"
	RoleProduct    FieldRole = "product"
	RoleQty        FieldRole = "qty"
	RoleTotalQty   FieldRole = "totalQty"
	RoleTotalPrice FieldRole = "totalPrice"
	RolePayment    FieldRole = "payment"
	RoleCategory   FieldRole = "category"
	RoleMall       FieldRole = "mall"
	RoleNote       FieldRole = "note"
)

// ColumnMap 字段角色 -> 列下标；缺失的角色表示该表没有此字段
type ColumnMap map[FieldRole]int

// Has 是否识别到该字段
func (m ColumnMap) Has(role FieldRole) bool {
	_, ok := m[role]
	return ok
}

// Cell 取行中某字段的单元格，缺列或短行返回空单元格
func (m ColumnMap) Cell(cells []Cell, role FieldRole) Cell {
	idx, ok := m[role]
	if !ok || idx < 0 || idx >= len(cells) {
		return Cell{}
	}
	return cells[idx]
}

// Text 取行中某字段的文本
func (m ColumnMap) Text(cells []Cell, role FieldRole) string {
	return m.Cell(cells, role).String()
}

// Layout 表格布局
type Layout string

const (
	// LayoutGrouped 续行布局：同一订单的后续明细行不带日期/订单号
	LayoutGrouped Layout = "grouped"
	// LayoutFlat 平铺布局：每行独立标识订单与明细
	LayoutFlat Layout = "flat"
)

// Options 解析选项
type Options struct {
	Now     time.Time   // 日期兜底使用的“今天”，零值取当前时间
	Headers HeaderTable // 为空时使用 DefaultHeaderTable
}

// Result 解析结果
type Result struct {
	Sheet                 string        `json:"sheet"`
	DataRows              int           `json:"dataRows"`
	Layout                Layout        `json:"layout"`
	Columns               ColumnMap     `json:"columns"`
	Orders                []model.Order `json:"orders"`
	Warnings              []string      `json:"warnings"`
	UnknownMalls          []string      `json:"unknownMalls"`
	OrderLevelAmountCount int           `json:"orderLevelAmountCount"`
}
