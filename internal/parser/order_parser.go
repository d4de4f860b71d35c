package parser

import (
	"fmt"
	"strings"
	"time"

	"malldash/internal/model"
)

const (
	msgNoData       = "데이터가 없습니다."
	msgGroupedUsed  = "✅ 센스바디 형식으로 파싱했습니다."
	msgFlatUsed     = "✅ 일반 형식으로 파싱했습니다."
	msgUnknownMalls = "미등록 쇼핑몰: %s — 앱에 먼저 추가하거나 업로드 후 연결하세요."
)

// Parse 从单个 Sheet 的表格中解析订单
// 纯函数：不修改 grid 与 registry，异常输入只会体现在结果与提示中，不返回错误
func Parse(grid Grid, registry []model.Mall, opts Options) Result {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := Result{
		Sheet:        grid.Sheet,
		Layout:       LayoutFlat,
		Columns:      ColumnMap{},
		Orders:       []model.Order{},
		UnknownMalls: []string{},
	}

	if len(grid.Rows) < 2 {
		result.Warnings = []string{msgNoData}
		return result
	}

	result.DataRows = len(grid.Rows) - 1
	result.Warnings = append(result.Warnings, fmt.Sprintf("시트 \"%s\" 파싱 중 (%d행)", grid.Sheet, result.DataRows))

	headers := make([]string, len(grid.Rows[0]))
	for i, h := range grid.Rows[0] {
		headers[i] = h.String()
	}
	result.Columns = NewFieldMapper(opts.Headers).Map(headers)
	result.Layout = RecognizeLayout(grid.Rows, result.Columns)

	rows := make([]Row, 0, result.DataRows)
	for i := 1; i < len(grid.Rows); i++ {
		rows = append(rows, Row{Index: i, Cells: grid.Rows[i]})
	}

	malls := NewMallResolver(registry)
	orders := BuilderFor(result.Layout)(rows, result.Columns, malls, now)
	result.Orders = finalizeOrders(orders)

	for _, o := range result.Orders {
		if o.OrderLevelAmount() {
			result.OrderLevelAmountCount++
		}
	}

	result.UnknownMalls = malls.Unknown()
	if len(result.UnknownMalls) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(msgUnknownMalls, strings.Join(result.UnknownMalls, ", ")))
	}
	if result.Layout == LayoutGrouped {
		result.Warnings = append(result.Warnings, msgGroupedUsed)
	} else {
		result.Warnings = append(result.Warnings, msgFlatUsed)
	}

	return result
}

// finalizeOrders 总数量缺失时按明细合计补齐
func finalizeOrders(orders []model.Order) []model.Order {
	out := make([]model.Order, len(orders))
	for i, o := range orders {
		if o.TotalQty == 0 {
			o.TotalQty = o.SumQty()
		}
		out[i] = o
	}
	return out
}
