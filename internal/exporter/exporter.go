package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"malldash/internal/model"
	"malldash/internal/service/dashboard"
)

const (
	ordersSheet  = "주문"
	summarySheet = "요약"
)

// 订单表头与导入时的表头候选一致，导出的文件可以直接重新导入
var orderHeaders = []interface{}{"날짜", "주문번호", "쇼핑몰", "카테고리", "상품명", "수량", "결제금액", "메모"}

// ProgressEvent 导出进度
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// Exporter 订单导出（平铺格式：每条明细一行）
type Exporter struct {
	malls    map[string]string
	progress func(ProgressEvent)
}

// New 创建导出器；registry 用于把 mallId 还原为商城名
func New(registry []model.Mall, progress func(ProgressEvent)) *Exporter {
	names := make(map[string]string, len(registry))
	for _, m := range registry {
		names[m.ID] = m.Name
	}
	return &Exporter{malls: names, progress: progress}
}

// Export 生成工作簿：订单明细 + 商城汇总
func (e *Exporter) Export(orders []model.Order) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	e.report(0, "orders")
	if err := e.writeOrders(f, orders, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	e.report(80, "summary")
	if err := e.writeSummary(f, orders, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	e.report(100, "done")
	return f, nil
}

// WriteTo 导出并写入 w
func (e *Exporter) WriteTo(w io.Writer, orders []model.Order) error {
	f, err := e.Export(orders)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *Exporter) writeOrders(f *excelize.File, orders []model.Order, headerStyle int) error {
	if err := f.SetSheetRow(ordersSheet, "A1", &orderHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	_ = f.SetRowStyle(ordersSheet, 1, 1, headerStyle)
	_ = f.SetColWidth(ordersSheet, "A", "B", 14)
	_ = f.SetColWidth(ordersSheet, "E", "E", 32)

	row := 2
	for i, o := range orders {
		mall := o.MallName
		if name, ok := e.malls[o.MallID]; ok {
			mall = name
		}

		for j, it := range o.Items {
			amount := it.Amount
			// 金额只记在订单层面时写在第一行，重新导入后合计不变
			if j == 0 && o.OrderLevelAmount() {
				amount = o.TotalAmount
			}
			values := []interface{}{o.Date, o.OrderNo, mall, it.Category, it.ProductName, it.Qty, amount, o.Note}
			axis, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(ordersSheet, axis, &values); err != nil {
				return fmt.Errorf("failed to write order %s: %w", o.OrderNo, err)
			}
			row++
		}

		if len(orders) > 0 && i%500 == 0 {
			e.report(i*80/len(orders), "orders")
		}
	}
	return nil
}

func (e *Exporter) writeSummary(f *excelize.File, orders []model.Order, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	header := []interface{}{"쇼핑몰", "주문수", "수량", "매출"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	_ = f.SetRowStyle(summarySheet, 1, 1, headerStyle)

	s := dashboard.Summarize(orders)
	row := 2
	for _, b := range s.ByMall {
		name := b.Key
		if n, ok := e.malls[b.Key]; ok {
			name = n
		} else if name == "" {
			name = "미연결"
		}
		values := []interface{}{name, b.Count, b.Qty, b.Amount}
		axis, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(summarySheet, axis, &values); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
		row++
	}

	total := []interface{}{"합계", s.TotalOrders, s.TotalQty, s.TotalAmount}
	axis, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(summarySheet, axis, &total); err != nil {
		return fmt.Errorf("failed to write summary total: %w", err)
	}
	return nil
}

func (e *Exporter) report(percent int, stage string) {
	if e.progress == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	e.progress(ProgressEvent{Percent: percent, Stage: stage})
}
