package parser

import (
	"fmt"
	"time"

	"malldash/internal/model"
)

// Builder 订单构建策略
type Builder func(rows []Row, cols ColumnMap, malls *MallResolver, now time.Time) []model.Order

// BuilderFor 按布局选择构建策略
func BuilderFor(layout Layout) Builder {
	if layout == LayoutGrouped {
		return BuildGrouped
	}
	return BuildFlat
}

// pendingOrder 续行布局中正在累积的订单
type pendingOrder struct {
	order       model.Order
	reportedQty int64 // 表格中的总数量列，0 表示未提供
}

// seal 完成订单：多明细时首行金额归零（支付金额属于整个订单），补齐总数量
func (p pendingOrder) seal() model.Order {
	o := p.order
	if len(o.Items) > 1 {
		o.Items[0].Amount = 0
	}
	if p.reportedQty > 0 {
		o.TotalQty = p.reportedQty
	} else {
		o.TotalQty = o.SumQty()
	}
	return o
}

// groupedFold 续行布局折叠状态：已完成的订单 + 至多一个进行中的订单
type groupedFold struct {
	done    []model.Order
	pending *pendingOrder
}

func (f groupedFold) step(row Row, cols ColumnMap, malls *MallResolver, now time.Time) groupedFold {
	product := cols.Text(row.Cells, RoleProduct)
	if product == "" {
		return f
	}

	dateCell := cols.Cell(row.Cells, RoleDate)
	orderNo := cols.Text(row.Cells, RoleOrderNo)
	item := lineItem(row, cols, product)

	if !dateCell.IsBlank() || orderNo != "" {
		f = f.flush()
		if orderNo == "" {
			orderNo = syntheticOrderNo(row)
		}
		payment := ParseAmount(cols.Cell(row.Cells, RolePayment))
		item.Amount = payment
		mall := malls.Resolve(cols.Text(row.Cells, RoleMall))

		f.pending = &pendingOrder{
			order: model.Order{
				Date:        ParseDate(dateCell, now),
				OrderNo:     orderNo,
				MallID:      mall.ID,
				MallName:    mall.Name,
				Note:        cols.Text(row.Cells, RoleNote),
				TotalAmount: payment,
				Items:       []model.LineItem{item},
			},
			reportedQty: ParseAmount(cols.Cell(row.Cells, RoleTotalQty)),
		}
		return f
	}

	// 第一个订单之前的续行无法归属，丢弃
	if f.pending == nil {
		return f
	}
	next := *f.pending
	next.order.Items = append(next.order.Items, item)
	f.pending = &next
	return f
}

func (f groupedFold) flush() groupedFold {
	if f.pending == nil {
		return f
	}
	return groupedFold{done: append(f.done, f.pending.seal())}
}

// BuildGrouped 续行布局：带日期或订单号的行开始新订单，其后两者皆空的行作为该订单的追加明细
func BuildGrouped(rows []Row, cols ColumnMap, malls *MallResolver, now time.Time) []model.Order {
	var f groupedFold
	for _, row := range rows {
		f = f.step(row, cols, malls, now)
	}
	f = f.flush()
	if f.done == nil {
		return []model.Order{}
	}
	return f.done
}

// lineItem 按行构建明细（金额由调用方决定）
func lineItem(row Row, cols ColumnMap, product string) model.LineItem {
	return model.LineItem{
		Category:    cols.Text(row.Cells, RoleCategory),
		ProductName: product,
		Qty:         ParseQuantity(cols.Cell(row.Cells, RoleQty)),
	}
}

// syntheticOrderNo 缺少订单号时按表格行号生成（1 起算，含表头）
func syntheticOrderNo(row Row) string {
	return fmt.Sprintf("R%d", row.Index+1)
}
