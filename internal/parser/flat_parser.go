package parser

import (
	"time"

	"malldash/internal/model"
)

// BuildFlat 平铺布局：每行一条完整明细，按 (日期, 订单号) 归并为订单
// 行内支付金额属于该明细；订单总额为明细金额之和
func BuildFlat(rows []Row, cols ColumnMap, malls *MallResolver, now time.Time) []model.Order {
	orders := []model.Order{}
	index := make(map[model.OrderKey]int)

	for _, row := range rows {
		product := cols.Text(row.Cells, RoleProduct)
		if product == "" {
			continue
		}

		orderNo := cols.Text(row.Cells, RoleOrderNo)
		if orderNo == "" {
			orderNo = syntheticOrderNo(row)
		}
		key := model.OrderKey{
			Date:    ParseDate(cols.Cell(row.Cells, RoleDate), now),
			OrderNo: orderNo,
		}
		payment := ParseAmount(cols.Cell(row.Cells, RolePayment))
		// 每行都参与商城匹配，同一订单后续行的未登记商城名也会被收集
		mall := malls.Resolve(cols.Text(row.Cells, RoleMall))

		pos, ok := index[key]
		if !ok {
			orders = append(orders, model.Order{
				Date:        key.Date,
				OrderNo:     key.OrderNo,
				MallID:      mall.ID,
				MallName:    mall.Name,
				Note:        cols.Text(row.Cells, RoleNote),
				TotalAmount: payment,
			})
			pos = len(orders) - 1
			index[key] = pos
		}

		item := lineItem(row, cols, product)
		item.Amount = payment
		orders[pos].Items = append(orders[pos].Items, item)
		orders[pos].TotalQty += item.Qty
	}

	for i := range orders {
		orders[i].TotalAmount = orders[i].SumAmount()
	}
	return orders
}
