package model

// LineItem 订单明细行
type LineItem struct {
	Category    string `json:"category"`
	ProductName string `json:"productName"`
	Qty         int64  `json:"qty"`
	Amount      int64  `json:"amount"` // 韩元，整数
}

// Order 订单
type Order struct {
	ID          string     `json:"id,omitempty"`
	Date        string     `json:"date"` // YYYY-MM-DD
	OrderNo     string     `json:"orderNo"`
	MallID      string     `json:"mallId"`
	MallName    string     `json:"mallName"` // 表格中的原始商城名，未匹配时也保留
	Note        string     `json:"note"`
	TotalAmount int64      `json:"totalAmount"`
	TotalQty    int64      `json:"totalQty"`
	Items       []LineItem `json:"items"`
}

// OrderKey 去重用的订单标识 (date, orderNo)
type OrderKey struct {
	Date    string
	OrderNo string
}

// Key 返回订单标识
func (o Order) Key() OrderKey {
	return OrderKey{Date: o.Date, OrderNo: o.OrderNo}
}

// SumQty 明细数量合计
func (o Order) SumQty() int64 {
	var n int64
	for _, it := range o.Items {
		n += it.Qty
	}
	return n
}

// SumAmount 明细金额合计
func (o Order) SumAmount() int64 {
	var n int64
	for _, it := range o.Items {
		n += it.Amount
	}
	return n
}

// OrderLevelAmount 金额只记在订单层面（多于一条明细且明细金额全为 0）
func (o Order) OrderLevelAmount() bool {
	if len(o.Items) <= 1 {
		return false
	}
	for _, it := range o.Items {
		if it.Amount != 0 {
			return false
		}
	}
	return true
}

// HasCategory 是否存在指定分类的明细
func (o Order) HasCategory(category string) bool {
	for _, it := range o.Items {
		if it.Category == category {
			return true
		}
	}
	return false
}
