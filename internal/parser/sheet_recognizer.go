package parser

const (
	layoutScanStart = 2  // 第一条数据行作为基准，不参与判断
	layoutScanLimit = 30 // 最多看到第 30 行
)

// RecognizeLayout 判断表格是续行布局还是平铺布局
// 只要扫描范围内有一行“日期为空但商品名不为空”即判为续行布局；未识别到日期或商品列时一律平铺
func RecognizeLayout(rows [][]Cell, cols ColumnMap) Layout {
	if !cols.Has(RoleDate) || !cols.Has(RoleProduct) {
		return LayoutFlat
	}

	limit := len(rows)
	if limit > layoutScanLimit {
		limit = layoutScanLimit
	}
	for r := layoutScanStart; r < limit; r++ {
		row := rows[r]
		if cols.Cell(row, RoleDate).IsBlank() && !cols.Cell(row, RoleProduct).IsBlank() {
			return LayoutGrouped
		}
	}
	return LayoutFlat
}
