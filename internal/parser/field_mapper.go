package parser

// HeaderRule 某字段角色可接受的表头写法（已规范化）
type HeaderRule struct {
	Role       FieldRole
	Candidates []string
}

// HeaderTable 表头候选表；顺序即优先级
type HeaderTable []HeaderRule

// DefaultHeaderTable 内置表头候选表
func DefaultHeaderTable() HeaderTable {
	return HeaderTable{
		{Role: RoleDate, Candidates: []string{"주문일시", "날짜", "주문날짜", "orderdate", "date"}},
		{Role: RoleOrderNo, Candidates: []string{"주문번호", "주문no", "주문id", "ordernumber", "orderid"}},
		{Role: RoleProduct, Candidates: []string{"상품명", "상품이름", "productname", "product", "상품"}},
		{Role: RoleQty, Candidates: []string{"수량", "quantity", "qty", "개수"}},
		{Role: RoleTotalQty, Candidates: []string{"총수량", "totalqty", "total_qty"}},
		{Role: RoleTotalPrice, Candidates: []string{"총상품가격", "총상품가", "상품가격", "totalprice"}},
		{Role: RolePayment, Candidates: []string{"결제금액", "결제", "payment", "amount", "금액"}},
		{Role: RoleCategory, Candidates: []string{"카테고리", "category", "분류"}},
		{Role: RoleMall, Candidates: []string{"쇼핑몰", "몰", "mall", "shop", "channel", "판매채널"}},
		{Role: RoleNote, Candidates: []string{"메모", "note", "비고", "memo"}},
	}
}

// WithAliases 在内置候选之后追加别名（别名会先做规范化），返回新表
func (t HeaderTable) WithAliases(aliases map[FieldRole][]string) HeaderTable {
	out := make(HeaderTable, len(t))
	for i, rule := range t {
		cands := append([]string(nil), rule.Candidates...)
		for _, a := range aliases[rule.Role] {
			if n := NormalizeText(a); n != "" {
				cands = append(cands, n)
			}
		}
		out[i] = HeaderRule{Role: rule.Role, Candidates: cands}
	}
	return out
}

// FieldMapper 表头映射器
type FieldMapper struct {
	table HeaderTable
}

// NewFieldMapper 创建表头映射器；table 为空时使用内置表
func NewFieldMapper(table HeaderTable) *FieldMapper {
	if len(table) == 0 {
		table = DefaultHeaderTable()
	}
	return &FieldMapper{table: table}
}

// Map 按表顺序为每个角色找第一个规范化后完全相等的表头列
// 已被靠前角色占用的列不再参与后续角色的匹配
func (m *FieldMapper) Map(headers []string) ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeText(h)
	}

	cols := make(ColumnMap)
	claimed := make(map[int]bool)

	for _, rule := range m.table {
		if cols.Has(rule.Role) {
			continue
		}
		for idx, h := range normalized {
			if h == "" || claimed[idx] {
				continue
			}
			if containsString(rule.Candidates, h) {
				cols[rule.Role] = idx
				claimed[idx] = true
				break
			}
		}
	}

	return cols
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
