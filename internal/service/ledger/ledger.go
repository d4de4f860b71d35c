package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"malldash/internal/importer"
	"malldash/internal/model"
	"malldash/internal/store"
)

var (
	// ErrMallNotFound 商城不存在
	ErrMallNotFound = errors.New("ledger: mall not found")
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("ledger: order not found")
	// ErrInvalidName 名称为空
	ErrInvalidName = errors.New("ledger: name is required")
	// ErrDuplicate 名称或订单标识已存在
	ErrDuplicate = errors.New("ledger: already exists")
	// ErrInvalidOrder 手工录入的订单不完整
	ErrInvalidOrder = errors.New("ledger: invalid order")
)

// Service 商城 / 分类 / 订单维护
type Service struct {
	store *store.Store
	gen   importer.IDGenerator
	now   func() time.Time
}

// New 创建服务；gen 为空时使用 UUID
func New(st *store.Store, gen importer.IDGenerator) *Service {
	if gen == nil {
		gen = importer.UUIDGenerator{}
	}
	return &Service{store: st, gen: gen, now: time.Now}
}

// Malls 商城登记表
func (s *Service) Malls(ctx context.Context) ([]model.Mall, error) {
	return s.store.Malls(ctx)
}

// AddMall 登记商城
func (s *Service) AddMall(ctx context.Context, name string, categories []string) (model.Mall, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Mall{}, ErrInvalidName
	}

	var mall model.Mall
	err := s.store.Update(ctx, func(c *store.Collections) error {
		mall = model.Mall{
			ID:         uuid.NewString(),
			Name:       name,
			Color:      model.MallPalette[len(c.Malls)%len(model.MallPalette)],
			Categories: cleanNames(categories),
		}
		c.Malls = append(c.Malls, mall)
		return nil
	})
	if err != nil {
		return model.Mall{}, fmt.Errorf("failed to add mall: %w", err)
	}
	return mall, nil
}

// UpdateMallCategories 替换商城的分类列表
func (s *Service) UpdateMallCategories(ctx context.Context, id string, categories []string) (model.Mall, error) {
	var mall model.Mall
	err := s.store.Update(ctx, func(c *store.Collections) error {
		idx := findMall(c.Malls, id)
		if idx < 0 {
			return ErrMallNotFound
		}
		c.Malls[idx].Categories = cleanNames(categories)
		mall = c.Malls[idx]
		return nil
	})
	if err != nil {
		return model.Mall{}, err
	}
	return mall, nil
}

// DeleteMall 删除商城及其全部订单，返回删除的订单数
func (s *Service) DeleteMall(ctx context.Context, id string) (int, error) {
	removed := 0
	err := s.store.Update(ctx, func(c *store.Collections) error {
		idx := findMall(c.Malls, id)
		if idx < 0 {
			return ErrMallNotFound
		}
		c.Malls = append(c.Malls[:idx], c.Malls[idx+1:]...)

		kept := c.Orders[:0]
		for _, o := range c.Orders {
			if o.MallID == id {
				removed++
				continue
			}
			kept = append(kept, o)
		}
		c.Orders = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// LinkMall 把未匹配商城的订单关联到已登记的商城，返回更新数量
func (s *Service) LinkMall(ctx context.Context, mallName, mallID string) (int, error) {
	mallName = strings.TrimSpace(mallName)
	if mallName == "" {
		return 0, ErrInvalidName
	}

	linked := 0
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if findMall(c.Malls, mallID) < 0 {
			return ErrMallNotFound
		}
		for i := range c.Orders {
			o := &c.Orders[i]
			if o.MallID == "" && strings.TrimSpace(o.MallName) == mallName {
				o.MallID = mallID
				linked++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return linked, nil
}

// Categories 全局分类
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

// CategoriesFor 商城的分类；商城未设置时返回全局分类
func (s *Service) CategoriesFor(ctx context.Context, mallID string) ([]string, error) {
	c, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if mallID == "" {
		return c.Categories, nil
	}
	idx := findMall(c.Malls, mallID)
	if idx < 0 {
		return nil, ErrMallNotFound
	}
	if len(c.Malls[idx].Categories) > 0 {
		return c.Malls[idx].Categories, nil
	}
	return c.Categories, nil
}

// AddCategory 新增全局分类
func (s *Service) AddCategory(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	var out []string
	err := s.store.Update(ctx, func(c *store.Collections) error {
		for _, existing := range c.Categories {
			if existing == name {
				return fmt.Errorf("%w: category %s", ErrDuplicate, name)
			}
		}
		c.Categories = append(c.Categories, name)
		out = c.Categories
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteCategory 删除全局分类（不存在时无操作）
func (s *Service) DeleteCategory(ctx context.Context, name string) ([]string, error) {
	var out []string
	err := s.store.Update(ctx, func(c *store.Collections) error {
		kept := make([]string, 0, len(c.Categories))
		for _, existing := range c.Categories {
			if existing != name {
				kept = append(kept, existing)
			}
		}
		c.Categories = kept
		out = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Orders 全部订单
func (s *Service) Orders(ctx context.Context) ([]model.Order, error) {
	return s.store.Orders(ctx)
}

// OrderInput 手工录入订单
type OrderInput struct {
	Date    string           `json:"date"` // 为空取今天
	OrderNo string           `json:"orderNo"`
	MallID  string           `json:"mallId"`
	Note    string           `json:"note"`
	Items   []model.LineItem `json:"items"`
}

// AddOrder 手工录入订单
// 只保留有商品名、数量与金额大于 0 的明细；总计按明细重新计算
func (s *Service) AddOrder(ctx context.Context, in OrderInput) (model.Order, error) {
	orderNo := strings.TrimSpace(in.OrderNo)
	if strings.TrimSpace(in.MallID) == "" || orderNo == "" {
		return model.Order{}, fmt.Errorf("%w: mall and order number are required", ErrInvalidOrder)
	}

	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return model.Order{}, fmt.Errorf("%w: bad date %q", ErrInvalidOrder, in.Date)
	}

	items := make([]model.LineItem, 0, len(in.Items))
	for _, it := range in.Items {
		it.ProductName = strings.TrimSpace(it.ProductName)
		it.Category = strings.TrimSpace(it.Category)
		if it.ProductName == "" || it.Qty <= 0 || it.Amount <= 0 {
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return model.Order{}, fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	}

	var order model.Order
	err := s.store.Update(ctx, func(c *store.Collections) error {
		idx := findMall(c.Malls, in.MallID)
		if idx < 0 {
			return ErrMallNotFound
		}
		order = model.Order{
			Date:     date,
			OrderNo:  orderNo,
			MallID:   in.MallID,
			MallName: c.Malls[idx].Name,
			Note:     strings.TrimSpace(in.Note),
			Items:    items,
		}
		order.TotalAmount = order.SumAmount()
		order.TotalQty = order.SumQty()

		merged := importer.Merge([]model.Order{order}, c.Orders, s.gen)
		if len(merged.Accepted) == 0 {
			return fmt.Errorf("%w: order %s on %s", ErrDuplicate, orderNo, date)
		}
		order = merged.Accepted[0]
		c.Orders = append(c.Orders, order)
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// DeleteOrder 按 ID 删除订单
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(c *store.Collections) error {
		for i, o := range c.Orders {
			if o.ID == id {
				c.Orders = append(c.Orders[:i], c.Orders[i+1:]...)
				return nil
			}
		}
		return ErrOrderNotFound
	})
}

func findMall(malls []model.Mall, id string) int {
	for i, m := range malls {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// cleanNames 去空白、去空、去重，保持顺序
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
