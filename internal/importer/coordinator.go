package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"malldash/internal/model"
	"malldash/internal/parser"
	"malldash/internal/store"
)

var (
	// ErrEmptySelection 提交时没有选择任何订单
	ErrEmptySelection = errors.New("가져올 주문을 선택해주세요.")
	// ErrNoValidOrders 提交的订单全部不完整
	ErrNoValidOrders = errors.New("저장할 수 있는 주문이 없습니다. 날짜, 주문번호, 상품을 확인해주세요.")
)

// Coordinator 导入协调器：解码 -> 解析预览 -> 合并提交
type Coordinator struct {
	store       *store.Store
	gen         IDGenerator
	headers     parser.HeaderTable
	csvEncoding string
	logger      zerolog.Logger
	now         func() time.Time
}

// Option 协调器选项
type Option func(*Coordinator)

// WithIDGenerator 指定订单 ID 生成器
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *Coordinator) { c.gen = gen }
}

// WithHeaders 指定表头候选表
func WithHeaders(table parser.HeaderTable) Option {
	return func(c *Coordinator) { c.headers = table }
}

// WithCSVEncoding 指定 CSV 编码
func WithCSVEncoding(encoding string) Option {
	return func(c *Coordinator) { c.csvEncoding = encoding }
}

// WithLogger 指定日志
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithClock 指定时钟（日期兜底用）
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st *store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       st,
		gen:         UUIDGenerator{},
		csvEncoding: EncodingAuto,
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/warning/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// PreviewRequest 预览请求
type PreviewRequest struct {
	Filename string
	Reader   io.Reader
	Sheet    string
}

// PreviewOrder 预览中的订单
type PreviewOrder struct {
	model.Order
	OrderLevelAmount bool `json:"orderLevelAmount"`
	MallResolved     bool `json:"mallResolved"`
}

// Preview 预览结果（尚未写入存储）
type Preview struct {
	Filename              string         `json:"filename"`
	Sheet                 string         `json:"sheet"`
	Sheets                []string       `json:"sheets"`
	Layout                parser.Layout  `json:"layout"`
	DataRows              int            `json:"dataRows"`
	Warnings              []string       `json:"warnings"`
	UnknownMalls          []string       `json:"unknownMalls"`
	OrderLevelAmountCount int            `json:"orderLevelAmountCount"`
	Orders                []PreviewOrder `json:"orders"`
}

// CommitRequest 提交请求
type CommitRequest struct {
	Filename string
	Sheet    string
	Layout   parser.Layout
	Orders   []model.Order
}

// CommitResult 提交结果
type CommitResult struct {
	ImportID int64  `json:"importId"`
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`
	Invalid  int    `json:"invalid"` // 缺日期/订单号/明细而被丢弃
	Message  string `json:"message"`
}

// Preview 解码并解析文件，返回预览
func (c *Coordinator) Preview(ctx context.Context, req PreviewRequest, progress chan<- ProgressEvent) (*Preview, error) {
	filename := filepath.Base(req.Filename)
	c.sendProgress(progress, ProgressEvent{
		Type:    "start",
		Message: "파일 분석 시작",
		Data: map[string]string{
			"filename": filename,
		},
		Timestamp: time.Now(),
	})

	doc, err := Decode(filename, req.Reader, DecodeOptions{Sheet: req.Sheet, CSVEncoding: c.csvEncoding})
	if err != nil {
		c.fail(progress, "decode", err)
		return nil, err
	}

	registry, err := c.store.Malls(ctx)
	if err != nil {
		c.fail(progress, "load malls", err)
		return nil, err
	}

	res := parser.Parse(doc.Grid, registry, parser.Options{Now: c.now(), Headers: c.headers})
	for _, w := range res.Warnings {
		c.sendProgress(progress, ProgressEvent{Type: "info", Message: w, Timestamp: time.Now()})
	}

	preview := &Preview{
		Filename:              filename,
		Sheet:                 res.Sheet,
		Sheets:                doc.Sheets,
		Layout:                res.Layout,
		DataRows:              res.DataRows,
		Warnings:              res.Warnings,
		UnknownMalls:          res.UnknownMalls,
		OrderLevelAmountCount: res.OrderLevelAmountCount,
		Orders:                make([]PreviewOrder, len(res.Orders)),
	}
	for i, o := range res.Orders {
		preview.Orders[i] = PreviewOrder{
			Order:            o,
			OrderLevelAmount: o.OrderLevelAmount(),
			MallResolved:     o.MallID != "",
		}
	}

	c.logger.Info().
		Str("file", filename).
		Str("sheet", res.Sheet).
		Str("layout", string(res.Layout)).
		Int("orders", len(res.Orders)).
		Int("unknown_malls", len(res.UnknownMalls)).
		Msg("import preview")

	c.sendProgress(progress, ProgressEvent{
		Type:      "done",
		Message:   fmt.Sprintf("주문 %d건 인식", len(res.Orders)),
		Data:      preview,
		Timestamp: time.Now(),
	})
	return preview, nil
}

// Commit 合并选中的订单并持久化
func (c *Coordinator) Commit(ctx context.Context, req CommitRequest, progress chan<- ProgressEvent) (*CommitResult, error) {
	if len(req.Orders) == 0 {
		return nil, ErrEmptySelection
	}
	valid, invalid := ValidOrders(req.Orders)
	if len(valid) == 0 {
		return nil, ErrNoValidOrders
	}
	if invalid > 0 {
		c.logger.Warn().Int("invalid", invalid).Msg("dropped incomplete orders")
	}

	var merged MergeResult
	err := c.store.Update(ctx, func(col *store.Collections) error {
		merged = Merge(valid, col.Orders, c.gen)
		col.Orders = append(col.Orders, merged.Accepted...)
		return nil
	})
	if err != nil {
		c.fail(progress, "commit", err)
		return nil, fmt.Errorf("failed to save orders: %w", err)
	}

	result := &CommitResult{
		Accepted: len(merged.Accepted),
		Skipped:  merged.Skipped,
		Invalid:  invalid,
		Message:  CommitMessage(len(merged.Accepted), merged.Skipped),
	}

	id, err := c.store.RecordImport(ctx, store.ImportLog{
		Filename:     filepath.Base(req.Filename),
		SheetName:    req.Sheet,
		Layout:       string(req.Layout),
		ParsedOrders: len(req.Orders),
		Accepted:     result.Accepted,
		Skipped:      result.Skipped,
	})
	if err != nil {
		// 订单已写入，导入记录失败只告警
		c.logger.Warn().Err(err).Msg("record import failed")
		c.sendProgress(progress, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("import log not saved: %v", err),
			Timestamp: time.Now(),
		})
	}
	result.ImportID = id

	c.logger.Info().
		Str("file", req.Filename).
		Int("accepted", result.Accepted).
		Int("skipped", result.Skipped).
		Msg("import commit")

	c.sendProgress(progress, ProgressEvent{
		Type:      "done",
		Message:   result.Message,
		Data:      result,
		Timestamp: time.Now(),
	})
	return result, nil
}

// ImportFile 预览并导入全部订单（命令行使用）
func (c *Coordinator) ImportFile(ctx context.Context, req PreviewRequest, progress chan<- ProgressEvent) (*Preview, *CommitResult, error) {
	preview, err := c.Preview(ctx, req, progress)
	if err != nil {
		return nil, nil, err
	}
	if len(preview.Orders) == 0 {
		return preview, &CommitResult{Message: CommitMessage(0, 0)}, nil
	}

	orders := make([]model.Order, len(preview.Orders))
	for i, o := range preview.Orders {
		orders[i] = o.Order
	}
	result, err := c.Commit(ctx, CommitRequest{
		Filename: preview.Filename,
		Sheet:    preview.Sheet,
		Layout:   preview.Layout,
		Orders:   orders,
	}, progress)
	if err != nil {
		return preview, nil, err
	}
	return preview, result, nil
}

// ValidOrders 过滤不完整的订单：日期须为 YYYY-MM-DD，订单号非空，至少一条有商品名的明细
// 空商品名的明细被去掉，数量与金额取非负值，缺失的总数量按明细补齐。返回保留的订单与丢弃数
func ValidOrders(orders []model.Order) ([]model.Order, int) {
	out := make([]model.Order, 0, len(orders))
	dropped := 0
	for _, o := range orders {
		o.OrderNo = strings.TrimSpace(o.OrderNo)
		o.Date = strings.TrimSpace(o.Date)
		if _, err := time.Parse("2006-01-02", o.Date); err != nil || o.OrderNo == "" {
			dropped++
			continue
		}

		items := make([]model.LineItem, 0, len(o.Items))
		for _, it := range o.Items {
			it.ProductName = strings.TrimSpace(it.ProductName)
			if it.ProductName == "" {
				continue
			}
			if it.Qty <= 0 {
				it.Qty = 1
			}
			if it.Amount < 0 {
				it.Amount = 0
			}
			items = append(items, it)
		}
		if len(items) == 0 {
			dropped++
			continue
		}
		o.Items = items
		if o.TotalAmount < 0 {
			o.TotalAmount = 0
		}
		if o.TotalQty <= 0 {
			o.TotalQty = o.SumQty()
		}
		out = append(out, o)
	}
	return out, dropped
}

// CommitMessage 导入完成提示
func CommitMessage(accepted, skipped int) string {
	return fmt.Sprintf("✅ %d건 가져오기 완료 (중복 %d건 건너뜀)", accepted, skipped)
}

func (c *Coordinator) fail(progress chan<- ProgressEvent, phase string, err error) {
	c.logger.Error().Err(err).Str("phase", phase).Msg("import failed")
	c.sendProgress(progress, ProgressEvent{
		Type:      "error",
		Message:   err.Error(),
		Timestamp: time.Now(),
	})
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan<- ProgressEvent, event ProgressEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
