package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"malldash/internal/parser"
)

var (
	// ErrUnsupportedFormat 不支持的文件类型
	ErrUnsupportedFormat = errors.New("importer: unsupported file format")
	// ErrSheetNotFound 指定的 Sheet 不存在
	ErrSheetNotFound = errors.New("importer: sheet not found")
	// ErrInvalidWorkbook 文件无法作为工作簿打开（损坏或并非 xlsx）
	ErrInvalidWorkbook = errors.New("importer: invalid workbook")
)

// CSV 编码
const (
	EncodingAuto  = "auto"
	EncodingUTF8  = "utf-8"
	EncodingEUCKR = "euc-kr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeOptions 解码选项
type DecodeOptions struct {
	Sheet       string // 为空取第一个 Sheet
	CSVEncoding string // auto / utf-8 / euc-kr
}

// Document 解码后的文档：选中 Sheet 的表格以及全部 Sheet 名
type Document struct {
	Grid   parser.Grid
	Sheets []string
}

// Decode 按扩展名解码上传文件
func Decode(filename string, r io.Reader, opts DecodeOptions) (*Document, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
		}
		defer f.Close()

		grid, err := readSheet(f, opts.Sheet)
		if err != nil {
			return nil, err
		}
		return &Document{Grid: grid, Sheets: f.GetSheetList()}, nil
	case ".csv":
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		grid, err := DecodeCSV(r, name, opts.CSVEncoding)
		if err != nil {
			return nil, err
		}
		return &Document{Grid: grid, Sheets: []string{name}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ListSheets 列出工作簿中的 Sheet
func ListSheets(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// DecodeXLSX 读取工作簿中的一个 Sheet
func DecodeXLSX(r io.Reader, sheet string) (parser.Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return parser.Grid{}, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (parser.Grid, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return parser.Grid{}, ErrSheetNotFound
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !containsSheet(sheets, sheet) {
		return parser.Grid{}, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	// RawCellValue 保留日期序列号，不套用数字格式
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return parser.Grid{}, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	grid := parser.Grid{Sheet: sheet, Rows: make([][]parser.Cell, len(rows))}
	for r, row := range rows {
		cells := make([]parser.Cell, len(row))
		for c, raw := range row {
			cells[c] = typedCell(f, sheet, r, c, raw)
		}
		grid.Rows[r] = cells
	}
	return grid, nil
}

// typedCell 按单元格类型还原数值
func typedCell(f *excelize.File, sheet string, row, col int, raw string) parser.Cell {
	if raw == "" {
		return parser.Cell{}
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return parser.TextCell(raw)
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return parser.TextCell(raw)
	}
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset:
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return parser.NumberCell(v)
		}
	}
	return parser.TextCell(raw)
}

func containsSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}

// DecodeCSV 读取 CSV；auto 模式下非 UTF-8 内容按 EUC-KR 解码
func DecodeCSV(r io.Reader, name string, encoding string) (parser.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return parser.Grid{}, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	switch strings.ToLower(encoding) {
	case EncodingEUCKR:
		data, err = decodeEUCKR(data)
	case EncodingUTF8:
	default:
		if !utf8.Valid(data) {
			data, err = decodeEUCKR(data)
		}
	}
	if err != nil {
		return parser.Grid{}, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return parser.Grid{}, fmt.Errorf("failed to parse csv: %w", err)
	}

	grid := parser.Grid{Sheet: name, Rows: make([][]parser.Cell, len(records))}
	for i, rec := range records {
		cells := make([]parser.Cell, len(rec))
		for j, v := range rec {
			cells[j] = csvCell(v)
		}
		grid.Rows[i] = cells
	}
	return grid, nil
}

// csvCell 规范写法的数字按数值处理（与 xlsx 一致，日期序列号可被识别）
// "007"、"1,000"、"1e3" 这类写法保留为文本，String() 与原文一致
func csvCell(v string) parser.Cell {
	s := strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		if strconv.FormatFloat(f, 'f', -1, 64) == s {
			return parser.NumberCell(f)
		}
	}
	return parser.TextCell(v)
}

func decodeEUCKR(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode euc-kr: %w", err)
	}
	return out, nil
}
