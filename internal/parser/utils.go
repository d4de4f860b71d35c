package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

const (
	isoDate = "2006-01-02"
	// maxExcelSerial 9999-12-31
	maxExcelSerial = 2958465
)

// 支持 2024-01-05 / 2024.1.5 / 2024/01/05 / "2024. 1. 5." 以及带时间的写法
var datePattern = regexp.MustCompile(`(\d{4})\s*[.\-/]\s*(\d{1,2})\s*[.\-/]\s*(\d{1,2})`)

var amountReplacer = strings.NewReplacer(
	",", "",
	"₩", "",
	"￦", "",
	"원", "",
	"$", "",
)

// NormalizeText 规范化文本：NFC、去除所有空白、转小写。仅用于表头与商城匹配
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(s)
}

// ParseDate 解析日期为 YYYY-MM-DD，无法识别时返回 now 当天
// 数值按 Excel 序列号（1900 日期系统）解码；0 不视为空
func ParseDate(c Cell, now time.Time) string {
	fallback := now.Format(isoDate)

	switch c.Kind {
	case CellBlank:
		return fallback
	case CellNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) || c.Number > maxExcelSerial {
			return fallback
		}
		t, err := excelize.ExcelDateToTime(c.Number, false)
		if err != nil {
			return fallback
		}
		return t.Format(isoDate)
	}

	s := c.String()
	if s == "" {
		return fallback
	}
	m := datePattern.FindStringSubmatch(s)
	if len(m) < 4 {
		return fallback
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return fallback
	}
	return t.Format(isoDate)
}

// ParseAmount 解析金额为非负整数，去掉千分位与货币符号；非法输入返回 0
func ParseAmount(c Cell) int64 {
	var d decimal.Decimal

	switch c.Kind {
	case CellNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return 0
		}
		d = decimal.NewFromFloat(c.Number)
	case CellText:
		s := amountReplacer.Replace(c.Text)
		s = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
		if len(s) >= 3 && strings.EqualFold(s[:3], "krw") {
			s = s[3:]
		}
		if s == "" {
			return 0
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return 0
		}
		d = v
	default:
		return 0
	}

	n := d.Round(0).IntPart()
	if n < 0 {
		return 0
	}
	return n
}

// ParseQuantity 解析明细数量，缺失或为 0 时按 1 件计
func ParseQuantity(c Cell) int64 {
	if n := ParseAmount(c); n > 0 {
		return n
	}
	return 1
}
