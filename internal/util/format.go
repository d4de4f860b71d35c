package util

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var krwPrinter = message.NewPrinter(language.Korean)

// FormatKRW 韩元金额（千分位），如 ₩12,345
func FormatKRW(amount int64) string {
	if amount < 0 {
		return krwPrinter.Sprintf("-₩%d", -amount)
	}
	return krwPrinter.Sprintf("₩%d", amount)
}

// FormatCount 数量（千分位）
func FormatCount(n int64) string {
	return krwPrinter.Sprintf("%d", n)
}
