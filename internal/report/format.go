// Package report formats sizes and counts for operator-facing output.
package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Bytes renders n as an IEC size, e.g. "64 KiB". Sizes below 1 KiB are exact.
func Bytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// Count renders n with thousands separators, e.g. "65,536".
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}

// BytesExact renders both the exact and the humanized size, e.g.
// "65,536 Bytes (64 KiB)".
func BytesExact(n int64) string {
	if n < 1024 && n > -1024 {
		return fmt.Sprintf("%s Bytes", Count(n))
	}
	return fmt.Sprintf("%s Bytes (%s)", Count(n), Bytes(n))
}
