package mtest

import (
	"fmt"
	"io"
	"strings"
)

const rule = "========================================="

// Print writes the memory manager report followed by the allocation lists.
// It does not modify any state.
func (h *Harness) Print(w io.Writer) error {
	if err := h.checkReady(); err != nil {
		return err
	}
	if err := h.alloc.Print(w); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "=             class MemTest             =")
	fmt.Fprintln(&b, rule)
	writeList(&b, "Object list", h.objs, false)
	writeList(&b, "Array list", h.arrs, true)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, recs []record, arrays bool) {
	fmt.Fprintf(b, "%s --- (%d)\n", title, len(recs))
	for i, rec := range recs {
		if arrays {
			fmt.Fprintf(b, "[%3d] %-8s x%-6d", i, rec.ref, rec.n)
		} else {
			fmt.Fprintf(b, "[%3d] %-8s ", i, rec.ref)
		}
		if i%5 == 4 || i == len(recs)-1 {
			b.WriteByte('\n')
		}
	}
}
