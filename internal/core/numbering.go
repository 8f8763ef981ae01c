package core

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// DocumentKind identifies a numbered document series.
type DocumentKind string

const (
	KindQuote   DocumentKind = "quote"
	KindOrder   DocumentKind = "order"
	KindInvoice DocumentKind = "invoice"
)

// Prefix returns the number prefix for the series.
func (k DocumentKind) Prefix() string {
	switch k {
	case KindQuote:
		return "Q"
	case KindOrder:
		return "ORD"
	case KindInvoice:
		return "INV"
	default:
		return "DOC"
	}
}

// FormatDocumentNumber renders PREFIX-YYYY-NNN, e.g. Q-2024-001.
// Sequences past 999 simply widen.
func FormatDocumentNumber(kind DocumentKind, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%03d", kind.Prefix(), year, seq)
}

// CompareDocumentNumbers orders display numbers by prefix, year and then
// sequence value, so Q-2024-1000 sorts after Q-2024-999. Numbers that do not
// follow the PREFIX-YYYY-NNN shape fall back to plain string order.
func CompareDocumentNumbers(a, b string) int {
	pa, ya, sa, okA := splitDocumentNumber(a)
	pb, yb, sb, okB := splitDocumentNumber(b)
	if !okA || !okB {
		return strings.Compare(a, b)
	}
	if c := strings.Compare(pa, pb); c != 0 {
		return c
	}
	if c := cmp.Compare(ya, yb); c != 0 {
		return c
	}
	return cmp.Compare(sa, sb)
}

func splitDocumentNumber(n string) (prefix string, year int, seq int64, ok bool) {
	parts := strings.Split(n, "-")
	if len(parts) != 3 {
		return "", 0, 0, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, false
	}
	seq, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	return parts[0], year, seq, true
}
