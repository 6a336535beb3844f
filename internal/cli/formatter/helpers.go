package formatter

import (
	"fmt"
	"strings"
)

// Money formats an amount with thousands separators and two decimals,
// e.g. 1234567.5 -> "1,234,567.50".
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + parts[1]
	if neg {
		return "-" + out
	}
	return out
}

// Pct formats a percentage with one decimal, e.g. "35.0%".
func Pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Index formats a performance index with three decimals.
func Index(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// OptIndex formats a nullable index. nil renders as a dash: the value
// is undefined, not zero.
func OptIndex(v *float64) string {
	if v == nil {
		return "—"
	}
	return Index(*v)
}
