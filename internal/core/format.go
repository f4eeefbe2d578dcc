package core

import (
	"fmt"
	"strconv"
	"strings"
)

// RangeDelimiter separates the two dates in a backend date_range string.
const RangeDelimiter = "—"

// noRange is the backend sentinel for an empty dataset's date range.
const noRange = "-"

// FormatINR renders a money value as Indian Rupees with the Indian digit
// grouping convention and exactly two fraction digits, e.g. ₹12,34,567.89.
// The zero value renders as ₹0.00.
func FormatINR(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := "₹" + groupIndian(cents/100) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// groupIndian inserts commas per the Indian numbering system: the last
// three digits form one group, every two digits before that another.
func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(groups, ",") + "," + tail
}

// FormatDisplayDate renders an ISO date as "DD Mon, YYYY" (e.g. "05 Jan, 2024").
// Empty input yields empty output; unparseable input is returned unchanged.
func FormatDisplayDate(iso string) string {
	if strings.TrimSpace(iso) == "" {
		return ""
	}
	t, err := ParseDate(iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan, 2006")
}

// FormatRange formats a backend date_range string ("<start> — <end>") for
// display. The "no range" sentinel and anything that does not split into
// exactly two parts are returned unchanged.
func FormatRange(s string) string {
	if s == "" || s == noRange {
		return s
	}
	parts := strings.Split(s, RangeDelimiter)
	if len(parts) != 2 {
		return s
	}
	from := FormatDisplayDate(strings.TrimSpace(parts[0]))
	to := FormatDisplayDate(strings.TrimSpace(parts[1]))
	return from + " " + RangeDelimiter + " " + to
}
