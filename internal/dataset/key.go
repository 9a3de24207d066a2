package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NormalizeKey converts a key cell to its canonical text form.
// Integer-valued numeric text ("1", "1.0", "1e0") becomes the plain
// integer ("1"); any other text is kept trimmed but otherwise verbatim.
// An empty cell stays empty and means the key is missing.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// KeyOf normalizes a typed value the same way NormalizeKey normalizes text.
func KeyOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return NormalizeKey(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return NormalizeKey(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return NormalizeKey(fmt.Sprint(x))
	}
}
