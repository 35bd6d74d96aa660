package repo

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// render inlines bound values into the statement text for diagnostics.
// The output is for human eyes only and never executed.
func render(c Compiled) string {
	sql := c.SQL
	// replace highest placeholders first so $1 never matches inside $10
	for i := len(c.Args); i >= 1; i-- {
		sql = strings.ReplaceAll(sql, "$"+strconv.Itoa(i), literal(c.Args[i-1]))
	}
	return sql
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return quote(x.UTC().Format(time.RFC3339))
	case []string:
		parts := make([]string, len(x))
		for i, s := range x {
			parts[i] = quote(s)
		}
		return "ARRAY[" + strings.Join(parts, ",") + "]"
	case []int:
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n)
		}
		return "ARRAY[" + strings.Join(parts, ",") + "]"
	default:
		return quote(fmt.Sprintf("%v", x))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
