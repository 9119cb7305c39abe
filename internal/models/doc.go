package models

import (
	"strconv"
	"strings"
	"time"
)

// Field readers shared by the FromDocument constructors. Documents come out
// of the store with JSON-shaped values, so numbers may still be float64 and
// dates may still be strings.

func docInt(doc map[string]any, key string) int {
	switch v := doc[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

func docString(doc map[string]any, key string) string {
	if s, ok := doc[key].(string); ok {
		return s
	}
	return ""
}

func docBool(doc map[string]any, key string) bool {
	if b, ok := doc[key].(bool); ok {
		return b
	}
	return false
}

func docTime(doc map[string]any, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
