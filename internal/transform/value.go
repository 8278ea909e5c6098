package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders a parameter value the way it appears in a URL.
// Whole floats drop their fraction (2.0 -> "2"), true is "1" and false is "".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

// IsEmpty reports whether v is a falsy value: nil, false, zero, "" or "0".
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || x == "0"
	case bool:
		return !x
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	case float32:
		return x == 0
	default:
		return false
	}
}

// ParseValue converts a textual argument into a scalar. Only the literals
// "true" and "false" change type; everything else stays a string.
func ParseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	default:
		return s
	}
}

// toNumber reads the leading numeric part of v. "300px" is 300, "abc" is 0.
func toNumber(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return leadingNumber(strings.TrimSpace(x))
	default:
		return 0
	}
}

func leadingNumber(s string) float64 {
	end := 0
	dot := false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			end = i + 1
		case r == '.' && !dot:
			dot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}
