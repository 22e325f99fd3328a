// internal/client/query.go
package client

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// QueryParam is one key of a query-string parameter bag. A slice keeps
// emission in caller order, which Go maps would not.
type QueryParam struct {
	Key   string
	Value any
}

// BuildQuery serializes params into a leading-"?" query string, or ""
// when nothing remains. Nil values and empty/whitespace-only strings
// are dropped. Slice values emit one repeated key=element pair per
// element in order, skipping nil elements; the backend parses arrays
// exclusively from repeated keys.
func BuildQuery(params []QueryParam) string {
	var b strings.Builder
	appendPair := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}

	for _, p := range params {
		switch v := p.Value.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			appendPair(p.Key, v)
		case []string:
			for _, x := range v {
				appendPair(p.Key, x)
			}
		case []any:
			for _, x := range v {
				if x == nil {
					continue
				}
				appendPair(p.Key, stringify(x))
			}
		default:
			// Any other slice gets the same repeated-key treatment.
			if rv := reflect.ValueOf(p.Value); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
				for i := 0; i < rv.Len(); i++ {
					el := rv.Index(i)
					if el.Kind() == reflect.Interface && el.IsNil() {
						continue
					}
					appendPair(p.Key, stringify(el.Interface()))
				}
				continue
			}
			appendPair(p.Key, stringify(v))
		}
	}

	if b.Len() == 0 {
		return ""
	}
	return "?" + b.String()
}

// joinArgs flattens query arguments into a stable "|"-separated cache
// key fragment, the same way the dashboard keys its query cache.
func joinArgs(parts ...any) string {
	ss := make([]string, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case nil:
			ss = append(ss, "")
		case []string:
			ss = append(ss, strings.Join(v, ","))
		case string:
			ss = append(ss, v)
		default:
			ss = append(ss, fmt.Sprint(v))
		}
	}
	return strings.Join(ss, "|")
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}
