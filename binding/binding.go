package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$?\$\{([^}]*)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的对应值。
// 路径支持点号与下标，如 ${user.tags[0]}；${path|fallback} 在路径
// 无法解析时输出 fallback 文本；$${...} 为转义形式，原样输出 ${...}。
// data 为 nil 或路径不存在且未给 fallback 时，保留原占位符。
func Interpolate(text string, data any) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		if strings.HasPrefix(match, "$$") {
			return match[1:]
		}
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		expr := strings.TrimSpace(groups[1])
		path := expr
		fallback := ""
		hasFallback := false
		if i := strings.IndexByte(expr, '|'); i != -1 {
			path = strings.TrimSpace(expr[:i])
			fallback = strings.TrimSpace(expr[i+1:])
			hasFallback = true
		}
		if path == "" {
			if hasFallback {
				return fallback
			}
			return match
		}
		if data != nil {
			if val, ok := resolvePath(data, path); ok {
				return fmt.Sprint(val)
			}
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]interface{}:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []interface{}:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
