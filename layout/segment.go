package layout

// 数学片段提取与复杂度估算。这里只做片段级扫描，不解析 LaTeX 语义。
//
// 行内 $...$ 与货币写法天然冲突（例如 "$5-$10"），判定只靠启发式：
// 含反斜杠命令、花括号、上下标、单个短字母 token 或运算符即视为数学。
// 误判是该启发式的已知行为，由测试钉住而非悄悄修正。

import (
	"regexp"
	"strings"
	"unicode"
)

// mathSpan 是扫描阶段得到的原始片段。
type mathSpan struct {
	raw     string
	display bool
}

var matrixEnvRe = regexp.MustCompile(`\\begin\{[a-zA-Z]*matrix\*?\}`)

// extractMathSegments 从文本中剥离数学片段，返回剩余文本与片段列表。
// 识别顺序：$$...$$、\[...\]、\(...\)、受启发式保护的 $...$。
// 单个 $ 的配对不跨行，避免整段文本被误吞。
func extractMathSegments(s string) (string, []mathSpan) {
	var plain strings.Builder
	var spans []mathSpan
	i := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "$$"):
			if end := strings.Index(s[i+2:], "$$"); end >= 0 {
				spans = append(spans, mathSpan{raw: s[i+2 : i+2+end], display: true})
				i += 2 + end + 2
				continue
			}
			plain.WriteByte(s[i])
			i++
		case strings.HasPrefix(s[i:], `\[`):
			if end := strings.Index(s[i+2:], `\]`); end >= 0 {
				spans = append(spans, mathSpan{raw: s[i+2 : i+2+end], display: true})
				i += 2 + end + 2
				continue
			}
			plain.WriteByte(s[i])
			i++
		case strings.HasPrefix(s[i:], `\(`):
			if end := strings.Index(s[i+2:], `\)`); end >= 0 {
				spans = append(spans, mathSpan{raw: s[i+2 : i+2+end], display: false})
				i += 2 + end + 2
				continue
			}
			plain.WriteByte(s[i])
			i++
		case s[i] == '$':
			if end := closingDollar(s[i+1:]); end >= 0 {
				inner := s[i+1 : i+1+end]
				if looksLikeMath(inner) {
					spans = append(spans, mathSpan{raw: inner, display: false})
					i += 1 + end + 1
					continue
				}
			}
			plain.WriteByte(s[i])
			i++
		default:
			plain.WriteByte(s[i])
			i++
		}
	}
	return plain.String(), spans
}

// closingDollar 在不跨行的前提下寻找下一个 $，找不到返回 -1。
func closingDollar(s string) int {
	for j := 0; j < len(s); j++ {
		if s[j] == '\n' {
			return -1
		}
		if s[j] == '$' {
			return j
		}
	}
	return -1
}

// looksLikeMath 判断 $...$ 内部是否像数学表达式。
func looksLikeMath(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if strings.ContainsRune(t, '\\') {
		return true
	}
	if strings.ContainsAny(t, "{}") {
		return true
	}
	if strings.ContainsAny(t, "^_") {
		return true
	}
	if isShortAlphaToken(t) {
		return true
	}
	// 粗粒度的运算符判定：这一条会把 "5-" 这样的货币区间放进来。
	if strings.ContainsAny(t, "+-=<>*/") {
		return true
	}
	return false
}

// isShortAlphaToken 识别 $x$、$xy$ 这类单个短变量名。
func isShortAlphaToken(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || len(runes) > 3 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// mathComplexity 按结构特征累乘复杂度因子：
// 分式 1.6、上下标 1.3、矩阵环境 2.0、积分/求和/连乘 1.5。
func mathComplexity(src string) float64 {
	c := 1.0
	if strings.Contains(src, `\frac`) || strings.Contains(src, `\dfrac`) || strings.Contains(src, `\over`) {
		c *= 1.6
	}
	if strings.ContainsAny(src, "^_") {
		c *= 1.3
	}
	if matrixEnvRe.MatchString(src) {
		c *= 2.0
	}
	if strings.Contains(src, `\int`) || strings.Contains(src, `\oint`) ||
		strings.Contains(src, `\sum`) || strings.Contains(src, `\prod`) {
		c *= 1.5
	}
	return c
}

// mathRows 统计显式换行 \\ 切出的行数，至少为 1。
func mathRows(src string) int {
	return strings.Count(src, `\\`) + 1
}
