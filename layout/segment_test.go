package layout

import (
	"math"
	"testing"
)

// TestExtractMathSegments 验证四种定界符的识别与货币启发式的回退。
func TestExtractMathSegments(t *testing.T) {
	cases := []struct {
		in      string
		plain   string
		raws    []string
		display []bool
	}{
		{"a $x$ b", "a  b", []string{"x"}, []bool{false}},
		{"$$E=mc^2$$", "", []string{"E=mc^2"}, []bool{true}},
		{`前 \[x+y\] 后`, "前  后", []string{"x+y"}, []bool{true}},
		{`见 \(y\)`, "见 ", []string{"y"}, []bool{false}},
		{"$x", "$x", nil, nil},                       // 未闭合
		{"$a\nb$", "$a\nb$", nil, nil},               // 配对不跨行
		{"cost $50", "cost $50", nil, nil},           // 单个美元符
		{"$hello world$", "$hello world$", nil, nil}, // 非数学内容
		{"$$ab", "$$ab", nil, nil},                   // 未闭合的块级定界符
		{"$x$ 与 $y$", " 与 ", []string{"x", "y"}, []bool{false, false}},
	}
	for _, c := range cases {
		plain, spans := extractMathSegments(c.in)
		if plain != c.plain {
			t.Fatalf("%q 剩余文本期望 %q，实际 %q", c.in, c.plain, plain)
		}
		if len(spans) != len(c.raws) {
			t.Fatalf("%q 片段数期望 %d，实际 %d", c.in, len(c.raws), len(spans))
		}
		for i, sp := range spans {
			if sp.raw != c.raws[i] || sp.display != c.display[i] {
				t.Fatalf("%q 片段 %d 期望 (%q, %v)，实际 (%q, %v)",
					c.in, i, c.raws[i], c.display[i], sp.raw, sp.display)
			}
		}
	}
}

// TestLooksLikeMath 钉住 $...$ 内容判定的启发式边界。
func TestLooksLikeMath(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`\alpha`, true},
		{"{x}", true},
		{"x^2", true},
		{"a_i", true},
		{"x", true},   // 单字母变量
		{"xyz", true}, // 三字母以内视为变量名
		{"wxyz", false},
		{"αβ", true},
		{"5-", true}, // 运算符判定，货币区间的已知误收
		{"a+b", true},
		{"hello", false},
		{"5 and", false},
		{"", false},
		{"   ", false},
	}
	for _, c := range cases {
		if got := looksLikeMath(c.in); got != c.want {
			t.Fatalf("looksLikeMath(%q) 期望 %v，实际 %v", c.in, c.want, got)
		}
	}
}

// TestMathComplexity 验证结构因子按出现累乘。
func TestMathComplexity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"x", 1.0},
		{`\frac{a}{b}`, 1.6},
		{`\dfrac{a}{b}`, 1.6},
		{`a \over b`, 1.6},
		{"x^2", 1.3},
		{"a_i", 1.3},
		{`\begin{pmatrix} a \end{pmatrix}`, 2.0},
		{`\begin{bmatrix*} a \end{bmatrix*}`, 2.0},
		{`\int f`, 1.5},
		{`\oint f`, 1.5},
		{`\sum_{i} x_i`, 1.5 * 1.3},
		{`\prod x`, 1.5},
		{`\int x^2 \frac{a}{b}`, 1.6 * 1.3 * 1.5},
	}
	for _, c := range cases {
		if got := mathComplexity(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("mathComplexity(%q) 期望 %g，实际 %g", c.in, c.want, got)
		}
	}
}

// TestMathRows 验证显式换行计数。
func TestMathRows(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"x", 1},
		{`a \\ b`, 2},
		{`a \\ b \\ c`, 3},
	}
	for _, c := range cases {
		if got := mathRows(c.in); got != c.want {
			t.Fatalf("mathRows(%q) 期望 %d，实际 %d", c.in, c.want, got)
		}
	}
}
