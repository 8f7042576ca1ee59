package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/folio/content"
)

// fullWord 返回恰好占满一行的单词（内置估算度量下 cpl=36）。
func fullWord() string { return strings.Repeat("a", 36) }

// paraOfLines 构造恰好 n 行的段落：每个整行单词独占一行。
func paraOfLines(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fullWord()
	}
	return strings.Join(words, " ")
}

// TestAccumulateBlocks 钉住块聚集的预算与孤寡约束。
func TestAccumulateBlocks(t *testing.T) {
	// 常规：预算 110 容纳 3 块。
	take, ok := accumulateBlocks(
		[]float64{30, 30, 30, 30}, []int{3, 3, 3, 3}, 130, 20, 2, 2)
	if !ok || take != 3 {
		t.Fatalf("期望 take=3，实际 take=%d ok=%v", take, ok)
	}

	// 寡行回退：取 2 块后余 1 行，回退到 1 块。
	take, ok = accumulateBlocks(
		[]float64{30, 30, 30}, []int{3, 3, 1}, 70, 0, 2, 2)
	if !ok || take != 1 {
		t.Fatalf("寡行回退期望 take=1，实际 take=%d ok=%v", take, ok)
	}

	// 孤行不足：首部只有 1 行。
	if _, ok = accumulateBlocks([]float64{14, 70}, []int{1, 5}, 30, 0, 2, 2); ok {
		t.Fatalf("孤行不足应放弃拆分")
	}

	// 首块放不下。
	if _, ok = accumulateBlocks([]float64{50, 50}, []int{3, 3}, 30, 0, 2, 2); ok {
		t.Fatalf("首块超预算应放弃拆分")
	}

	// 全部放得下：拆分没有意义。
	if _, ok = accumulateBlocks([]float64{20, 20}, []int{3, 3}, 100, 0, 2, 2); ok {
		t.Fatalf("整体可容纳时应放弃拆分")
	}

	// 寡行回退穿底。
	if _, ok = accumulateBlocks([]float64{30, 30}, []int{3, 1}, 40, 0, 2, 2); ok {
		t.Fatalf("回退到 0 块应放弃拆分")
	}
}

// TestContinuationID 验证拆分链的标识派生。
func TestContinuationID(t *testing.T) {
	if got := continuationID("doc", 1); got != "doc" {
		t.Fatalf("第 1 部分应保留源标识，实际 %q", got)
	}
	if got := continuationID("doc", 2); got != "doc#2" {
		t.Fatalf("期望 doc#2，实际 %q", got)
	}
	if got := continuationID("doc", 5); got != "doc#5" {
		t.Fatalf("期望 doc#5，实际 %q", got)
	}
}

// TestSplitTags 验证首部与余部的标记语义。
func TestSplitTags(t *testing.T) {
	first, rest := splitTags(1)
	if first.Part != 1 || !first.Continued || first.Continuation {
		t.Fatalf("首部标记错误: %+v", first)
	}
	if rest.Part != 2 || rest.Continued || !rest.Continuation {
		t.Fatalf("余部标记错误: %+v", rest)
	}

	first, rest = splitTags(3)
	if first.Part != 3 || !first.Continued || !first.Continuation {
		t.Fatalf("中段首部标记错误: %+v", first)
	}
	if rest.Part != 4 {
		t.Fatalf("中段余部序号期望 4，实际 %d", rest.Part)
	}
}

// TestMinSplitHeight 验证各策略的最小可拆高度。
func TestMinSplitHeight(t *testing.T) {
	e := newTestEngine(t, Options{})
	st := content.Style{FontFamily: "Test", FontSize: 10, LineHeight: 1.0}

	m := mustMeasure(t, e, &content.Text{Body: paraOfLines(3)})
	if got := e.minSplitHeight(m, st); !approx(got, 20) { // 2 行正文
		t.Fatalf("段落策略期望 20，实际 %g", got)
	}

	m = mustMeasure(t, e, &content.Code{Body: "a\nb\nc"})
	if got := e.minSplitHeight(m, st); !approx(got, 40) { // 2×12 + 16
		t.Fatalf("行策略期望 40，实际 %g", got)
	}

	m = mustMeasure(t, e, &content.Table{Headers: []string{"h"}, Rows: [][]string{{"a"}, {"b"}, {"c"}}})
	if got := e.minSplitHeight(m, st); !approx(got, 69) { // (1+2)×23
		t.Fatalf("行组策略期望 69，实际 %g", got)
	}

	m = mustMeasure(t, e, &content.Image{URL: "x.png"})
	if got := e.minSplitHeight(m, st); !math.IsInf(got, 1) {
		t.Fatalf("不可拆类型期望 +Inf，实际 %g", got)
	}
}

// TestSplitTextConservation 验证段落边界拆分与高度守恒：
// 首部与余部重测高度之和等于整体高度。
func TestSplitTextConservation(t *testing.T) {
	e := newTestEngine(t, Options{})
	paras := []string{paraOfLines(3), paraOfLines(3), paraOfLines(3), paraOfLines(3)}
	el := &content.Text{Body: strings.Join(paras, "\n\n")}

	whole := mustMeasure(t, e, el)
	if !approx(whole.Height, 136) { // 4 段 × (3×10 + 4)
		t.Fatalf("整体高度期望 136，实际 %g", whole.Height)
	}

	first, rest, ok := e.splitElement(el, whole, 80, "doc", 1)
	if !ok {
		t.Fatalf("拆分应成功")
	}
	ft := first.(*content.Text)
	rt := rest.(*content.Text)
	if ft.ID != "doc" || rt.ID != "doc#2" {
		t.Fatalf("拆分链标识错误: %q / %q", ft.ID, rt.ID)
	}
	if ft.Body != paras[0] {
		t.Fatalf("首部应恰好是第一段")
	}
	if rt.Body != strings.Join(paras[1:], "\n\n") {
		t.Fatalf("余部应由剩余段落以空行重组")
	}
	if ft.Split == nil || !ft.Split.Continued || ft.Split.Part != 1 {
		t.Fatalf("首部标记错误: %+v", ft.Split)
	}
	if rt.Split == nil || !rt.Split.Continuation || rt.Split.Part != 2 {
		t.Fatalf("余部标记错误: %+v", rt.Split)
	}

	mf := mustMeasure(t, e, ft)
	mr := mustMeasure(t, e, rt)
	if !approx(mf.Height+mr.Height, whole.Height) {
		t.Fatalf("高度不守恒: %g + %g != %g", mf.Height, mr.Height, whole.Height)
	}
}

// TestSplitTextRefused 验证约束不满足时整体搬移（ok=false）。
func TestSplitTextRefused(t *testing.T) {
	e := newTestEngine(t, Options{})

	// 单段落没有段落级断点。
	el := &content.Text{Body: paraOfLines(5)}
	m := mustMeasure(t, e, el)
	if _, _, ok := e.splitElement(el, m, 40, "x", 1); ok {
		t.Fatalf("单段落不应在段落策略下拆分")
	}

	// 可用高度连首段加寡行预留都放不下。
	el = &content.Text{Body: paraOfLines(3) + "\n\n" + paraOfLines(3)}
	m = mustMeasure(t, e, el)
	if _, _, ok := e.splitElement(el, m, 30, "x", 1); ok {
		t.Fatalf("预算不足时应放弃拆分")
	}
}

// TestSplitMarkdownConservation 验证组件边界拆分与重组后的守恒。
func TestSplitMarkdownConservation(t *testing.T) {
	e := newTestEngine(t, Options{})
	body := "# Title\n\n" + paraOfLines(2) + "\n\n" + paraOfLines(2)
	el := &content.Markdown{Body: body}

	whole := mustMeasure(t, e, el)
	if !approx(whole.Height, 70) { // 22 + 24 + 24
		t.Fatalf("整体高度期望 70，实际 %g", whole.Height)
	}

	first, rest, ok := e.splitElement(el, whole, 70, "md", 1)
	if !ok {
		t.Fatalf("拆分应成功")
	}
	fm := first.(*content.Markdown)
	rm := rest.(*content.Markdown)
	if !strings.HasPrefix(fm.Body, "# Title") {
		t.Fatalf("标题前缀应在重组时还原: %q", fm.Body)
	}
	if fm.ID != "md" || rm.ID != "md#2" {
		t.Fatalf("拆分链标识错误: %q / %q", fm.ID, rm.ID)
	}

	mf := mustMeasure(t, e, fm)
	mr := mustMeasure(t, e, rm)
	if !approx(mf.Height+mr.Height, whole.Height) {
		t.Fatalf("高度不守恒: %g + %g != %g", mf.Height, mr.Height, whole.Height)
	}
}

// TestAssembleComponents 验证组件到 markdown 文本的还原规则。
func TestAssembleComponents(t *testing.T) {
	comps := []ComponentBlock{
		{Kind: componentHeading, Level: 2, Text: "T"},
		{Kind: componentCode, Text: "x := 1"},
		{Kind: componentText, Text: "tail"},
	}
	want := "## T\n\n```\nx := 1\n```\n\ntail"
	if got := assembleComponents(comps); got != want {
		t.Fatalf("重组结果期望 %q，实际 %q", want, got)
	}

	// 重组后的文本重扫描得到相同组件序列。
	rescanned := scanComponents(assembleComponents(comps))
	if len(rescanned) != 3 || rescanned[0].kind != componentHeading ||
		rescanned[1].kind != componentCode || rescanned[2].kind != componentText {
		t.Fatalf("重扫描组件序列不一致: %+v", rescanned)
	}
	if rescanned[1].text != "x := 1" {
		t.Fatalf("代码组件正文不一致: %q", rescanned[1].text)
	}
}

// TestSplitCode 验证行边界拆分；每个部分重复一次框距是已知的非守恒项。
func TestSplitCode(t *testing.T) {
	e := newTestEngine(t, Options{})
	el := &content.Code{Body: "l1\nl2\nl3\nl4\nl5\nl6", Language: "go"}

	whole := mustMeasure(t, e, el)
	if !approx(whole.Height, 88) { // 6×12 + 16
		t.Fatalf("整体高度期望 88，实际 %g", whole.Height)
	}

	first, rest, ok := e.splitElement(el, whole, 60, "code", 1)
	if !ok {
		t.Fatalf("拆分应成功")
	}
	fc := first.(*content.Code)
	rc := rest.(*content.Code)
	if fc.Body != "l1\nl2\nl3" || rc.Body != "l4\nl5\nl6" {
		t.Fatalf("行分配错误: %q / %q", fc.Body, rc.Body)
	}
	if fc.Language != "go" || rc.Language != "go" {
		t.Fatalf("语言标注应随两部分保留")
	}

	mf := mustMeasure(t, e, fc)
	mr := mustMeasure(t, e, rc)
	// 52 + 52 = 104 = 88 + 16：多出的一份上下内边距。
	if !approx(mf.Height+mr.Height, whole.Height+2*codePadding) {
		t.Fatalf("框距重复量不符: %g + %g vs %g", mf.Height, mr.Height, whole.Height)
	}

	// 可用行数低于孤行下限时放弃。
	if _, _, ok := e.splitElement(el, whole, 30, "code", 1); ok {
		t.Fatalf("可用行数不足时应放弃拆分")
	}
}

// TestSplitTable 验证行边界拆分与续表重复表头。
func TestSplitTable(t *testing.T) {
	e := newTestEngine(t, Options{})
	el := &content.Table{
		Headers: []string{"H1", "H2"},
		Rows: [][]string{
			{"r1", "x"}, {"r2", "x"}, {"r3", "x"}, {"r4", "x"}, {"r5", "x"},
		},
	}

	whole := mustMeasure(t, e, el)
	if !approx(whole.Height, 138) { // (1+5)×23
		t.Fatalf("整体高度期望 138，实际 %g", whole.Height)
	}

	first, rest, ok := e.splitElement(el, whole, 100, "tbl", 1)
	if !ok {
		t.Fatalf("拆分应成功")
	}
	ft := first.(*content.Table)
	rt := rest.(*content.Table)
	if len(ft.Rows) != 3 || len(rt.Rows) != 2 {
		t.Fatalf("行分配期望 3/2，实际 %d/%d", len(ft.Rows), len(rt.Rows))
	}
	if len(rt.Headers) != 2 || rt.Headers[0] != "H1" {
		t.Fatalf("续表应重复表头: %+v", rt.Headers)
	}
	if ft.Rows[2][0] != "r3" || rt.Rows[0][0] != "r4" {
		t.Fatalf("行顺序错乱: %+v / %+v", ft.Rows, rt.Rows)
	}

	mf := mustMeasure(t, e, ft)
	mr := mustMeasure(t, e, rt)
	// 92 + 69 = 161 = 138 + 23：续表多出一个表头行。
	if !approx(mf.Height+mr.Height, whole.Height+23) {
		t.Fatalf("表头重复量不符: %g + %g vs %g", mf.Height, mr.Height, whole.Height)
	}

	// 首部放不下 表头+2 行时放弃。
	if _, _, ok := e.splitElement(el, whole, 60, "tbl", 1); ok {
		t.Fatalf("首部容量不足时应放弃拆分")
	}
}

// TestSplitImageRefused 验证不可拆类型直接拒绝。
func TestSplitImageRefused(t *testing.T) {
	e := newTestEngine(t, Options{})
	el := &content.Image{URL: "big.png", Width: 100, Height: 500}
	m := mustMeasure(t, e, el)
	if _, _, ok := e.splitElement(el, m, 100, "img", 1); ok {
		t.Fatalf("图片不应可拆分")
	}
}
