package layout

// 跨页拆分。只有放置循环判定“放不下且值得拆”才会进入这里：
// measurement.Splittable 为真且剩余高度超过该类型的最小可拆高度。
// 拆不出合法断点时返回 ok=false，由放置循环整体搬移到下一页。
//
// 各策略的守恒性质：
//   paragraph/component —— 按块重组，重测后高度严格守恒；
//   line —— 每个部分重复 2×codePadding 的框距；
//   row —— 续表重复一个表头行。

import (
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/content"
)

// minSplitHeight 返回某测量结果的最小可拆高度；不可拆类型为 +Inf。
func (e *Engine) minSplitHeight(m Measurement, st content.Style) float64 {
	switch m.Strategy {
	case StrategyParagraph, StrategyComponent:
		return float64(e.geo.OrphanControl) * st.FontSize * st.LineHeight
	case StrategyLine:
		return float64(e.geo.OrphanControl)*st.FontSize*codeLineFactor + 2*codePadding
	case StrategyRow:
		if m.Structure != nil && m.Structure.Table != nil {
			t := m.Structure.Table
			return float64(t.HeaderRows+2) * t.RowHeight
		}
		return math.Inf(1)
	default:
		return math.Inf(1)
	}
}

// splitElement 按策略把元素拆成 当前页部分 + 余下部分。
// root 是拆分链的源元素标识，part 是当前页部分的 1 基序号。
func (e *Engine) splitElement(el content.Element, m Measurement, avail float64, root string, part int) (first, rest content.Element, ok bool) {
	if m.Structure == nil {
		return nil, nil, false
	}
	st := e.resolveStyle(el)
	switch v := el.(type) {
	case *content.Text:
		return e.splitText(v, m, st, avail, root, part)
	case *content.Markdown:
		return e.splitMarkdown(v, m, st, avail, root, part)
	case *content.Code:
		return e.splitCode(v, m, st, avail, root, part)
	case *content.Table:
		return e.splitTable(v, m, avail, root, part)
	default:
		return nil, nil, false
	}
}

// accumulateBlocks 在预算内聚集原子块并满足孤行/寡行约束。
// 预算 = 剩余高度 - 寡行预留；首部行数不足孤行下限时放弃拆分；
// 余部行数不足寡行下限时逐块回退（参照分页器的常规处理）。
func accumulateBlocks(heights []float64, lines []int, avail, reserve float64, orphans, widows int) (int, bool) {
	total := 0
	for _, n := range lines {
		total += n
	}
	budget := avail - reserve

	take := 0
	used := 0.0
	for i := range heights {
		if used+heights[i] > budget+heightEpsilon {
			break
		}
		used += heights[i]
		take = i + 1
	}
	if take == 0 || take == len(heights) {
		return 0, false
	}

	taken := 0
	for _, n := range lines[:take] {
		taken += n
	}
	for take > 0 && total-taken < widows {
		take--
		if take > 0 {
			taken -= lines[take]
		}
	}
	if take == 0 || take == len(heights) {
		return 0, false
	}
	taken = 0
	for _, n := range lines[:take] {
		taken += n
	}
	if taken < orphans {
		return 0, false
	}
	return take, true
}

// continuationID 生成延续部分的稳定标识：源标识 + "#" + 部分序号。
func continuationID(root string, part int) string {
	if part <= 1 {
		return root
	}
	return root + "#" + strconv.Itoa(part)
}

// splitTags 构造首部与余部的拆分标记。TotalParts 由放置循环在拆分链
// 结束时统一回填，这里先置 0。
func splitTags(part int) (*content.SplitInfo, *content.SplitInfo) {
	return &content.SplitInfo{Part: part, Continued: true, Continuation: part > 1},
		&content.SplitInfo{Part: part + 1, Continuation: true}
}

// splitText 在段落边界拆分文本。
func (e *Engine) splitText(el *content.Text, m Measurement, st content.Style, avail float64, root string, part int) (content.Element, content.Element, bool) {
	ts := m.Structure.Text
	if ts == nil || len(ts.Paragraphs) < 2 {
		return nil, nil, false
	}
	heights := make([]float64, len(ts.Paragraphs))
	lines := make([]int, len(ts.Paragraphs))
	texts := make([]string, len(ts.Paragraphs))
	for i, p := range ts.Paragraphs {
		heights[i] = p.Height
		lines[i] = p.Lines
		texts[i] = p.Text
	}
	lineH := st.FontSize * st.LineHeight
	reserve := float64(e.geo.WidowControl) * lineH
	take, ok := accumulateBlocks(heights, lines, avail, reserve, e.geo.OrphanControl, e.geo.WidowControl)
	if !ok {
		return nil, nil, false
	}
	firstTag, restTag := splitTags(part)
	first := &content.Text{
		ID:    continuationID(root, part),
		Body:  strings.Join(texts[:take], "\n\n"),
		Style: el.Style.Clone(),
		Split: firstTag,
	}
	rest := &content.Text{
		ID:    continuationID(root, part+1),
		Body:  strings.Join(texts[take:], "\n\n"),
		Style: el.Style.Clone(),
		Split: restTag,
	}
	return first, rest, true
}

// splitMarkdown 在组件边界拆分，组件本身是原子单位。
// 余部由组件重组：标题还原 # 前缀，代码还原围栏，重扫描后结构不变。
func (e *Engine) splitMarkdown(el *content.Markdown, m Measurement, st content.Style, avail float64, root string, part int) (content.Element, content.Element, bool) {
	ms := m.Structure.Markdown
	if ms == nil || len(ms.Components) < 2 {
		return nil, nil, false
	}
	heights := make([]float64, len(ms.Components))
	lines := make([]int, len(ms.Components))
	for i, c := range ms.Components {
		heights[i] = c.Height
		lines[i] = c.Lines
	}
	lineH := st.FontSize * st.LineHeight
	reserve := float64(e.geo.WidowControl) * lineH
	take, ok := accumulateBlocks(heights, lines, avail, reserve, e.geo.OrphanControl, e.geo.WidowControl)
	if !ok {
		return nil, nil, false
	}
	firstTag, restTag := splitTags(part)
	first := &content.Markdown{
		ID:    continuationID(root, part),
		Body:  assembleComponents(ms.Components[:take]),
		Style: el.Style.Clone(),
		Split: firstTag,
	}
	rest := &content.Markdown{
		ID:    continuationID(root, part+1),
		Body:  assembleComponents(ms.Components[take:]),
		Style: el.Style.Clone(),
		Split: restTag,
	}
	return first, rest, true
}

// assembleComponents 把组件序列还原为 markdown 文本。
func assembleComponents(comps []ComponentBlock) string {
	parts := make([]string, 0, len(comps))
	for _, c := range comps {
		switch c.Kind {
		case componentHeading:
			parts = append(parts, strings.Repeat("#", c.Level)+" "+c.Text)
		case componentCode:
			parts = append(parts, "```\n"+c.Text+"\n```")
		default:
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// splitCode 在原始行边界拆分：累计各行折行数直到填满可用行数。
// 可用行数不足孤行下限时整体搬移。
func (e *Engine) splitCode(el *content.Code, m Measurement, st content.Style, avail float64, root string, part int) (content.Element, content.Element, bool) {
	cs := m.Structure.Code
	if cs == nil || cs.RawLines < 2 {
		return nil, nil, false
	}
	lineH := st.FontSize * codeLineFactor
	availLines := int((avail - 2*codePadding) / lineH)
	if availLines < e.geo.OrphanControl {
		return nil, nil, false
	}
	take := 0
	used := 0
	for i, w := range cs.Wraps {
		if used+w > availLines {
			break
		}
		used += w
		take = i + 1
	}
	if take == 0 || take == cs.RawLines {
		return nil, nil, false
	}
	raw := strings.Split(strings.TrimSuffix(el.Body, "\n"), "\n")
	firstTag, restTag := splitTags(part)
	first := &content.Code{
		ID:       continuationID(root, part),
		Body:     strings.Join(raw[:take], "\n"),
		Language: el.Language,
		Style:    el.Style.Clone(),
		Split:    firstTag,
	}
	rest := &content.Code{
		ID:       continuationID(root, part+1),
		Body:     strings.Join(raw[take:], "\n"),
		Language: el.Language,
		Style:    el.Style.Clone(),
		Split:    restTag,
	}
	return first, rest, true
}

// splitTable 在行边界拆分：首部 = 表头 + 至少 2 个数据行，
// 续表重复表头且至少带 1 个数据行。
func (e *Engine) splitTable(el *content.Table, m Measurement, avail float64, root string, part int) (content.Element, content.Element, bool) {
	ts := m.Structure.Table
	if ts == nil || ts.Rows < 3 {
		return nil, nil, false
	}
	maxRows := int(avail/ts.RowHeight) - ts.HeaderRows
	if maxRows < 2 {
		return nil, nil, false
	}
	take := maxRows
	if take > ts.Rows-1 {
		take = ts.Rows - 1
	}
	headers := append([]string(nil), el.Headers...)
	firstTag, restTag := splitTags(part)
	first := &content.Table{
		ID:      continuationID(root, part),
		Headers: headers,
		Rows:    cloneRows(el.Rows[:take]),
		Style:   el.Style.Clone(),
		Split:   firstTag,
	}
	rest := &content.Table{
		ID:      continuationID(root, part+1),
		Headers: append([]string(nil), el.Headers...),
		Rows:    cloneRows(el.Rows[take:]),
		Style:   el.Style.Clone(),
		Split:   restTag,
	}
	return first, rest, true
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
