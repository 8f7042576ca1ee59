package layout

// 按类型测量内容元素。测量是纯函数：相同 (类型, 内容, 解析后样式)
// 在同一几何下必然得到逐字节一致的 Measurement。
//
// 折行按平均字符宽估算每行字符数，不做真实字形排版；
// 字符数统计先做 NFC 折叠，组合字符与预组合字符因此测量一致。

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/folio/content"
)

// 测量模型常量（单位 pt，系数无量纲）。
const (
	paragraphGapFactor = 0.4   // 段落/组件尾随间距 = 0.4 × 字号
	codeCharFactor     = 0.6   // 等宽字符宽 = 0.6 × 字号
	codeLineFactor     = 1.2   // 代码行高 = 1.2 × 字号
	codePadding        = 8.0   // 代码块上下内边距
	cellPadding        = 6.0   // 表格单元格上下内边距
	tableRule          = 1.0   // 每行折算的表格线
	imageFallbackH     = 200.0 // 尺寸未知时的图片高度
	latexDisplayFactor = 1.8   // 块级公式相对行内的放大系数
)

// headingScales 是 h1..h6 相对正文字号的缩放。
var headingScales = [6]float64{1.8, 1.5, 1.3, 1.15, 1.05, 1.0}

var paragraphSplitRe = regexp.MustCompile(`\n[ \t\r]*\n`)

// Measure 测量单个元素（带缓存）。失败时返回错误，由放置循环转为告警。
func (e *Engine) Measure(el content.Element) (Measurement, error) {
	st := e.resolveStyle(el)
	fp := fingerprint(el, st)
	if m, ok := e.cache.lookup(fp); ok {
		return m, nil
	}
	m, err := e.measureElement(el, st)
	if err != nil {
		return Measurement{}, err
	}
	e.cache.store(fp, m)
	return m, nil
}

// resolveStyle 以几何默认值为底合并元素级覆盖。
func (e *Engine) resolveStyle(el content.Element) content.Style {
	base := content.Style{
		FontFamily: e.geo.FontFamily,
		FontSize:   e.geo.FontSize,
		LineHeight: e.geo.LineHeight,
	}
	return el.StyleOverride().Merge(base)
}

// fontMetrics 查询字体度量；未注入后端时退回内置估算。
func (e *Engine) fontMetrics(family string, size float64) (FontMetrics, error) {
	if e.metrics == nil {
		return estimatedMetrics(size), nil
	}
	fm, err := e.metrics.Metrics(family, size)
	if err != nil {
		return FontMetrics{}, fmt.Errorf("字体度量失败 (%s, %gpt): %w", family, size, err)
	}
	if fm.AvgCharWidth <= 0 {
		return FontMetrics{}, fmt.Errorf("字体度量无效 (%s, %gpt): 平均字符宽 %g", family, size, fm.AvgCharWidth)
	}
	return fm, nil
}

// measureElement 按具体类型分发；default 分支是 generic 路径，
// 未注册类型与外部实现都走这里且不产生告警。
func (e *Engine) measureElement(el content.Element, st content.Style) (Measurement, error) {
	switch v := el.(type) {
	case *content.Text:
		return e.measureText(v.Body, st)
	case *content.Markdown:
		return e.measureMarkdown(v.Body, st)
	case *content.Code:
		return e.measureCode(v.Body, st), nil
	case *content.Table:
		return e.measureTable(v, st), nil
	case *content.Image:
		return e.measureImage(v, st), nil
	case *content.LaTeX:
		return e.measureLaTeX(v.Source, st), nil
	default:
		return e.measureGeneric(el.Kind(), st), nil
	}
}

// measureText 按空行切段后逐段处理：先剥离段内数学片段，再对剩余文本折行。
// 段落块的 Text 保留原文（含数学），Height 含文本行、该段数学片段与尾随段距，
// 因此按段落边界重组的子集重新测量时高度严格守恒。
func (e *Engine) measureText(body string, st content.Style) (Measurement, error) {
	fm, err := e.fontMetrics(st.FontFamily, st.FontSize)
	if err != nil {
		return Measurement{}, err
	}
	cpl := charsPerLine(e.contentW, fm.AvgCharWidth)
	lineH := st.FontSize * st.LineHeight
	paraGap := st.FontSize * paragraphGapFactor

	paras := splitParagraphs(body)

	blocks := make([]ParagraphBlock, 0, len(paras))
	var segs []MathSegment
	totalLines := 0
	height := 0.0
	for _, p := range paras {
		plain, spans := extractMathSegments(p)
		lines := wrapLineCount(plain, cpl)
		h := float64(lines)*lineH + paraGap
		for _, sp := range spans {
			seg := measureMathSpan(sp, lineH)
			segs = append(segs, seg)
			h += seg.Height
		}
		blocks = append(blocks, ParagraphBlock{Text: p, Lines: lines, Height: h})
		totalLines += lines
		height += h
	}

	splittable := totalLines > 1 || len(blocks) > 1
	m := Measurement{
		Kind:       content.KindText,
		Width:      e.contentW,
		Height:     height,
		Lines:      totalLines,
		CanSplit:   splittable,
		Splittable: splittable,
		Strategy:   StrategyParagraph,
	}
	if len(blocks) > 0 {
		m.Structure = &Structure{Text: &TextStructure{Paragraphs: blocks, Segments: segs}}
	}
	return m, nil
}

// measureMathSpan 计算单个数学片段的高度贡献。
func measureMathSpan(sp mathSpan, lineH float64) MathSegment {
	c := mathComplexity(sp.raw)
	rows := mathRows(sp.raw)
	h := lineH * c * float64(rows)
	if sp.display {
		h *= latexDisplayFactor
	}
	return MathSegment{Raw: sp.raw, Display: sp.display, Complexity: c, Height: h}
}

// measureMarkdown 把正文扫描成 标题/代码/文本 组件后逐个测量。
// 组件是拆分的原子单位，各组件高度同样包含尾随间距。
func (e *Engine) measureMarkdown(body string, st content.Style) (Measurement, error) {
	comps := scanComponents(body)
	gap := st.FontSize * paragraphGapFactor

	blocks := make([]ComponentBlock, 0, len(comps))
	structure := &MarkdownStructure{}
	totalLines := 0
	height := 0.0
	for _, c := range comps {
		var block ComponentBlock
		switch c.kind {
		case componentHeading:
			hSize := st.FontSize * headingScales[c.level-1]
			fm, err := e.fontMetrics(st.FontFamily, hSize)
			if err != nil {
				return Measurement{}, err
			}
			lines := wrapLineCount(c.text, charsPerLine(e.contentW, fm.AvgCharWidth))
			block = ComponentBlock{
				Kind:   componentHeading,
				Level:  c.level,
				Text:   c.text,
				Lines:  lines,
				Height: float64(lines)*hSize*st.LineHeight + gap,
			}
			structure.HasHeadings = true
		case componentCode:
			sub := e.measureCode(c.text, st)
			block = ComponentBlock{
				Kind:   componentCode,
				Text:   c.text,
				Lines:  sub.Lines,
				Height: sub.Height + gap,
			}
			structure.HasCode = true
		default:
			sub, err := e.measureText(c.text, st)
			if err != nil {
				return Measurement{}, err
			}
			block = ComponentBlock{
				Kind:   componentText,
				Text:   c.text,
				Lines:  sub.Lines,
				Height: sub.Height,
			}
			if hasTableRow(c.text) {
				structure.HasTables = true
			}
			if hasListItem(c.text) {
				structure.HasLists = true
			}
		}
		blocks = append(blocks, block)
		totalLines += block.Lines
		height += block.Height
	}
	structure.Components = blocks

	splittable := len(blocks) > 1
	return Measurement{
		Kind:       content.KindMarkdown,
		Width:      e.contentW,
		Height:     height,
		Lines:      totalLines,
		CanSplit:   splittable,
		Splittable: splittable,
		Strategy:   StrategyComponent,
		Structure:  &Structure{Markdown: structure},
	}, nil
}

// measureCode 采用等宽模型：字符宽 0.6 倍字号，行高 1.2 倍字号。
// 行高不受样式行高系数影响，这是代码块的固定排版约定。
func (e *Engine) measureCode(body string, st content.Style) Measurement {
	cpl := charsPerLine(e.contentW, st.FontSize*codeCharFactor)
	raw := strings.Split(strings.TrimSuffix(body, "\n"), "\n")

	wraps := make([]int, len(raw))
	wrapped := 0
	for i, line := range raw {
		n := runeLen(line)
		w := 1
		if n > cpl {
			w = (n + cpl - 1) / cpl
		}
		wraps[i] = w
		wrapped += w
	}

	splittable := len(raw) > 1
	return Measurement{
		Kind:       content.KindCode,
		Width:      e.contentW,
		Height:     float64(wrapped)*st.FontSize*codeLineFactor + 2*codePadding,
		Lines:      wrapped,
		CanSplit:   splittable,
		Splittable: splittable,
		Strategy:   StrategyLine,
		Structure: &Structure{Code: &CodeStructure{
			RawLines:     len(raw),
			WrappedLines: wrapped,
			Wraps:        wraps,
		}},
	}
}

// measureTable 采用统一行高模型：行高 = 字号×行高系数 + 2×内边距 + 表格线。
// 表格线折算进每一行，因此只有表头的表格恰好量出一个表头行高。
func (e *Engine) measureTable(t *content.Table, st content.Style) Measurement {
	rowH := st.FontSize*st.LineHeight + 2*cellPadding + tableRule
	headerRows := 0
	if len(t.Headers) > 0 {
		headerRows = 1
	}
	rows := len(t.Rows)

	splittable := rows > 2
	return Measurement{
		Kind:       content.KindTable,
		Width:      e.contentW,
		Height:     float64(headerRows+rows) * rowH,
		Lines:      headerRows + rows,
		CanSplit:   splittable,
		Splittable: splittable,
		Strategy:   StrategyRow,
		Structure: &Structure{Table: &TableStructure{
			RowHeight:  rowH,
			HeaderRows: headerRows,
			Rows:       rows,
		}},
	}
}

// measureImage 保持纵横比：声明宽超出内容区时整体缩放；
// 尺寸未知时退回 内容区宽 × 200pt。
func (e *Engine) measureImage(img *content.Image, st content.Style) Measurement {
	w, h := img.Width, img.Height
	scaled := false
	if w > 0 && h > 0 {
		if w > e.contentW {
			h = h * e.contentW / w
			w = e.contentW
			scaled = true
		}
	} else {
		if w <= 0 || w > e.contentW {
			w = e.contentW
		}
		h = imageFallbackH
	}
	return Measurement{
		Kind:       content.KindImage,
		Width:      w,
		Height:     h,
		Lines:      0,
		CanSplit:   false,
		Splittable: false,
		Strategy:   StrategyNone,
		Structure: &Structure{Image: &ImageStructure{
			Width:       w,
			Height:      h,
			AspectRatio: w / h,
			Scaled:      scaled,
		}},
	}
}

// measureLaTeX 按块级公式测量：基准行高 × 复杂度 × 块级系数 × 显式行数。
func (e *Engine) measureLaTeX(src string, st content.Style) Measurement {
	c := mathComplexity(src)
	rows := mathRows(src)
	return Measurement{
		Kind:       content.KindLaTeX,
		Width:      e.contentW,
		Height:     st.FontSize * st.LineHeight * c * latexDisplayFactor * float64(rows),
		Lines:      rows,
		CanSplit:   false,
		Splittable: false,
		Strategy:   StrategyNone,
		Structure: &Structure{Math: &MathStructure{
			Complexity: c,
			Display:    true,
			LineBreaks: rows - 1,
		}},
	}
}

// measureGeneric 是未知类型的保底路径：单行高度，不可拆分，不产生告警。
func (e *Engine) measureGeneric(kind content.Kind, st content.Style) Measurement {
	return Measurement{
		Kind:       kind,
		Width:      e.contentW,
		Height:     st.FontSize * st.LineHeight,
		Lines:      1,
		CanSplit:   false,
		Splittable: false,
		Strategy:   StrategyNone,
	}
}

// splitParagraphs 按空行切段并剔除空白段。
func splitParagraphs(s string) []string {
	parts := paragraphSplitRe.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// charsPerLine 估算每行可容纳的字符数，至少为 1。
func charsPerLine(width, avgCharWidth float64) int {
	if avgCharWidth <= 0 {
		return 1
	}
	n := int(width / avgCharWidth)
	if n < 1 {
		return 1
	}
	return n
}

// runeLen 统计 NFC 折叠后的字符数。
func runeLen(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// wrapLineCount 贪心折行：超长单词强制按 ceil(长度/每行字符数) 切行。
// 段内的单个换行视为普通空白。
func wrapLineCount(para string, cpl int) int {
	words := strings.Fields(para)
	if len(words) == 0 {
		return 0
	}
	lines := 0
	cur := 0
	for _, w := range words {
		n := runeLen(w)
		if n > cpl {
			if cur > 0 {
				lines++
				cur = 0
			}
			lines += (n + cpl - 1) / cpl
			continue
		}
		switch {
		case cur == 0:
			cur = n
		case cur+1+n <= cpl:
			cur += 1 + n
		default:
			lines++
			cur = n
		}
	}
	if cur > 0 {
		lines++
	}
	return lines
}

const (
	componentHeading = "heading"
	componentCode    = "code"
	componentText    = "text"
)

// mdComponent 是 markdown 扫描出的原子组件。
type mdComponent struct {
	kind  string
	level int
	text  string
}

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

// scanComponents 按行扫描标题与围栏代码，余下内容归入文本段。
// 未闭合的围栏吞掉剩余全部行。不做任何语义解析。
func scanComponents(body string) []mdComponent {
	lines := strings.Split(body, "\n")
	var comps []mdComponent
	var textRun []string
	var codeRun []string
	inFence := false

	flushText := func() {
		if len(textRun) == 0 {
			return
		}
		run := strings.TrimSpace(strings.Join(textRun, "\n"))
		textRun = nil
		if run != "" {
			comps = append(comps, mdComponent{kind: componentText, text: run})
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if inFence {
			if strings.HasPrefix(trimmed, "```") {
				inFence = false
				comps = append(comps, mdComponent{kind: componentCode, text: strings.Join(codeRun, "\n")})
				codeRun = nil
				continue
			}
			codeRun = append(codeRun, line)
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			flushText()
			inFence = true
			continue
		}
		if m := headingRe.FindStringSubmatch(trimmed); m != nil {
			flushText()
			comps = append(comps, mdComponent{
				kind:  componentHeading,
				level: len(m[1]),
				text:  strings.TrimSpace(m[2]),
			})
			continue
		}
		textRun = append(textRun, line)
	}
	if inFence {
		comps = append(comps, mdComponent{kind: componentCode, text: strings.Join(codeRun, "\n")})
	}
	flushText()
	return comps
}

var listItemRe = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)

func hasListItem(s string) bool { return listItemRe.MatchString(s) }

func hasTableRow(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "|") {
			return true
		}
	}
	return false
}
