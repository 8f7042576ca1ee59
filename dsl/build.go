package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/content"
	"github.com/ByLCY/folio/layout"
)

// FontDecl 记录 fonts 段声明的一个字体资源，由调用方负责加载。
type FontDecl struct {
	Name string `json:"name"`
	Src  string `json:"src,omitempty"`
}

// Spec 是文档编译结果：元信息、页面几何、字体声明与内容元素序列，
// 可直接交给 layout 引擎分页。
type Spec struct {
	Meta     layout.DocumentMeta `json:"meta"`
	Geometry layout.Geometry     `json:"geometry"`
	Fonts    []FontDecl          `json:"fonts,omitempty"`
	Elements []content.Element   `json:"-"`
}

// Build 将解析后的文档与绑定数据编译为排版输入。
// 文本类内容中的 ${path} 占位符按 data 求值；代码与公式保持原文。
func Build(doc *Document, data any) (*Spec, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}

	spec := &Spec{
		Meta:     collectMeta(doc),
		Geometry: layout.DefaultGeometry(),
	}

	for _, section := range doc.Sections {
		switch {
		case section.Fonts != nil:
			fonts, err := collectFonts(section.Fonts)
			if err != nil {
				return nil, err
			}
			spec.Fonts = append(spec.Fonts, fonts...)
		case section.Page != nil:
			geo, err := resolveGeometry(section.Page)
			if err != nil {
				return nil, err
			}
			spec.Geometry = geo
		case section.Content != nil:
			elements, err := buildElements(section.Content.Block, data)
			if err != nil {
				return nil, err
			}
			spec.Elements = append(spec.Elements, elements...)
		}
	}
	return spec, nil
}

func collectMeta(doc *Document) layout.DocumentMeta {
	meta := layout.DocumentMeta{
		Creator: "Folio",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := strings.ToLower(stmt.Assignment.Key)
			switch key {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func collectFonts(section *FontsSection) ([]FontDecl, error) {
	if section.Block == nil {
		return nil, nil
	}
	var fonts []FontDecl
	for _, stmt := range section.Block.Statements {
		if stmt.Command == nil || stmt.Command.Name != "font" {
			continue
		}
		cmd := stmt.Command
		if len(cmd.Args) == 0 {
			return nil, fmt.Errorf("font 声明缺少名称")
		}
		decl := FontDecl{Name: cmd.Args[0].Value}
		if cmd.Block != nil {
			for _, st := range cmd.Block.Statements {
				if st.Assignment == nil {
					continue
				}
				if strings.ToLower(st.Assignment.Key) == "src" {
					decl.Src = valueToString(st.Assignment.Value)
				}
			}
		}
		fonts = append(fonts, decl)
	}
	return fonts, nil
}

// resolveGeometry 由 page 段生成页面几何：纸型预设打底，
// 行内参数（landscape/margin …）与块内赋值依次覆盖。
func resolveGeometry(section *PageSection) (layout.Geometry, error) {
	var geo layout.Geometry
	if strings.EqualFold(section.Spec.Size, "custom") {
		geo = layout.DefaultGeometry()
	} else {
		preset, ok := layout.PresetGeometry(section.Spec.Size)
		if !ok {
			return layout.Geometry{}, fmt.Errorf("暂不支持的纸张尺寸：%s", section.Spec.Size)
		}
		geo = preset
	}

	params := section.Spec.Params
	for i := 0; i < len(params); i++ {
		switch params[i].Value {
		case "landscape":
			geo.PageWidth, geo.PageHeight = geo.PageHeight, geo.PageWidth
		case "portrait":
			// 预设即纵向。
		case "margin":
			vals := []string{}
			for j := i + 1; j < len(params) && len(vals) < 4; j++ {
				if !looksLikeLength(params[j].Value) {
					break
				}
				vals = append(vals, params[j].Value)
			}
			if len(vals) == 0 {
				return layout.Geometry{}, fmt.Errorf("margin 参数后缺少长度值")
			}
			m, err := layout.ParseMarginShorthand(vals)
			if err != nil {
				return layout.Geometry{}, err
			}
			geo.Margin = m
			i += len(vals)
		}
	}

	if section.Block != nil {
		for _, stmt := range section.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			if err := applyPageAssignment(&geo, stmt.Assignment); err != nil {
				return layout.Geometry{}, err
			}
		}
	}
	return geo, nil
}

func applyPageAssignment(geo *layout.Geometry, a *Assignment) error {
	val := valueToString(a.Value)
	switch strings.ToLower(a.Key) {
	case "font":
		geo.FontFamily = val
	case "size", "font-size":
		pt := layout.ParseRawLengthStr(val).ToPT()
		if pt <= 0 {
			return fmt.Errorf("无法解析字号 %q", val)
		}
		geo.FontSize = pt
	case "line-height":
		spec := layout.ParseLineHeight(val)
		switch spec.Kind {
		case layout.LineHeightFactor:
			geo.LineHeight = spec.Factor
		case layout.LineHeightAbsolute:
			// 绝对行高按当前字号折算为系数，因此应在 size 之后声明。
			geo.LineHeight = spec.Len.ToPT() / geo.FontSize
		}
	case "spacing", "element-spacing":
		pt := layout.ParseRawLengthStr(val).ToPT()
		if pt < 0 {
			return fmt.Errorf("元素间距不能为负 %q", val)
		}
		geo.ElementSpacing = pt
	case "orphans":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return fmt.Errorf("orphans 需要正整数，实际 %q", val)
		}
		geo.OrphanControl = n
	case "widows":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return fmt.Errorf("widows 需要正整数，实际 %q", val)
		}
		geo.WidowControl = n
	case "width":
		pt := layout.ParseRawLengthStr(val).ToPT()
		if pt <= 0 {
			return fmt.Errorf("无法解析页面宽度 %q", val)
		}
		geo.PageWidth = pt
	case "height":
		pt := layout.ParseRawLengthStr(val).ToPT()
		if pt <= 0 {
			return fmt.Errorf("无法解析页面高度 %q", val)
		}
		geo.PageHeight = pt
	case "margin":
		m, err := layout.ParseMarginShorthand(valueToFields(a.Value))
		if err != nil {
			return err
		}
		geo.Margin = m
	}
	return nil
}

func buildElements(block *Block, data any) ([]content.Element, error) {
	if block == nil {
		return nil, nil
	}
	var elements []content.Element
	for _, stmt := range block.Statements {
		if stmt.Command == nil {
			continue
		}
		el, err := buildElement(stmt.Command, data)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func buildElement(cmd *Command, data any) (content.Element, error) {
	switch cmd.Name {
	case "text":
		body, rest := commandBody(cmd, cmd.Args)
		id, style := parseElementArgs(rest)
		return &content.Text{ID: id, Body: binding.Interpolate(body, data), Style: style}, nil
	case "markdown", "md":
		body, rest := commandBody(cmd, cmd.Args)
		id, style := parseElementArgs(rest)
		return &content.Markdown{ID: id, Body: binding.Interpolate(body, data), Style: style}, nil
	case "code":
		args := cmd.Args
		language := ""
		if len(args) > 0 && args[0].Type == "Ident" && !isAttrKey(args[0].Value) {
			language = args[0].Value
			args = args[1:]
		}
		body, rest := commandBody(cmd, args)
		id, style := parseElementArgs(rest)
		return &content.Code{ID: id, Language: language, Body: body, Style: style}, nil
	case "latex", "math":
		body, rest := commandBody(cmd, cmd.Args)
		id, style := parseElementArgs(rest)
		return &content.LaTeX{ID: id, Source: body, Style: style}, nil
	case "table":
		return buildTable(cmd, data)
	case "image":
		return buildImage(cmd, data)
	default:
		body, rest := commandBody(cmd, cmd.Args)
		id, style := parseElementArgs(rest)
		return &content.Custom{ID: id, Tag: cmd.Name, Body: binding.Interpolate(body, data), Style: style}, nil
	}
}

// commandBody 提取命令的文本内容：行内字符串参数与块内字符串字面量
// 逐行拼接，空字符串行即段落分隔。返回剩余的属性参数。
func commandBody(cmd *Command, args []*Lexeme) (string, []*Lexeme) {
	var lines []string
	if len(args) > 0 && args[0].Type == "String" {
		lines = append(lines, args[0].Value)
		args = args[1:]
	}
	if cmd.Block != nil {
		for _, stmt := range cmd.Block.Statements {
			if stmt.Text != nil {
				lines = append(lines, string(stmt.Text.Value))
			}
		}
	}
	return strings.Join(lines, "\n"), args
}

// parseElementArgs 解析命令尾部的键值属性对（id/font/size/line-height）。
func parseElementArgs(args []*Lexeme) (string, *content.Style) {
	var id string
	var style *content.Style
	ensure := func() *content.Style {
		if style == nil {
			style = &content.Style{}
		}
		return style
	}

	for i := 0; i+1 < len(args); i += 2 {
		key := args[i].Value
		val := args[i+1].Value
		switch key {
		case "id":
			id = val
		case "font":
			ensure().FontFamily = val
		case "size":
			if pt := layout.ParseRawLengthStr(val).ToPT(); pt > 0 {
				ensure().FontSize = pt
			}
		case "line-height":
			spec := layout.ParseLineHeight(val)
			if spec.Kind == layout.LineHeightFactor {
				ensure().LineHeight = spec.Factor
			}
		}
	}
	return id, style
}

func isAttrKey(s string) bool {
	switch s {
	case "id", "font", "size", "line-height":
		return true
	}
	return false
}

func buildTable(cmd *Command, data any) (content.Element, error) {
	id, style := parseElementArgs(cmd.Args)
	table := &content.Table{ID: id, Style: style}
	if cmd.Block == nil {
		return nil, fmt.Errorf("table 需要 header/row 块")
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Command == nil {
			continue
		}
		cells := commandCells(stmt.Command, data)
		switch stmt.Command.Name {
		case "header":
			if table.Headers != nil {
				return nil, fmt.Errorf("table 仅允许一个 header")
			}
			table.Headers = cells
		case "row":
			table.Rows = append(table.Rows, cells)
		default:
			return nil, fmt.Errorf("table 不支持子命令 %s", stmt.Command.Name)
		}
	}
	if table.Headers == nil && len(table.Rows) == 0 {
		return nil, fmt.Errorf("table 需要至少一行")
	}
	return table, nil
}

func commandCells(cmd *Command, data any) []string {
	cells := make([]string, 0, len(cmd.Args))
	for _, arg := range cmd.Args {
		cells = append(cells, binding.Interpolate(arg.Value, data))
	}
	return cells
}

func buildImage(cmd *Command, data any) (content.Element, error) {
	img := &content.Image{}
	for i := 0; i+1 < len(cmd.Args); i += 2 {
		applyImageAttr(img, cmd.Args[i].Value, cmd.Args[i+1].Value, data)
	}
	if cmd.Block != nil {
		for _, stmt := range cmd.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			applyImageAttr(img, stmt.Assignment.Key, valueToString(stmt.Assignment.Value), data)
		}
	}
	if img.URL == "" {
		return nil, fmt.Errorf("image 缺少 src")
	}
	return img, nil
}

func applyImageAttr(img *content.Image, key, val string, data any) {
	switch strings.ToLower(key) {
	case "src":
		img.URL = binding.Interpolate(val, data)
	case "id":
		img.ID = val
	case "width":
		if pt := layout.ParseRawLengthStr(val).ToPT(); pt > 0 {
			img.Width = pt
		}
	case "height":
		if pt := layout.ParseRawLengthStr(val).ToPT(); pt > 0 {
			img.Height = pt
		}
	}
}

// looksLikeLength 判断行内参数是否是可解析的长度值，
// 避免 margin 吞掉后续的 landscape 等关键字。
func looksLikeLength(raw string) bool {
	l := layout.ParseRawLengthStr(raw)
	return l.Unit != layout.UnitNone || l.Value != 0 || strings.TrimSpace(raw) == "0"
}

func valueToString(val *Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}

func valueToFields(val *Value) []string {
	if val == nil {
		return nil
	}
	switch {
	case val.Expr != nil:
		out := make([]string, 0, len(val.Expr.Parts))
		for _, part := range val.Expr.Parts {
			out = append(out, part.Value)
		}
		return out
	case val.String != nil:
		return strings.Fields(string(*val.String))
	default:
		if s := valueToString(val); s != "" {
			return []string{s}
		}
		return nil
	}
}
