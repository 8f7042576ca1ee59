package layout

// 页面几何：尺寸、边距与排版默认值。所有长度单位均为 pt。
// 内容区宽高在引擎构造时派生一次，运行过程中不再重算。

import (
	"fmt"
	"strings"
)

// 引擎级默认值。页面为 A4（pt），边距 1 英寸。
const (
	defaultPageWidth  = 595.0
	defaultPageHeight = 842.0
	defaultMargin     = 72.0
	defaultFontFamily = "Inter"
	defaultFontSize   = 11.0
	defaultLineHeight = 1.4
	defaultSpacing    = 12.0
	defaultOrphans    = 2
	defaultWidows     = 2
)

// Margin 以 pt 为单位。
type Margin struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Uniform 返回四边等值的边距。
func Uniform(v float64) Margin {
	return Margin{Top: v, Right: v, Bottom: v, Left: v}
}

// Geometry 描述一次分页运行的页面几何与排版默认值。
// 零值字段在 Normalize 时回填默认值，元素样式可逐项覆盖字体相关字段。
type Geometry struct {
	PageWidth  float64 `json:"pageWidth" yaml:"pageWidth"`
	PageHeight float64 `json:"pageHeight" yaml:"pageHeight"`
	Margin     Margin  `json:"margin" yaml:"margin"`

	FontFamily string  `json:"fontFamily" yaml:"fontFamily"`
	FontSize   float64 `json:"fontSize" yaml:"fontSize"`
	LineHeight float64 `json:"lineHeight" yaml:"lineHeight"` // 行高系数

	// ElementSpacing 是相邻元素之间的垂直间距（pt）。
	ElementSpacing float64 `json:"elementSpacing" yaml:"elementSpacing"`

	// OrphanControl/WidowControl 是拆分时首部/尾部的最少行数。
	OrphanControl int `json:"orphanControl" yaml:"orphanControl"`
	WidowControl  int `json:"widowControl" yaml:"widowControl"`
}

// DefaultGeometry 返回 A4 双 72pt 边距的默认几何。
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:      defaultPageWidth,
		PageHeight:     defaultPageHeight,
		Margin:         Uniform(defaultMargin),
		FontFamily:     defaultFontFamily,
		FontSize:       defaultFontSize,
		LineHeight:     defaultLineHeight,
		ElementSpacing: defaultSpacing,
		OrphanControl:  defaultOrphans,
		WidowControl:   defaultWidows,
	}
}

// pagePresets 维护常用纸型（pt）。
var pagePresets = map[string][2]float64{
	"a4":     {595, 842},
	"a5":     {420, 595},
	"letter": {612, 792},
}

// PresetGeometry 按纸型名称返回默认几何；未知名称返回 false。
func PresetGeometry(name string) (Geometry, bool) {
	size, ok := pagePresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Geometry{}, false
	}
	g := DefaultGeometry()
	g.PageWidth = size[0]
	g.PageHeight = size[1]
	return g, true
}

// Normalize 回填零值字段并校验几何是否可用。
// 返回的副本满足：页面为正、边距非负、内容区为正、孤行/寡行参数至少为 1。
func (g Geometry) Normalize() (Geometry, error) {
	out := g
	def := DefaultGeometry()
	if out.PageWidth <= 0 {
		out.PageWidth = def.PageWidth
	}
	if out.PageHeight <= 0 {
		out.PageHeight = def.PageHeight
	}
	if out.Margin == (Margin{}) {
		out.Margin = def.Margin
	}
	if out.Margin.Top < 0 || out.Margin.Right < 0 || out.Margin.Bottom < 0 || out.Margin.Left < 0 {
		return Geometry{}, fmt.Errorf("页边距不能为负: %+v", out.Margin)
	}
	if out.FontFamily == "" {
		out.FontFamily = def.FontFamily
	}
	if out.FontSize <= 0 {
		out.FontSize = def.FontSize
	}
	if out.LineHeight <= 0 {
		out.LineHeight = def.LineHeight
	}
	if out.ElementSpacing < 0 {
		return Geometry{}, fmt.Errorf("元素间距不能为负: %g", out.ElementSpacing)
	}
	if out.ElementSpacing == 0 {
		out.ElementSpacing = def.ElementSpacing
	}
	if out.OrphanControl <= 0 {
		out.OrphanControl = def.OrphanControl
	}
	if out.WidowControl <= 0 {
		out.WidowControl = def.WidowControl
	}
	if out.ContentWidth() <= 0 || out.ContentHeight() <= 0 {
		return Geometry{}, fmt.Errorf("页边距超出页面尺寸: 页面 %gx%g, 边距 %+v",
			out.PageWidth, out.PageHeight, out.Margin)
	}
	return out, nil
}

// ContentWidth 返回去除左右边距后的内容区宽度。
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.Margin.Left - g.Margin.Right
}

// ContentHeight 返回去除上下边距后的内容区高度。
func (g Geometry) ContentHeight() float64 {
	return g.PageHeight - g.Margin.Top - g.Margin.Bottom
}

// signature 标识影响测量结果的几何因素，用于判定测量缓存能否跨引擎复用。
// 解析后的样式三元组已进入指纹，因此这里只需内容区宽度。
func (g Geometry) signature() string {
	return fmt.Sprintf("cw=%.6f", g.ContentWidth())
}

// ParseMarginShorthand 按 CSS 简写语义解析 1/2/3/4 个长度值。
// 1 个值四边等同；2 个值为 上下/左右；3 个值为 上/左右/下；4 个值为 上/右/下/左。
func ParseMarginShorthand(values []string) (Margin, error) {
	pts := make([]float64, 0, len(values))
	for _, v := range values {
		l := ParseRawLengthStr(v)
		if l.Unit == UnitNone && strings.TrimSpace(v) != "0" && l.Value == 0 {
			return Margin{}, fmt.Errorf("无法解析边距值 %q", v)
		}
		pts = append(pts, l.ToPT())
	}
	switch len(pts) {
	case 1:
		return Uniform(pts[0]), nil
	case 2:
		return Margin{Top: pts[0], Bottom: pts[0], Right: pts[1], Left: pts[1]}, nil
	case 3:
		return Margin{Top: pts[0], Right: pts[1], Left: pts[1], Bottom: pts[2]}, nil
	case 4:
		return Margin{Top: pts[0], Right: pts[1], Bottom: pts[2], Left: pts[3]}, nil
	default:
		return Margin{}, fmt.Errorf("边距值个数应为 1-4，实际 %d", len(pts))
	}
}
