package content

// Style 保存元素级样式覆盖。零值字段表示继承引擎默认值，
// 因此合并语义是逐字段覆盖而非整体替换。
type Style struct {
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	LineHeight float64 `json:"lineHeight,omitempty"` // 行高系数，例如 1.4
}

// Merge 返回以 base 为底、s 中非零字段覆盖后的新样式。
// s 为 nil 时直接返回 base，便于调用方统一处理。
func (s *Style) Merge(base Style) Style {
	if s == nil {
		return base
	}
	out := base
	if s.FontFamily != "" {
		out.FontFamily = s.FontFamily
	}
	if s.FontSize > 0 {
		out.FontSize = s.FontSize
	}
	if s.LineHeight > 0 {
		out.LineHeight = s.LineHeight
	}
	return out
}

// Clone 返回样式指针的深拷贝，nil 保持 nil。
func (s *Style) Clone() *Style {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
