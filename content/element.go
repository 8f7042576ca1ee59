package content

// 该文件定义内容元素的封闭联合类型：引擎内部一律通过类型开关分发，
// default 分支回退到 generic 路径，避免未知类型悄悄走错分支。

import "github.com/google/uuid"

// Kind 标识元素的内容类型，字符串形式即为 JSON 中的 type 标签。
type Kind string

const (
	KindText     Kind = "text"
	KindMarkdown Kind = "markdown"
	KindCode     Kind = "code"
	KindTable    Kind = "table"
	KindImage    Kind = "image"
	KindLaTeX    Kind = "latex"
	// KindGeneric 是所有未注册类型的归宿（例如 "chart"）。
	KindGeneric Kind = "generic"
)

// String 返回 Kind 的线上标签形式。
func (k Kind) String() string { return string(k) }

// Element 是内容元素的封闭联合。实现仅限本包内的七个具体类型；
// 引擎对外部自定义实现一律按 generic 处理。
type Element interface {
	// Kind 返回元素类型标签。
	Kind() Kind
	// ElementID 返回元素的稳定标识，可能为空（由 EnsureID 补齐）。
	ElementID() string
	// StyleOverride 返回样式覆盖，nil 表示全部继承引擎默认值。
	StyleOverride() *Style
	// SplitTag 返回拆分标记，仅由拆分器产出的部分携带。
	SplitTag() *SplitInfo
}

// Text 是普通文本元素，段落以空行分隔，行内可嵌入数学片段。
type Text struct {
	ID    string     `json:"id,omitempty"`
	Body  string     `json:"content"`
	Style *Style     `json:"style,omitempty"`
	Split *SplitInfo `json:"splitInfo,omitempty"`
}

// Markdown 是轻量标记文本元素，按标题 / 围栏代码 / 文本段扫描成组件。
type Markdown struct {
	ID    string     `json:"id,omitempty"`
	Body  string     `json:"content"`
	Style *Style     `json:"style,omitempty"`
	Split *SplitInfo `json:"splitInfo,omitempty"`
}

// Code 是等宽代码块元素，Language 仅作元数据记录，不参与测量。
type Code struct {
	ID       string     `json:"id,omitempty"`
	Body     string     `json:"content"`
	Language string     `json:"language,omitempty"`
	Style    *Style     `json:"style,omitempty"`
	Split    *SplitInfo `json:"splitInfo,omitempty"`
}

// Table 是表格元素，假定各列等宽；Rows 中各行列数不要求与表头一致。
type Table struct {
	ID      string     `json:"id,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Style   *Style     `json:"style,omitempty"`
	Split   *SplitInfo `json:"splitInfo,omitempty"`
}

// Image 是图片元素，宽高单位与页面几何一致（pt）；0 表示未知。
type Image struct {
	ID     string     `json:"id,omitempty"`
	URL    string     `json:"url"`
	Width  float64    `json:"width,omitempty"`
	Height float64    `json:"height,omitempty"`
	Style  *Style     `json:"style,omitempty"`
	Split  *SplitInfo `json:"splitInfo,omitempty"`
}

// LaTeX 是独立公式块元素，始终按块级展示测量。
type LaTeX struct {
	ID     string     `json:"id,omitempty"`
	Source string     `json:"content"`
	Style  *Style     `json:"style,omitempty"`
	Split  *SplitInfo `json:"splitInfo,omitempty"`
}

// Custom 承载未注册的类型标签，测量时按单行 generic 处理且不产生告警。
type Custom struct {
	ID    string     `json:"id,omitempty"`
	Tag   string     `json:"-"`
	Body  string     `json:"content,omitempty"`
	Style *Style     `json:"style,omitempty"`
	Split *SplitInfo `json:"splitInfo,omitempty"`
}

func (e *Text) Kind() Kind     { return KindText }
func (e *Markdown) Kind() Kind { return KindMarkdown }
func (e *Code) Kind() Kind     { return KindCode }
func (e *Table) Kind() Kind    { return KindTable }
func (e *Image) Kind() Kind    { return KindImage }
func (e *LaTeX) Kind() Kind    { return KindLaTeX }

// Kind 返回原始标签；空标签归一为 generic。
func (e *Custom) Kind() Kind {
	if e.Tag == "" {
		return KindGeneric
	}
	return Kind(e.Tag)
}

func (e *Text) ElementID() string     { return e.ID }
func (e *Markdown) ElementID() string { return e.ID }
func (e *Code) ElementID() string     { return e.ID }
func (e *Table) ElementID() string    { return e.ID }
func (e *Image) ElementID() string    { return e.ID }
func (e *LaTeX) ElementID() string    { return e.ID }
func (e *Custom) ElementID() string   { return e.ID }

func (e *Text) StyleOverride() *Style     { return e.Style }
func (e *Markdown) StyleOverride() *Style { return e.Style }
func (e *Code) StyleOverride() *Style     { return e.Style }
func (e *Table) StyleOverride() *Style    { return e.Style }
func (e *Image) StyleOverride() *Style    { return e.Style }
func (e *LaTeX) StyleOverride() *Style    { return e.Style }
func (e *Custom) StyleOverride() *Style   { return e.Style }

func (e *Text) SplitTag() *SplitInfo     { return e.Split }
func (e *Markdown) SplitTag() *SplitInfo { return e.Split }
func (e *Code) SplitTag() *SplitInfo     { return e.Split }
func (e *Table) SplitTag() *SplitInfo    { return e.Split }
func (e *Image) SplitTag() *SplitInfo    { return e.Split }
func (e *LaTeX) SplitTag() *SplitInfo    { return e.Split }
func (e *Custom) SplitTag() *SplitInfo   { return e.Split }

// EnsureID 为缺失 ID 的元素生成 uuid 并写回，返回最终 ID。
// 已有 ID 的元素保持不变，保证拆分前后父子标识可追溯。
func EnsureID(e Element) string {
	if id := e.ElementID(); id != "" {
		return id
	}
	id := uuid.NewString()
	switch el := e.(type) {
	case *Text:
		el.ID = id
	case *Markdown:
		el.ID = id
	case *Code:
		el.ID = id
	case *Table:
		el.ID = id
	case *Image:
		el.ID = id
	case *LaTeX:
		el.ID = id
	case *Custom:
		el.ID = id
	default:
		// 外部实现无法写回，仅返回生成值。
	}
	return id
}
