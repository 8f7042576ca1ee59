package layout

// 该文件定义分页结果模型，供放置循环、调试 JSON 与下游渲染器共用。
// 坐标系：页面左上角为原点，Y 向下，单位 pt。

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ByLCY/folio/content"
)

// SplitStrategy 标识某类内容的拆分策略。
type SplitStrategy string

const (
	StrategyParagraph SplitStrategy = "paragraph-aware"
	StrategyLine      SplitStrategy = "line-aware"
	StrategyComponent SplitStrategy = "component-aware"
	StrategyRow       SplitStrategy = "row-aware"
	StrategyNone      SplitStrategy = "none"
)

// Measurement 是某元素在当前几何下的测量结果。
// 相同 (类型, 内容, 样式) 的测量结果逐字节一致，这是缓存与可重现性的前提。
type Measurement struct {
	Kind   content.Kind `json:"type"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Lines  int          `json:"lines"`
	// CanSplit 与 Splittable 永远相等，双字段是历史负担，仅为下游兼容保留。
	CanSplit   bool          `json:"canSplit"`
	Splittable bool          `json:"splittable"`
	Strategy   SplitStrategy `json:"splitStrategy"`
	Structure  *Structure    `json:"contentStructure,omitempty"`
}

// Structure 按类型保存测量过程中得到的内容结构，供拆分器复用。
// 始终是有类型的子结构而非裸 map，拆分器据此做穷尽分发。
type Structure struct {
	Text     *TextStructure     `json:"text,omitempty"`
	Markdown *MarkdownStructure `json:"markdown,omitempty"`
	Code     *CodeStructure     `json:"code,omitempty"`
	Table    *TableStructure    `json:"table,omitempty"`
	Image    *ImageStructure    `json:"image,omitempty"`
	Math     *MathStructure     `json:"math,omitempty"`
}

// TextStructure 记录文本的段落块与数学片段。
type TextStructure struct {
	Paragraphs []ParagraphBlock `json:"paragraphs"`
	Segments   []MathSegment    `json:"segments,omitempty"`
}

// ParagraphBlock 是一个段落的测量块。Height 已含段落尾随间距，
// 因此任意段落子集的高度和等于这些块的高度和，拆分不产生误差。
type ParagraphBlock struct {
	Text   string  `json:"text"`
	Lines  int     `json:"lines"`
	Height float64 `json:"height"`
}

// MathSegment 是从文本中提取出的数学片段。
type MathSegment struct {
	Raw        string  `json:"raw"`
	Display    bool    `json:"display"`
	Complexity float64 `json:"complexity"`
	Height     float64 `json:"height"`
}

// MarkdownStructure 记录扫描出的组件与结构标志。
type MarkdownStructure struct {
	Components  []ComponentBlock `json:"components"`
	HasHeadings bool             `json:"hasHeadings"`
	HasCode     bool             `json:"hasCode"`
	HasTables   bool             `json:"hasTables"`
	HasLists    bool             `json:"hasLists"`
}

// ComponentBlock 是 markdown 的一个原子组件（heading/code/text）。
// 与段落块一样，Height 已含组件尾随间距。
type ComponentBlock struct {
	Kind   string  `json:"kind"`
	Level  int     `json:"level,omitempty"` // heading 层级 1-6
	Text   string  `json:"text"`
	Lines  int     `json:"lines"`
	Height float64 `json:"height"`
}

// CodeStructure 记录代码块的原始行数与各行折行数。
type CodeStructure struct {
	RawLines     int   `json:"rawLines"`
	WrappedLines int   `json:"wrappedLines"`
	Wraps        []int `json:"wraps"`
}

// TableStructure 记录行高模型；表头与数据行共用同一行高。
type TableStructure struct {
	RowHeight  float64 `json:"rowHeight"`
	HeaderRows int     `json:"headerRows"`
	Rows       int     `json:"rows"`
}

// ImageStructure 记录缩放后的尺寸与纵横比。
type ImageStructure struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	AspectRatio float64 `json:"aspectRatio"`
	Scaled      bool    `json:"scaled"`
}

// MathStructure 记录独立公式块的复杂度因素。
type MathStructure struct {
	Complexity float64 `json:"complexity"`
	Display    bool    `json:"display"`
	LineBreaks int     `json:"lineBreaks"`
}

// Bounds 是放置后的元素外框（页面坐标，pt）。
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PlacedElement 是放置到某页上的元素。创建后不再变动，
// 唯一例外是同一源元素的拆分链结束时回填 TotalParts 并刷新 Modified。
type PlacedElement struct {
	Element     content.Element `json:"element"`
	Bounds      Bounds          `json:"bounds"`
	PageIndex   int             `json:"pageIndex"`
	Measurement Measurement     `json:"measurement"`
	ZIndex      int             `json:"zIndex"`
	Locked      bool            `json:"locked"`
	Visible     bool            `json:"visible"`
	Modified    time.Time       `json:"modified"`
}

// MarshalJSON 将接口字段 Element 按内容信封编码，其余字段原样输出。
func (p PlacedElement) MarshalJSON() ([]byte, error) {
	raw, err := content.MarshalElement(p.Element)
	if err != nil {
		return nil, fmt.Errorf("编码放置元素失败: %w", err)
	}
	type alias PlacedElement
	return json.Marshal(struct {
		alias
		Element json.RawMessage `json:"element"`
	}{alias(p), raw})
}

// Page 记录单页尺寸、边距与该页上的全部元素（按放置顺序）。
type Page struct {
	Index    int              `json:"index"`
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
	Margin   Margin           `json:"margin"`
	Elements []*PlacedElement `json:"elements"`
}

// Warning 描述某个输入元素在分页过程中产生的非致命问题。
type Warning struct {
	ElementIndex int    `json:"elementIndex"`
	Type         string `json:"type"`
	Message      string `json:"message"`
}

// 告警类型。measurement 失败产生 processing_error 并跳过该元素；
// 元素超过整页且无法拆分时按原样放置并产生 overflow。
const (
	WarnProcessingError = "processing_error"
	WarnOverflow        = "overflow"
)

// Statistics 汇总一次分页运行。ContentUtilization 取值范围 [0,1]。
type Statistics struct {
	TotalElements      int     `json:"totalElements"`
	TotalPages         int     `json:"totalPages"`
	AvgElementsPerPage float64 `json:"avgElementsPerPage"`
	ContentUtilization float64 `json:"contentUtilization"`
}

// Cursor 是放置游标：页索引与页面坐标下的 Y（pt）。
// 零值等价于第 0 页内容区顶部，见 Engine.PaginateFrom。
type Cursor struct {
	Page int     `json:"page"`
	Y    float64 `json:"y"`
}

// Result 保存一次分页运行的全部输出。
// Placed 按输入顺序平铺所有放置元素；Measurements 与输入元素一一对应
// （测量失败的元素占位一个零值测量）。
type Result struct {
	Pages        []Page           `json:"pages"`
	Placed       []*PlacedElement `json:"processedElements"`
	Measurements []Measurement    `json:"measurements"`
	Warnings     []Warning        `json:"warnings"`
	Stats        Statistics       `json:"statistics"`
	Meta         DocumentMeta     `json:"meta"`
}

// DocumentMeta 保存文档元信息，由调用方（如 CLI）填充。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
