package content_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ByLCY/folio/content"
)

// TestElementsRoundtrip 验证混合元素数组编解码后类型与关键字段保持。
func TestElementsRoundtrip(t *testing.T) {
	els := []content.Element{
		&content.Text{
			ID:    "t1",
			Body:  "正文 $x$",
			Style: &content.Style{FontSize: 14},
			Split: &content.SplitInfo{Part: 1, TotalParts: 2, Continued: true},
		},
		&content.Markdown{ID: "m1", Body: "# 标题"},
		&content.Code{ID: "c1", Body: "x := 1", Language: "go"},
		&content.Table{ID: "tb1", Headers: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}},
		&content.Image{ID: "i1", URL: "pic.png", Width: 120, Height: 80},
		&content.LaTeX{ID: "l1", Source: `\frac{a}{b}`},
		&content.Custom{ID: "x1", Tag: "chart", Body: "payload"},
	}

	data, err := content.MarshalElements(els)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	back, err := content.UnmarshalElements(data)
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if len(back) != len(els) {
		t.Fatalf("元素个数期望 %d，实际 %d", len(els), len(back))
	}

	txt := back[0].(*content.Text)
	if txt.ID != "t1" || txt.Body != "正文 $x$" {
		t.Fatalf("文本字段丢失: %+v", txt)
	}
	if txt.Style == nil || txt.Style.FontSize != 14 {
		t.Fatalf("样式未随元素还原: %+v", txt.Style)
	}
	if txt.Split == nil || txt.Split.Part != 1 || txt.Split.TotalParts != 2 || !txt.Split.Continued {
		t.Fatalf("拆分标记未随元素还原: %+v", txt.Split)
	}

	code := back[2].(*content.Code)
	if code.Language != "go" || code.Body != "x := 1" {
		t.Fatalf("代码字段丢失: %+v", code)
	}

	tbl := back[3].(*content.Table)
	if len(tbl.Headers) != 1 || len(tbl.Rows) != 2 || tbl.Rows[1][0] != "2" {
		t.Fatalf("表格字段丢失: %+v", tbl)
	}

	img := back[4].(*content.Image)
	if img.URL != "pic.png" || img.Width != 120 || img.Height != 80 {
		t.Fatalf("图片字段丢失: %+v", img)
	}

	ltx := back[5].(*content.LaTeX)
	if ltx.Source != `\frac{a}{b}` {
		t.Fatalf("公式源码丢失: %+v", ltx)
	}

	cst := back[6].(*content.Custom)
	if cst.Tag != "chart" || cst.Body != "payload" {
		t.Fatalf("自定义标签或内容丢失: %+v", cst)
	}
}

// TestEnvelopeTypeTag 验证信封顶层携带 type 标签与规范字段名。
func TestEnvelopeTypeTag(t *testing.T) {
	raw, err := content.MarshalElement(&content.Text{ID: "a", Body: "hi"})
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("信封应是 JSON 对象: %v", err)
	}
	if obj["type"] != "text" {
		t.Fatalf("type 标签期望 text，实际 %v", obj["type"])
	}
	if obj["content"] != "hi" {
		t.Fatalf("正文字段名应为 content，实际 %v", obj)
	}
}

// TestUnknownTypePreserved 验证未知标签落入 Custom 且重编码不丢标签。
func TestUnknownTypePreserved(t *testing.T) {
	el, err := content.UnmarshalElement([]byte(`{"type":"chart","id":"c1","content":"x"}`))
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	cst, ok := el.(*content.Custom)
	if !ok || cst.Tag != "chart" || cst.ID != "c1" {
		t.Fatalf("未知标签应还原为 Custom: %+v", el)
	}

	again, err := content.MarshalElement(cst)
	if err != nil {
		t.Fatalf("重编码失败: %v", err)
	}
	if !strings.Contains(string(again), `"type":"chart"`) {
		t.Fatalf("重编码应保留原始标签: %s", again)
	}
}

// TestMissingTypeTag 验证缺失标签退化为 generic 而非报错。
func TestMissingTypeTag(t *testing.T) {
	el, err := content.UnmarshalElement([]byte(`{"content":"x"}`))
	if err != nil {
		t.Fatalf("缺失标签不应报错: %v", err)
	}
	if el.Kind() != content.KindGeneric {
		t.Fatalf("缺失标签应归入 generic，实际 %s", el.Kind())
	}
}

// TestJSONErrors 验证非法输入的错误路径。
func TestJSONErrors(t *testing.T) {
	if _, err := content.UnmarshalElement([]byte(`{`)); err == nil {
		t.Fatalf("残缺 JSON 应报错")
	}
	if _, err := content.UnmarshalElement([]byte(`{"type":"text","content":5}`)); err == nil {
		t.Fatalf("字段类型不符应报错")
	}
	if _, err := content.UnmarshalElements([]byte(`{"not":"array"}`)); err == nil {
		t.Fatalf("非数组输入应报错")
	}
	if _, err := content.MarshalElement(nil); err == nil {
		t.Fatalf("空元素应报错")
	}
}
