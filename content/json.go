package content

// 元素联合类型的 JSON 信封编解码：对象携带 "type" 标签，
// 解码按标签还原具体类型，未知标签落入 Custom。

import (
	"encoding/json"
	"fmt"
)

// MarshalElement 将元素编码为携带 type 标签的 JSON 对象。
func MarshalElement(e Element) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("元素为空，无法编码")
	}
	switch el := e.(type) {
	case *Text:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Text
		}{string(KindText), el})
	case *Markdown:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Markdown
		}{string(KindMarkdown), el})
	case *Code:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Code
		}{string(KindCode), el})
	case *Table:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Table
		}{string(KindTable), el})
	case *Image:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Image
		}{string(KindImage), el})
	case *LaTeX:
		return json.Marshal(struct {
			Type string `json:"type"`
			*LaTeX
		}{string(KindLaTeX), el})
	case *Custom:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Custom
		}{el.Kind().String(), el})
	default:
		// 外部实现仅编码类型标签与标识，内容不可知。
		return json.Marshal(struct {
			Type string `json:"type"`
			ID   string `json:"id,omitempty"`
		}{e.Kind().String(), e.ElementID()})
	}
}

// UnmarshalElement 按 type 标签解码元素；未知标签还原为 Custom，
// 保留原始标签以便引擎按 generic 路径处理。
func UnmarshalElement(data []byte) (Element, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("解析元素类型标签失败: %w", err)
	}
	switch Kind(probe.Type) {
	case KindText:
		el := &Text{}
		if err := json.Unmarshal(data, el); err != nil {
			return nil, fmt.Errorf("解析 text 元素失败: %w", err)
		}
		return el, nil
	case KindMarkdown:
		el := &Markdown{}
		if err := json.Unmarshal(data, el); err != nil {
			return nil, fmt.Errorf("解析 markdown 元素失败: %w", err)
		}
		return el, nil
	case KindCode:
		el := &Code{}
		if err := json.Unmarshal(data, el); err != nil {
			return nil, fmt.Errorf("解析 code 元素失败: %w", err)
		}
		return el, nil
	case KindTable:
		el := &Table{}
		if err := json.Unmarshal(data, el); err != nil {
			return nil, fmt.Errorf("解析 table 元素失败: %w", err)
		}
		return el, nil
	case KindImage:
		el := &Image{}
		if err := json.Unmarshal(data, el); err != nil {
			return nil, fmt.Errorf("解析 image 元素失败: %w", err)
		}
		return el, nil
	case KindLaTeX:
		el := &LaTeX{}
		if err := json.Unmarshal(data, el); err != nil {
			return nil, fmt.Errorf("解析 latex 元素失败: %w", err)
		}
		return el, nil
	default:
		el := &Custom{}
		if err := json.Unmarshal(data, el); err != nil {
			return nil, fmt.Errorf("解析自定义元素失败: %w", err)
		}
		el.Tag = probe.Type
		return el, nil
	}
}

// MarshalElements 编码元素切片为 JSON 数组。
func MarshalElements(els []Element) ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(els))
	for i, e := range els {
		b, err := MarshalElement(e)
		if err != nil {
			return nil, fmt.Errorf("编码第 %d 个元素失败: %w", i, err)
		}
		raw = append(raw, b)
	}
	return json.Marshal(raw)
}

// UnmarshalElements 解码 JSON 数组为元素切片。
func UnmarshalElements(data []byte) ([]Element, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析元素数组失败: %w", err)
	}
	els := make([]Element, 0, len(raw))
	for i, r := range raw {
		el, err := UnmarshalElement(r)
		if err != nil {
			return nil, fmt.Errorf("第 %d 个元素: %w", i, err)
		}
		els = append(els, el)
	}
	return els, nil
}
