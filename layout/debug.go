package layout

import (
	"encoding/json"
	"io"
	"os"
)

// EncodeResult 将分页结果编码到 w。pretty 为 true 时带缩进，
// 便于人工检查；否则输出紧凑 JSON 供下游程序消费。
func EncodeResult(w io.Writer, res *Result, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

// WriteDebugJSON 将分页结果输出为缩进 JSON 文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeResult(f, res, true)
}
