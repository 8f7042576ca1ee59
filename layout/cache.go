package layout

// 测量缓存：以 (类型, 内容, 解析后样式) 的 sha256 指纹为键。
// 缓存是引擎实例字段而非包级全局，跨运行复用仅限几何签名一致的引擎。

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/ByLCY/folio/content"
)

// MeasurementCache 记忆化测量结果。读写都持锁，预热阶段可并发写入。
type MeasurementCache struct {
	mu      sync.RWMutex
	sig     string
	entries map[string]Measurement
}

// NewMeasurementCache 创建空缓存。
func NewMeasurementCache() *MeasurementCache {
	return &MeasurementCache{entries: make(map[string]Measurement)}
}

// adopt 将缓存绑定到某个几何签名。已绑定到其它签名的缓存不可复用：
// 内容区宽度不同会让同一指纹对应不同的折行结果。
func (c *MeasurementCache) adopt(sig string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sig == "" {
		c.sig = sig
		return nil
	}
	if c.sig != sig {
		return fmt.Errorf("测量缓存几何签名不匹配: 已绑定 %s，请求 %s", c.sig, sig)
	}
	return nil
}

func (c *MeasurementCache) lookup(fp string) (Measurement, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[fp]
	return m, ok
}

func (c *MeasurementCache) store(fp string, m Measurement) {
	c.mu.Lock()
	c.entries[fp] = m
	c.mu.Unlock()
}

// Len 返回缓存条目数。
func (c *MeasurementCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// fingerprint 计算元素在给定解析样式下的内容指纹。
// 字段之间写入长度前缀，避免拼接歧义（"ab"+"c" 与 "a"+"bc"）。
func fingerprint(e content.Element, style content.Style) string {
	h := sha256.New()
	writeField := func(s string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	writeField(e.Kind().String())
	switch el := e.(type) {
	case *content.Text:
		writeField(el.Body)
	case *content.Markdown:
		writeField(el.Body)
	case *content.Code:
		writeField(el.Language)
		writeField(el.Body)
	case *content.Table:
		writeField(fmt.Sprintf("%d", len(el.Headers)))
		for _, hd := range el.Headers {
			writeField(hd)
		}
		writeField(fmt.Sprintf("%d", len(el.Rows)))
		for _, row := range el.Rows {
			writeField(fmt.Sprintf("%d", len(row)))
			for _, cell := range row {
				writeField(cell)
			}
		}
	case *content.Image:
		writeField(el.URL)
		writeField(fmt.Sprintf("%.6f|%.6f", el.Width, el.Height))
	case *content.LaTeX:
		writeField(el.Source)
	case *content.Custom:
		writeField(el.Body)
	default:
		// 外部实现按 generic 测量，指纹仅含类型与标识。
		writeField(e.ElementID())
	}
	writeField(fmt.Sprintf("%s|%.6f|%.6f", style.FontFamily, style.FontSize, style.LineHeight))
	return hex.EncodeToString(h.Sum(nil))
}
