// Package typeface 基于真实字体文件为排版引擎提供字体度量。
// 字体解析由 tdewolff/canvas 完成，平均字符宽度通过参考字符集采样。
package typeface

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/folio/layout"
)

// metricSample 用于采样平均字符宽度的参考字符集。
const metricSample = "abcdefghijklmnopqrstuvwxyz ABCDEFGHIJKLMNOPQRSTUVWXYZ 0123456789,."

// Resource 既可以用字节提供，也可以用路径提供。
type Resource struct {
	Bytes []byte
	Path  string
}

// Options 配置字体度量提供者。
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // 预注入的字体，按族名索引
}

// Provider 按需加载字体并给出度量，实现 layout.FontMetricsProvider。
// 同一族名只加载一次，可在多次分页间复用。
type Provider struct {
	baseDir string

	mu       sync.Mutex
	blobs    map[string][]byte
	families map[string]*canvas.FontFamily
}

var _ layout.FontMetricsProvider = (*Provider)(nil)

// NewProvider 创建字体度量提供者并预注入资源。
// 路径读取失败不在此处报错，延迟到实际使用该字体时暴露。
func NewProvider(opts Options) *Provider {
	p := &Provider{
		baseDir:  opts.BaseDir,
		blobs:    map[string][]byte{},
		families: map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			p.blobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path)
			if len(data) > 0 {
				p.blobs[name] = data
			}
		}
	}
	return p
}

// Register 以 src 登记一个字体族。src 为空或以 builtin: 开头时
// 从预注入资源中查找，否则按文件路径读取（相对路径基于 BaseDir）。
func (p *Provider) Register(name, src string) error {
	if name == "" {
		return fmt.Errorf("字体族名不能为空")
	}
	data, err := p.loadBytes(name, src)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.blobs[name] = data
	p.mu.Unlock()
	return nil
}

// Metrics 返回指定族名与字号下的字体度量。
// 未注册的族名返回错误，调用方可据此退回估算度量。
func (p *Provider) Metrics(family string, size float64) (layout.FontMetrics, error) {
	if size <= 0 {
		return layout.FontMetrics{}, fmt.Errorf("字号必须为正，实际 %g", size)
	}
	fam, err := p.ensureFamily(family)
	if err != nil {
		return layout.FontMetrics{}, err
	}

	face := fam.Face(size, color.Black, canvas.FontRegular, canvas.FontNormal)
	m := face.Metrics()

	avg := face.TextWidth(metricSample) / float64(len([]rune(metricSample)))
	if avg <= 0 {
		return layout.FontMetrics{}, fmt.Errorf("字体 %s 采样宽度异常", family)
	}

	lineHeight := m.LineHeight
	if lineHeight <= 0 {
		lineHeight = m.Ascent + m.Descent
	}
	return layout.FontMetrics{
		AvgCharWidth: avg,
		Ascent:       m.Ascent,
		Descent:      m.Descent,
		LineHeight:   lineHeight,
	}, nil
}

func (p *Provider) ensureFamily(name string) (*canvas.FontFamily, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fam, ok := p.families[name]; ok {
		return fam, nil
	}
	data, ok := p.blobs[name]
	if !ok {
		return nil, fmt.Errorf("未注册的字体族：%s", name)
	}
	fam := canvas.NewFontFamily(name)
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	p.families[name] = fam
	return fam, nil
}

func (p *Provider) loadBytes(name, src string) ([]byte, error) {
	if src == "" || strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "built-in:") {
		key := name
		if src != "" {
			key = strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		}
		p.mu.Lock()
		blob, ok := p.blobs[key]
		p.mu.Unlock()
		if ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源：%s", key)
	}

	path := src
	if !filepath.IsAbs(path) {
		if p.baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许使用相对字体路径：%s", src)
		}
		path = filepath.Join(p.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件失败: %w", err)
	}
	return data, nil
}
