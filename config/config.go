// Package config 负责加载 folio 的 YAML 配置。
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/folio/layout"
)

// Config 是配置文件的根结构。
type Config struct {
	Page   PageConfig   `yaml:"page"`
	Fonts  []FontConfig `yaml:"fonts"`
	Engine EngineConfig `yaml:"engine"`
}

// PageConfig 描述页面几何。长度字段使用带单位的字符串（如 "20mm"、"11pt"），
// 便于与文档语言保持同一套写法；留空表示沿用默认值。
type PageConfig struct {
	Preset     string `yaml:"preset"`      // a4 / a5 / letter
	Width      string `yaml:"width"`       // 覆盖预设宽度
	Height     string `yaml:"height"`      // 覆盖预设高度
	Margin     string `yaml:"margin"`      // CSS 简写，如 "72pt" 或 "20mm 15mm"
	Font       string `yaml:"font"`        // 默认字体族
	FontSize   string `yaml:"font-size"`   // 默认字号
	LineHeight string `yaml:"line-height"` // 行高系数或绝对值
	Spacing    string `yaml:"spacing"`     // 元素间距
	Orphans    int    `yaml:"orphans"`
	Widows     int    `yaml:"widows"`
}

// FontConfig 声明一个字体资源。
type FontConfig struct {
	Name string `yaml:"name"`
	Src  string `yaml:"src"`
}

// EngineConfig 控制分页引擎行为。
type EngineConfig struct {
	Premeasure bool `yaml:"premeasure"` // 分页前并行预热测量缓存
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		Page: PageConfig{
			Preset: "a4",
		},
	}
}

// Load 从文件加载配置，缺失字段保持默认值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault 加载配置文件；path 为空或文件不存在时返回默认配置。
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Geometry 将页面配置转换为排版几何。未填写的字段由
// layout.Geometry.Normalize 回填默认值。
func (c *Config) Geometry() (layout.Geometry, error) {
	var geo layout.Geometry
	if c.Page.Preset != "" {
		preset, ok := layout.PresetGeometry(c.Page.Preset)
		if !ok {
			return layout.Geometry{}, fmt.Errorf("暂不支持的纸张尺寸：%s", c.Page.Preset)
		}
		geo = preset
	}

	if c.Page.Width != "" {
		pt := layout.ParseRawLengthStr(c.Page.Width).ToPT()
		if pt <= 0 {
			return layout.Geometry{}, fmt.Errorf("无法解析页面宽度 %q", c.Page.Width)
		}
		geo.PageWidth = pt
	}
	if c.Page.Height != "" {
		pt := layout.ParseRawLengthStr(c.Page.Height).ToPT()
		if pt <= 0 {
			return layout.Geometry{}, fmt.Errorf("无法解析页面高度 %q", c.Page.Height)
		}
		geo.PageHeight = pt
	}
	if c.Page.Margin != "" {
		m, err := layout.ParseMarginShorthand(strings.Fields(c.Page.Margin))
		if err != nil {
			return layout.Geometry{}, err
		}
		geo.Margin = m
	}
	if c.Page.Font != "" {
		geo.FontFamily = c.Page.Font
	}
	if c.Page.FontSize != "" {
		pt := layout.ParseRawLengthStr(c.Page.FontSize).ToPT()
		if pt <= 0 {
			return layout.Geometry{}, fmt.Errorf("无法解析字号 %q", c.Page.FontSize)
		}
		geo.FontSize = pt
	}
	if c.Page.LineHeight != "" {
		spec := layout.ParseLineHeight(c.Page.LineHeight)
		switch spec.Kind {
		case layout.LineHeightFactor:
			geo.LineHeight = spec.Factor
		case layout.LineHeightAbsolute:
			fontSize := geo.FontSize
			if fontSize <= 0 {
				fontSize = layout.DefaultGeometry().FontSize
			}
			geo.LineHeight = spec.Len.ToPT() / fontSize
		}
	}
	if c.Page.Spacing != "" {
		pt := layout.ParseRawLengthStr(c.Page.Spacing).ToPT()
		if pt < 0 {
			return layout.Geometry{}, fmt.Errorf("元素间距不能为负 %q", c.Page.Spacing)
		}
		geo.ElementSpacing = pt
	}
	geo.OrphanControl = c.Page.Orphans
	geo.WidowControl = c.Page.Widows

	return geo.Normalize()
}
