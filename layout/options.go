package layout

import "time"

// Options 配置引擎的外部依赖，例如字体度量后端。
type Options struct {
	// Metrics 提供字体度量；为 nil 时使用内置的确定性估算。
	Metrics FontMetricsProvider
	// Cache 允许跨运行复用测量缓存；为 nil 时每个引擎新建。
	// 几何签名不一致的缓存会被拒绝（见 NewEngine）。
	Cache *MeasurementCache
	// Premeasure 为 true 时在放置循环前并发预热测量缓存，
	// 放置顺序与输出不受影响。
	Premeasure bool
	// Now 用于放置时间戳，便于测试注入；为 nil 时取 time.Now。
	Now func() time.Time
}

// FontMetrics 描述某字体在给定字号下的度量（pt）。
type FontMetrics struct {
	// AvgCharWidth 是平均字符宽度，驱动每行字符数估算。
	AvgCharWidth float64
	// Ascent/Descent 为基线上下高度，LineHeight 为字面自然行高。
	Ascent     float64
	Descent    float64
	LineHeight float64
}

// FontMetricsProvider 负责按字体族与字号提供度量。
// 实现必须是确定性的：相同入参返回相同度量，否则破坏测量的可重现性。
type FontMetricsProvider interface {
	Metrics(family string, size float64) (FontMetrics, error)
}

// estimatedMetrics 是无外部后端时的内置估算：
// 平均字符宽度 0.5 倍字号，行高 1.2 倍字号。
func estimatedMetrics(size float64) FontMetrics {
	return FontMetrics{
		AvgCharWidth: size * 0.5,
		Ascent:       size * 0.8,
		Descent:      size * 0.2,
		LineHeight:   size * 1.2,
	}
}
