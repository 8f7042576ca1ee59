package layout

// 顺序放置循环。游标是 (页索引, 页面 Y)，元素按输入顺序依次处理：
// 测量（带缓存）→ 判定余量 → 放置 / 拆分 / 整体搬移。
// 运行永不中止：测量失败降级为告警并跳过；超过整页且无法拆分的
// 元素按原样放置并记录 overflow 告警，这是唯一允许越出内容区的情形。

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ByLCY/folio/content"
)

// heightEpsilon 吸收高度累计中的浮点误差。
const heightEpsilon = 1e-6

// Engine 是分页引擎实例。几何在构造时规范化并冻结，
// 缓存等可变状态全部挂在实例上，包级不持有任何全局状态。
type Engine struct {
	geo        Geometry
	contentW   float64
	contentH   float64
	metrics    FontMetricsProvider
	cache      *MeasurementCache
	premeasure bool
	now        func() time.Time
}

// NewEngine 规范化几何并构造引擎。复用外部缓存时校验几何签名。
func NewEngine(geo Geometry, opts Options) (*Engine, error) {
	normalized, err := geo.Normalize()
	if err != nil {
		return nil, fmt.Errorf("页面几何不可用: %w", err)
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewMeasurementCache()
	}
	if err := cache.adopt(normalized.signature()); err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		geo:        normalized,
		contentW:   normalized.ContentWidth(),
		contentH:   normalized.ContentHeight(),
		metrics:    opts.Metrics,
		cache:      cache,
		premeasure: opts.Premeasure,
		now:        now,
	}, nil
}

// Geometry 返回规范化后的几何副本。
func (e *Engine) Geometry() Geometry { return e.geo }

// Paginate 从第 0 页内容区顶部开始分页。
func (e *Engine) Paginate(els []content.Element) *Result {
	return e.PaginateFrom(els, Cursor{})
}

// PaginateFrom 从指定游标开始分页，用于增量/续排运行。
// 游标零值等价于第 0 页内容区顶部；Y 低于上边距时取上边距。
func (e *Engine) PaginateFrom(els []content.Element, cur Cursor) *Result {
	if cur.Page < 0 {
		cur.Page = 0
	}
	if cur.Y < e.geo.Margin.Top {
		cur.Y = e.geo.Margin.Top
	}

	if e.premeasure {
		e.warmCache(els)
	}

	col := newPageCollector(e.geo, cur.Page)
	res := &Result{
		Measurements: make([]Measurement, 0, len(els)),
	}

	for idx, el := range els {
		m, err := e.safeMeasure(el)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{
				ElementIndex: idx,
				Type:         WarnProcessingError,
				Message:      err.Error(),
			})
			res.Measurements = append(res.Measurements, Measurement{})
			continue
		}
		res.Measurements = append(res.Measurements, m)
		cur = e.placeChain(el, m, cur, idx, col, res)
	}

	e.finish(col, res)
	return res
}

// placeChain 处理单个输入元素直至其全部内容落位。
// 拆分产生的余部回到循环头重新测量，可能在后续迭代再次拆分。
func (e *Engine) placeChain(el content.Element, m Measurement, cur Cursor, idx int, col *pageCollector, res *Result) Cursor {
	top := e.geo.Margin.Top
	pending := el
	var chain []*PlacedElement
	root := ""
	nextPart := 1

	for pending != nil {
		col.ensure(cur.Page)
		gap := 0.0
		if cur.Y > top+heightEpsilon {
			gap = e.geo.ElementSpacing
		}
		avail := e.contentH - (cur.Y - top) - gap

		// 放得下：直接落位。
		if m.Height <= avail+heightEpsilon {
			pe := e.place(pending, m, cur, gap, col)
			chain = append(chain, pe)
			cur.Y += gap + m.Height
			break
		}

		// 值得拆：拆出当前页部分后翻页，余部重新测量。
		st := e.resolveStyle(pending)
		if m.Splittable && avail > e.minSplitHeight(m, st) {
			if root == "" {
				root = content.EnsureID(pending)
				if tag := pending.SplitTag(); tag != nil && tag.Part > 0 {
					// 续排输入自带部分序号：从该序号继续编号，
					// 源标识剥掉已有的 "#部分" 后缀再做链式派生。
					nextPart = tag.Part
					root = strings.TrimSuffix(root, "#"+strconv.Itoa(tag.Part))
				}
			}
			first, rest, ok := e.splitElement(pending, m, avail, root, nextPart)
			if ok {
				fm, err := e.safeMeasure(first)
				if err == nil {
					pe := e.place(first, fm, cur, gap, col)
					chain = append(chain, pe)
					cur.Page++
					cur.Y = top
					pending = rest
					nextPart++
					m, err = e.safeMeasure(rest)
					if err != nil {
						res.Warnings = append(res.Warnings, Warning{
							ElementIndex: idx,
							Type:         WarnProcessingError,
							Message:      fmt.Sprintf("延续部分测量失败: %v", err),
						})
						pending = nil
					}
					continue
				}
			}
		}

		// 空页顶部仍放不下且拆不开：按原样放置，越界由告警显式记录。
		if cur.Y <= top+heightEpsilon {
			pe := e.place(pending, m, cur, 0, col)
			chain = append(chain, pe)
			res.Warnings = append(res.Warnings, Warning{
				ElementIndex: idx,
				Type:         WarnOverflow,
				Message: fmt.Sprintf("元素高度 %.2fpt 超过整页内容区 %.2fpt 且无法拆分，已按原样放置",
					m.Height, e.contentH),
			})
			cur.Y += m.Height
			break
		}

		// 整体搬移到下一页顶部重试。
		cur.Page++
		cur.Y = top
	}

	// 拆分链结束后统一回填 TotalParts，保证同源各部分一致。
	if len(chain) > 1 {
		total := 0
		for _, pe := range chain {
			if tag := pe.Element.SplitTag(); tag != nil && tag.Part > total {
				total = tag.Part
			}
		}
		stamp := e.now()
		for _, pe := range chain {
			if tag := pe.Element.SplitTag(); tag != nil {
				tag.TotalParts = total
				pe.Modified = stamp
			}
		}
	}

	for _, pe := range chain {
		res.Placed = append(res.Placed, pe)
	}
	return cur
}

// place 在当前游标处落位一个元素。
func (e *Engine) place(el content.Element, m Measurement, cur Cursor, gap float64, col *pageCollector) *PlacedElement {
	content.EnsureID(el)
	pe := &PlacedElement{
		Element:     el,
		Bounds:      Bounds{X: e.geo.Margin.Left, Y: cur.Y + gap, Width: m.Width, Height: m.Height},
		PageIndex:   cur.Page,
		Measurement: m,
		Visible:     true,
		Modified:    e.now(),
	}
	pg := col.ensure(cur.Page)
	pg.Elements = append(pg.Elements, pe)
	return pe
}

// safeMeasure 调用测量并拦截来自外部度量后端的 panic，
// 统一降级为可报告的错误。
func (e *Engine) safeMeasure(el content.Element) (m Measurement, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("测量过程异常: %v", r)
		}
	}()
	return e.Measure(el)
}

// warmCache 并发预热测量缓存。仅填充缓存，不产生可见输出，
// 失败与 panic 都留给顺序循环按常规路径报告。
func (e *Engine) warmCache(els []content.Element) {
	var wg sync.WaitGroup
	for _, el := range els {
		wg.Add(1)
		go func(el content.Element) {
			defer wg.Done()
			defer func() { _ = recover() }()
			_, _ = e.Measure(el)
		}(el)
	}
	wg.Wait()
}

// finish 汇总页面与统计量。利用率在越界放置时可能超过 1，封顶到 1。
func (e *Engine) finish(col *pageCollector, res *Result) {
	res.Pages = col.snapshot()

	totalPages := len(res.Pages)
	placedHeight := 0.0
	for _, pe := range res.Placed {
		placedHeight += pe.Bounds.Height
	}
	stats := Statistics{
		TotalElements: len(res.Measurements),
		TotalPages:    totalPages,
	}
	if totalPages > 0 {
		stats.AvgElementsPerPage = float64(len(res.Placed)) / float64(totalPages)
		u := placedHeight / (float64(totalPages) * e.contentH)
		if u > 1 {
			u = 1
		}
		stats.ContentUtilization = u
	}
	res.Stats = stats
}

// pageCollector 按需创建页面。起始页之前的页面不属于本次运行，
// 不会出现在结果里。
type pageCollector struct {
	geo   Geometry
	start int
	pages []*Page
}

func newPageCollector(geo Geometry, start int) *pageCollector {
	return &pageCollector{geo: geo, start: start}
}

// ensure 返回指定索引的页面，必要时补齐中间页。
func (c *pageCollector) ensure(index int) *Page {
	for len(c.pages) <= index-c.start {
		i := c.start + len(c.pages)
		c.pages = append(c.pages, &Page{
			Index:  i,
			Width:  c.geo.PageWidth,
			Height: c.geo.PageHeight,
			Margin: c.geo.Margin,
		})
	}
	return c.pages[index-c.start]
}

func (c *pageCollector) snapshot() []Page {
	out := make([]Page, len(c.pages))
	for i, p := range c.pages {
		out[i] = *p
	}
	return out
}
