package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/content"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/typeface"
)

func main() {
	input := flag.String("in", "examples/demo.folio", "文档路径（.folio 或元素 JSON 数组）")
	output := flag.String("out", "", "布局结果 JSON 输出路径，留空输出到标准输出")
	configPath := flag.String("config", "", "YAML 配置路径")
	dataJSON := flag.String("data", "", "绑定到文档占位符的 JSON 数据")
	pretty := flag.Bool("pretty", false, "缩进输出 JSON")
	premeasure := flag.Bool("premeasure", false, "分页前并行预热测量缓存")
	flag.Parse()

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	if err := run(*input, *output, *configPath, inputData, *pretty, *premeasure); err != nil {
		log.Fatalf("分页失败: %v", err)
	}
	if *output != "" {
		fmt.Printf("已输出布局结果：%s\n", *output)
	}
}

// run 串联解析、编译与分页，输出布局结果 JSON。
// 几何来源优先级：文档 page 段 > 配置文件 > 内置默认。
func run(inputPath, outputPath, configPath string, data any, pretty, premeasure bool) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	geo, err := cfg.Geometry()
	if err != nil {
		return err
	}

	var meta layout.DocumentMeta
	fonts := make([]dsl.FontDecl, 0, len(cfg.Fonts))
	for _, f := range cfg.Fonts {
		fonts = append(fonts, dsl.FontDecl{Name: f.Name, Src: f.Src})
	}

	var elements []content.Element
	if strings.EqualFold(filepath.Ext(inputPath), ".json") {
		raw, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("无法读取元素文件 %s: %w", inputPath, err)
		}
		elements, err = content.UnmarshalElements(raw)
		if err != nil {
			return fmt.Errorf("解析元素 JSON 失败: %w", err)
		}
	} else {
		file, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("无法打开文档 %s: %w", inputPath, err)
		}
		doc, err := dsl.Parse(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("解析文档失败: %w", err)
		}

		spec, err := dsl.Build(doc, data)
		if err != nil {
			return fmt.Errorf("编译文档失败: %w", err)
		}
		elements = spec.Elements
		meta = spec.Meta
		fonts = append(fonts, spec.Fonts...)
		if hasPageSection(doc) {
			geo = spec.Geometry
		}
	}

	opts := layout.Options{Premeasure: premeasure || cfg.Engine.Premeasure}
	if provider := loadFonts(fonts, filepath.Dir(inputPath)); provider != nil {
		opts.Metrics = provider
	}

	engine, err := layout.NewEngine(geo, opts)
	if err != nil {
		return err
	}

	result := engine.Paginate(elements)
	result.Meta = meta

	if outputPath == "" {
		return layout.EncodeResult(os.Stdout, result, pretty)
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer f.Close()
	return layout.EncodeResult(f, result, pretty)
}

// loadFonts 注册声明的字体资源；单个字体失败仅告警，
// 全部失败时返回 nil 使引擎退回估算度量。
func loadFonts(decls []dsl.FontDecl, baseDir string) *typeface.Provider {
	provider := typeface.NewProvider(typeface.Options{BaseDir: baseDir})
	registered := 0
	for _, decl := range decls {
		if err := provider.Register(decl.Name, decl.Src); err != nil {
			log.Printf("字体 %s 加载失败，忽略: %v", decl.Name, err)
			continue
		}
		registered++
	}
	if registered == 0 {
		return nil
	}
	return provider
}

func hasPageSection(doc *dsl.Document) bool {
	for _, section := range doc.Sections {
		if section.Page != nil {
			return true
		}
	}
	return false
}
