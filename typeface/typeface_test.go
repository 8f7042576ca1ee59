package typeface_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/folio/typeface"
)

// 非法的字体字节，用于触发解析失败路径。
var bogusFont = []byte("这不是一个字体文件")

func writeBogusFont(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bogusFont, 0o644); err != nil {
		t.Fatalf("写入字体文件失败: %v", err)
	}
	return path
}

// TestMetricsUnregistered 验证未注册族名的报错。
func TestMetricsUnregistered(t *testing.T) {
	p := typeface.NewProvider(typeface.Options{})
	_, err := p.Metrics("Ghost", 11)
	if err == nil || !strings.Contains(err.Error(), "未注册的字体族") {
		t.Fatalf("期望未注册错误，实际 %v", err)
	}
}

// TestMetricsInvalidSize 验证非正字号的报错。
func TestMetricsInvalidSize(t *testing.T) {
	p := typeface.NewProvider(typeface.Options{})
	for _, size := range []float64{0, -3} {
		_, err := p.Metrics("Body", size)
		if err == nil || !strings.Contains(err.Error(), "字号必须为正") {
			t.Fatalf("字号 %g 期望报错，实际 %v", size, err)
		}
	}
}

// TestRegisterValidation 验证登记阶段的参数校验。
func TestRegisterValidation(t *testing.T) {
	p := typeface.NewProvider(typeface.Options{})

	cases := []struct {
		name, src string
		want      string
	}{
		{"", "x.ttf", "字体族名不能为空"},
		{"Body", "rel/x.ttf", "相对字体路径"},
		{"Body", filepath.Join(t.TempDir(), "absent.ttf"), "读取字体文件失败"},
		{"Body", "builtin:Missing", "找不到内置字体资源"},
	}
	for _, c := range cases {
		err := p.Register(c.name, c.src)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Fatalf("Register(%q, %q) 期望错误含 %q，实际 %v", c.name, c.src, c.want, err)
		}
	}
}

// TestRegisterLazyLoad 验证登记不立即解析，解析失败在取度量时暴露。
func TestRegisterLazyLoad(t *testing.T) {
	dir := t.TempDir()
	writeBogusFont(t, dir, "fake.ttf")

	p := typeface.NewProvider(typeface.Options{BaseDir: dir})
	if err := p.Register("Body", "fake.ttf"); err != nil {
		t.Fatalf("登记阶段不应解析字体: %v", err)
	}

	_, err := p.Metrics("Body", 11)
	if err == nil || !strings.Contains(err.Error(), "加载字体 Body 失败") {
		t.Fatalf("期望解析失败，实际 %v", err)
	}
}

// TestRegisterBuiltin 验证 builtin: 前缀从预注入资源取字节。
func TestRegisterBuiltin(t *testing.T) {
	p := typeface.NewProvider(typeface.Options{
		Fonts: map[string]typeface.Resource{
			"Inter": {Bytes: bogusFont},
		},
	})

	if err := p.Register("Body", "builtin:Inter"); err != nil {
		t.Fatalf("内置资源登记失败: %v", err)
	}
	// src 为空时按族名本身查找。
	if err := p.Register("Inter", ""); err != nil {
		t.Fatalf("按族名登记失败: %v", err)
	}

	_, err := p.Metrics("Body", 11)
	if err == nil || !strings.Contains(err.Error(), "加载字体 Body 失败") {
		t.Fatalf("期望解析失败，实际 %v", err)
	}
}

// TestPreinjectedPath 验证预注入路径的静默读取策略。
func TestPreinjectedPath(t *testing.T) {
	dir := t.TempDir()
	path := writeBogusFont(t, dir, "body.ttf")

	p := typeface.NewProvider(typeface.Options{
		Fonts: map[string]typeface.Resource{
			"Body":  {Path: path},
			"Ghost": {Path: filepath.Join(dir, "absent.ttf")},
		},
	})

	// 存在的文件已注入，失败推迟到解析。
	_, err := p.Metrics("Body", 11)
	if err == nil || !strings.Contains(err.Error(), "加载字体 Body 失败") {
		t.Fatalf("期望解析失败，实际 %v", err)
	}
	// 读取失败的路径被静默忽略，等价于未注册。
	_, err = p.Metrics("Ghost", 11)
	if err == nil || !strings.Contains(err.Error(), "未注册的字体族") {
		t.Fatalf("期望未注册错误，实际 %v", err)
	}
}
