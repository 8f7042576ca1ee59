package content

// SplitInfo 标记跨页拆分产生的部分。Part 从 1 开始连续编号；
// 同一源元素拆出的所有部分共享一致的 TotalParts。
// Continued 表示“后面还有延续”，Continuation 表示“本身是延续部分”，
// 中间部分两者同时为 true。
type SplitInfo struct {
	Part         int  `json:"part"`
	TotalParts   int  `json:"totalParts"`
	Continued    bool `json:"continued,omitempty"`
	Continuation bool `json:"continuation,omitempty"`
}

// Clone 返回拆分标记的拷贝，nil 保持 nil。
func (s *SplitInfo) Clone() *SplitInfo {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
